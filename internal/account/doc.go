// Package account holds a device's long-term identity keys and its pool of
// one-time keys, and is the entry point for establishing pairwise sessions.
//
// One-time keys are generated unpublished, handed out through OneTimeKeys
// and then marked published by the caller once they have been uploaded.
// A key leaves the pool only when an inbound session consumes it; the
// account remembers the most recent consumed keys so that a replayed first
// message names them in its domain.ErrUnknownOneTimeKey whether or not the
// key had been published. Older replays still fail, as unknown keys.
//
// An Account is not safe for concurrent use.
package account
