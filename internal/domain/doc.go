// Package domain defines the plain types shared across the engine and the
// contracts (interfaces) the CLI services are built on.
//
// It holds fixed-size key types, message envelopes, error kinds and the
// Policy that bounds skipped-key caches and one-time-key pools. It has no
// dependencies on the rest of the module.
package domain
