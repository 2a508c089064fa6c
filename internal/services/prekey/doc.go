// Package prekey manages the account's one-time keys: generating them,
// listing the unpublished ones for upload and marking them published.
package prekey
