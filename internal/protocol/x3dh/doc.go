// Package x3dh implements the triple Diffie-Hellman agreement that
// bootstraps a pairwise ratchet session.
//
// # Overview
//
// The responder publishes a long-term identity key and a pool of one-time
// keys. The initiator picks one one-time key and generates a fresh base key.
// There is no signed prekey: the one-time key plays that role and is
// deleted after first use.
//
// # Flows
//
// Initiator:
//  1. Generate an ephemeral base key pair (EKa).
//  2. Compute DH(IKa, OTKb), DH(EKa, IKb), DH(EKa, OTKb).
//  3. HKDF the concatenated transcript into a root key and a chain key.
//
// Responder:
//  1. Receive the initiator's identity and base keys and the id of the
//     one-time key it used.
//  2. Compute the mirrored set DH(OTKb, IKa), DH(IKb, EKa), DH(OTKb, EKa).
//  3. HKDF the same transcript to the identical keys.
//
// # Errors
//
// A low-order peer point surfaces as domain.ErrInvalidKey.
package x3dh
