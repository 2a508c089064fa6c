package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"ratchetkit/internal/domain"
)

// B64 returns standard-alphabet base64 without padding. Every key,
// signature, ciphertext and pickle that leaves the engine uses it.
func B64(b []byte) string { return base64.RawStdEncoding.EncodeToString(b) }

var errNonCanonical = errors.New("crypto: base64 contains line breaks")

// DecodeB64 accepts standard-alphabet base64 with or without padding. Only
// the canonical encoding of a byte string decodes: padding must be exact
// and unused trailing bits must be zero.
func DecodeB64(s string) ([]byte, error) {
	// The stdlib decoder silently skips line breaks.
	if strings.ContainsAny(s, "\r\n") {
		return nil, errNonCanonical
	}
	if len(s)%4 == 0 && strings.HasSuffix(s, "=") {
		return base64.StdEncoding.Strict().DecodeString(s)
	}
	return base64.RawStdEncoding.Strict().DecodeString(s)
}

// ParseCurve25519 decodes a base64 Curve25519 public key. The all-zero
// point is rejected.
func ParseCurve25519(s string) (domain.X25519Public, error) {
	var out domain.X25519Public
	b, err := DecodeB64(s)
	if err != nil {
		return out, fmt.Errorf("%w: curve25519 key: %v", domain.ErrInvalidKey, err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("%w: curve25519 key: want %d bytes, got %d", domain.ErrInvalidKey, len(out), len(b))
	}
	copy(out[:], b)
	if out == (domain.X25519Public{}) {
		return out, fmt.Errorf("%w: curve25519 key is zero", domain.ErrInvalidKey)
	}
	return out, nil
}

// ParseEd25519 decodes a base64 Ed25519 public key.
func ParseEd25519(s string) (domain.Ed25519Public, error) {
	var out domain.Ed25519Public
	b, err := DecodeB64(s)
	if err != nil {
		return out, fmt.Errorf("%w: ed25519 key: %v", domain.ErrInvalidKey, err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("%w: ed25519 key: want %d bytes, got %d", domain.ErrInvalidKey, len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}

// ParseSignature decodes a base64 Ed25519 signature.
func ParseSignature(s string) (domain.Ed25519Signature, error) {
	var out domain.Ed25519Signature
	b, err := DecodeB64(s)
	if err != nil {
		return out, fmt.Errorf("%w: signature: %v", domain.ErrInvalidArgument, err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("%w: signature: want %d bytes, got %d", domain.ErrInvalidArgument, len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}

// VerifySignature checks a base64 signature by a base64 Ed25519 key.
func VerifySignature(key string, message []byte, signature string) error {
	pub, err := ParseEd25519(key)
	if err != nil {
		return err
	}
	sig, err := ParseSignature(signature)
	if err != nil {
		return err
	}
	if !VerifyEd25519(pub, message, sig) {
		return fmt.Errorf("%w: ed25519 signature", domain.ErrAuthenticationFailure)
	}
	return nil
}
