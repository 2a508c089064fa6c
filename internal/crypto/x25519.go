package crypto

import (
	"fmt"

	"golang.org/x/crypto/curve25519"

	"ratchetkit/internal/domain"
	"ratchetkit/internal/util/memzero"
)

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateX25519() (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if err = ReadRandom(priv[:]); err != nil {
		return priv, pub, err
	}
	clamp(&priv)
	pub, err = PublicX25519(priv)
	return priv, pub, err
}

// GenerateX25519KeyPair is GenerateX25519 returning a domain.X25519KeyPair.
func GenerateX25519KeyPair() (domain.X25519KeyPair, error) {
	priv, pub, err := GenerateX25519()
	if err != nil {
		return domain.X25519KeyPair{}, err
	}
	return domain.X25519KeyPair{Private: priv, Public: pub}, nil
}

// PublicX25519 derives the public half of priv.
func PublicX25519(priv domain.X25519Private) (pub domain.X25519Public, err error) {
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], pb)
	return pub, nil
}

// DH computes X25519 Diffie-Hellman. Low-order peer points, which yield an
// all-zero secret, are rejected with domain.ErrInvalidKey.
func DH(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, fmt.Errorf("%w: x25519: %v", domain.ErrInvalidKey, err)
	}
	copy(out[:], secret)
	memzero.Zero(secret)
	return out, nil
}

func clamp(k *domain.X25519Private) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
