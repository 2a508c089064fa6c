package crypto

import (
	"crypto/ed25519"

	"ratchetkit/internal/domain"
	"ratchetkit/internal/util/memzero"
)

// GenerateEd25519 returns a new Ed25519 signing key pair.
func GenerateEd25519() (priv domain.Ed25519Private, pub domain.Ed25519Public, err error) {
	seed := make([]byte, ed25519.SeedSize)
	defer memzero.Zero(seed)
	if err = ReadRandom(seed); err != nil {
		return priv, pub, err
	}
	sk := ed25519.NewKeyFromSeed(seed)
	copy(priv[:], sk)
	copy(pub[:], sk[32:])
	memzero.Zero(sk)
	return priv, pub, nil
}

// GenerateEd25519KeyPair is GenerateEd25519 returning a domain.Ed25519KeyPair.
func GenerateEd25519KeyPair() (domain.Ed25519KeyPair, error) {
	priv, pub, err := GenerateEd25519()
	if err != nil {
		return domain.Ed25519KeyPair{}, err
	}
	return domain.Ed25519KeyPair{Private: priv, Public: pub}, nil
}

// SignEd25519 signs msg with priv.
func SignEd25519(priv domain.Ed25519Private, msg []byte) domain.Ed25519Signature {
	var sig domain.Ed25519Signature
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(priv[:]), msg))
	return sig
}

// VerifyEd25519 verifies sig over msg with pub.
func VerifyEd25519(pub domain.Ed25519Public, msg []byte, sig domain.Ed25519Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:])
}
