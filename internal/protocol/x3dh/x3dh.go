package x3dh

import (
	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/util/memzero"
)

const info = "ratchetkit-x3dh"

// SharedKeys is the output of the agreement: the first root key and the
// chain key of the initiator's first sending chain.
type SharedKeys struct {
	RootKey  [32]byte
	ChainKey [32]byte
}

// Initiator derives SharedKeys on the side that starts the session.
func Initiator(
	ourIdentity domain.X25519Private,
	ourBase domain.X25519Private,
	peerIdentity domain.X25519Public,
	peerOneTime domain.X25519Public,
) (SharedKeys, error) {
	return derive(
		pair{ourIdentity, peerOneTime}, // DH(IKA, OTKB)
		pair{ourBase, peerIdentity},    // DH(EKA, IKB)
		pair{ourBase, peerOneTime},     // DH(EKA, OTKB)
	)
}

// Responder derives SharedKeys on the side that owns the one-time key.
func Responder(
	ourIdentity domain.X25519Private,
	ourOneTime domain.X25519Private,
	peerIdentity domain.X25519Public,
	peerBase domain.X25519Public,
) (SharedKeys, error) {
	return derive(
		pair{ourOneTime, peerIdentity},
		pair{ourIdentity, peerBase},
		pair{ourOneTime, peerBase},
	)
}

type pair struct {
	priv domain.X25519Private
	pub  domain.X25519Public
}

func derive(pairs ...pair) (SharedKeys, error) {
	transcript := make([]byte, 0, 32*len(pairs))
	defer func() { memzero.Zero(transcript) }()

	for _, p := range pairs {
		dh, err := crypto.DH(p.priv, p.pub)
		if err != nil {
			return SharedKeys{}, err
		}
		transcript = append(transcript, dh[:]...)
		memzero.Array(&dh)
	}

	okm, err := crypto.HKDF(transcript, nil, info, 64)
	if err != nil {
		return SharedKeys{}, err
	}
	defer memzero.Zero(okm)

	var out SharedKeys
	copy(out.RootKey[:], okm[:32])
	copy(out.ChainKey[:], okm[32:])
	return out, nil
}
