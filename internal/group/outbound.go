package group

import (
	"fmt"
	"math"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/pickle"
	"ratchetkit/internal/protocol/megolm"
)

// GroupSession is the sending side of a group chain.
type GroupSession struct {
	ratchet megolm.Ratchet
	signing domain.Ed25519KeyPair
}

// New creates a session with a random chain at index 0 and a fresh
// signing key. It only fails if the randomness source does.
func New() (*GroupSession, error) {
	r, err := megolm.RandomRatchet()
	if err != nil {
		return nil, err
	}
	signing, err := crypto.GenerateEd25519KeyPair()
	if err != nil {
		return nil, err
	}
	return &GroupSession{ratchet: r, signing: signing}, nil
}

// ID is the base64 public signing key. It is shared by every inbound
// session created from this one.
func (s *GroupSession) ID() string { return crypto.B64(s.signing.Public[:]) }

// MessageIndex is the index the next Encrypt will use.
func (s *GroupSession) MessageIndex() uint32 { return s.ratchet.Index() }

// Encrypt seals and signs plaintext at the current index, then advances
// the chain. The result is base64. A session whose index has reached
// math.MaxUint32 is exhausted and must be replaced.
func (s *GroupSession) Encrypt(plaintext []byte) (string, error) {
	if s.ratchet.Index() == math.MaxUint32 {
		return "", fmt.Errorf("%w: group session exhausted at index %d", domain.ErrIndexOutOfRange, s.ratchet.Index())
	}
	m, err := megolm.Seal(s.ratchet, s.signing, plaintext)
	if err != nil {
		return "", err
	}
	s.ratchet.Advance()
	return m.Encode(), nil
}

// SessionKey exports the chain at the current index, signed, for
// distribution to recipients. It is secret.
func (s *GroupSession) SessionKey() string {
	return megolm.NewSessionKey(s.ratchet, s.signing).Encode()
}

type groupPickle struct {
	Ratchet ratchetPickle         `cbor:"ratchet"`
	Signing domain.Ed25519Private `cbor:"signing"`
}

// Pickle seals the session under key.
func (s *GroupSession) Pickle(key []byte) (string, error) {
	return pickle.Seal(pickle.KindGroupSession, groupPickle{
		Ratchet: newRatchetPickle(s.ratchet),
		Signing: s.signing.Private,
	}, key)
}

// FromPickle restores a session sealed by Pickle.
func FromPickle(blob string, key []byte) (*GroupSession, error) {
	var p groupPickle
	if err := pickle.Open(blob, key, pickle.KindGroupSession, &p); err != nil {
		return nil, err
	}
	s := &GroupSession{ratchet: p.Ratchet.restore()}
	s.signing.Private = p.Signing
	copy(s.signing.Public[:], p.Signing[32:])
	return s, nil
}

type ratchetPickle struct {
	Data    [megolm.RatchetLength]byte `cbor:"data"`
	Counter uint32                     `cbor:"counter"`
}

func newRatchetPickle(r megolm.Ratchet) ratchetPickle {
	return ratchetPickle{Data: r.Bytes(), Counter: r.Index()}
}

func (p ratchetPickle) restore() megolm.Ratchet {
	return megolm.NewRatchet(p.Data, p.Counter)
}
