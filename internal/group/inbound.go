package group

import (
	"fmt"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/pickle"
	"ratchetkit/internal/protocol/megolm"
)

// InboundGroupSession is a recipient's view of one GroupSession's chain.
//
// It keeps two checkpoints: initial, fixed at the first known index, and
// latest, the furthest index a message has been decrypted at. Messages are
// decrypted by advancing a copy of whichever checkpoint is nearest below
// their index, so late messages still open while the stored chain only
// moves forward.
type InboundGroupSession struct {
	initial    megolm.Ratchet
	latest     megolm.Ratchet
	signingKey domain.Ed25519Public
	verified   bool
}

// NewInbound seeds a session from a sender's signed session key.
func NewInbound(sessionKey string) (*InboundGroupSession, error) {
	k, err := megolm.ParseSessionKey(sessionKey)
	if err != nil {
		return nil, err
	}
	return &InboundGroupSession{
		initial:    k.Ratchet,
		latest:     k.Ratchet,
		signingKey: k.SigningKey,
		verified:   true,
	}, nil
}

// Import seeds a session from a key produced by ExportAtIndex. The key is
// unsigned, so the session reports IsVerified false until a message has
// decrypted under it.
func Import(exported string) (*InboundGroupSession, error) {
	k, err := megolm.ParseExportedSessionKey(exported)
	if err != nil {
		return nil, err
	}
	return &InboundGroupSession{
		initial:    k.Ratchet,
		latest:     k.Ratchet,
		signingKey: k.SigningKey,
	}, nil
}

// ID matches the ID of the sending GroupSession.
func (s *InboundGroupSession) ID() string { return crypto.B64(s.signingKey[:]) }

// FirstKnownIndex is the lowest index this session can decrypt.
func (s *InboundGroupSession) FirstKnownIndex() uint32 { return s.initial.Index() }

// IsVerified reports whether the chain is known to come from the holder of
// the signing key.
func (s *InboundGroupSession) IsVerified() bool { return s.verified }

// nearest returns a copy of the checkpoint to advance for index, which must
// not be below FirstKnownIndex.
func (s *InboundGroupSession) nearest(index uint32) megolm.Ratchet {
	if s.latest.Index() <= index {
		return s.latest
	}
	return s.initial
}

// Decrypt authenticates and opens a base64 group message. On failure the
// session is unchanged.
func (s *InboundGroupSession) Decrypt(message string) (domain.DecryptedGroupMessage, error) {
	m, err := megolm.ParseMessage(message)
	if err != nil {
		return domain.DecryptedGroupMessage{}, err
	}
	if err := m.Verify(s.signingKey); err != nil {
		return domain.DecryptedGroupMessage{}, err
	}
	if m.Index < s.FirstKnownIndex() {
		return domain.DecryptedGroupMessage{}, fmt.Errorf("%w: index %d is before the first known index %d",
			domain.ErrMessageTooOld, m.Index, s.FirstKnownIndex())
	}

	r := s.nearest(m.Index)
	r.AdvanceTo(m.Index)
	plaintext, err := megolm.Open(r, m)
	if err != nil {
		return domain.DecryptedGroupMessage{}, err
	}

	if m.Index > s.latest.Index() {
		s.latest = r
	}
	s.verified = true
	return domain.DecryptedGroupMessage{Plaintext: plaintext, MessageIndex: m.Index}, nil
}

// ExportAtIndex exports the chain from index onwards for Import on
// another device. Indices below FirstKnownIndex fail with
// domain.ErrIndexOutOfRange.
func (s *InboundGroupSession) ExportAtIndex(index uint32) (string, error) {
	if index < s.FirstKnownIndex() {
		return "", fmt.Errorf("%w: index %d is before the first known index %d",
			domain.ErrIndexOutOfRange, index, s.FirstKnownIndex())
	}
	r := s.nearest(index)
	r.AdvanceTo(index)
	return megolm.ExportedSessionKey{Ratchet: r, SigningKey: s.signingKey}.Encode(), nil
}

type inboundPickle struct {
	Initial    ratchetPickle        `cbor:"initial"`
	Latest     ratchetPickle        `cbor:"latest"`
	SigningKey domain.Ed25519Public `cbor:"signing_key"`
	Verified   bool                 `cbor:"verified"`
}

// Pickle seals the session under key.
func (s *InboundGroupSession) Pickle(key []byte) (string, error) {
	return pickle.Seal(pickle.KindInboundGroupSession, inboundPickle{
		Initial:    newRatchetPickle(s.initial),
		Latest:     newRatchetPickle(s.latest),
		SigningKey: s.signingKey,
		Verified:   s.verified,
	}, key)
}

// InboundFromPickle restores a session sealed by Pickle.
func InboundFromPickle(blob string, key []byte) (*InboundGroupSession, error) {
	var p inboundPickle
	if err := pickle.Open(blob, key, pickle.KindInboundGroupSession, &p); err != nil {
		return nil, err
	}
	if p.Latest.Counter < p.Initial.Counter {
		return nil, fmt.Errorf("%w: latest index %d is before initial index %d",
			domain.ErrDecryptionFailure, p.Latest.Counter, p.Initial.Counter)
	}
	return &InboundGroupSession{
		initial:    p.Initial.restore(),
		latest:     p.Latest.restore(),
		signingKey: p.SigningKey,
		verified:   p.Verified,
	}, nil
}
