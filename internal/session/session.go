package session

import (
	"crypto/sha256"
	"fmt"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/pickle"
	"ratchetkit/internal/protocol/ratchet"
	"ratchetkit/internal/protocol/x3dh"
)

// Session is one end of an established pairwise conversation.
type Session struct {
	keys     Keys
	ratchet  *ratchet.State
	received bool
}

// NewOutbound runs the initiator side of the key agreement against a
// peer's identity and one-time keys.
func NewOutbound(
	identity domain.X25519KeyPair,
	peerIdentity domain.X25519Public,
	peerOneTime domain.X25519Public,
	opts ...domain.Option,
) (*Session, error) {
	base, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return nil, err
	}
	ratchetKey, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return nil, err
	}
	shared, err := x3dh.Initiator(identity.Private, base.Private, peerIdentity, peerOneTime)
	if err != nil {
		return nil, err
	}
	st, err := ratchet.NewInitiator(shared.RootKey, shared.ChainKey, ratchetKey, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{
		keys: Keys{
			IdentityKey: identity.Public,
			BaseKey:     base.Public,
			OneTimeKey:  peerOneTime,
		},
		ratchet: st,
	}, nil
}

// NewInbound runs the responder side of the key agreement for msg and
// decrypts the message it carries. No session is returned unless that
// message authenticates.
func NewInbound(
	identity domain.X25519KeyPair,
	oneTime domain.X25519KeyPair,
	msg PreKeyMessage,
	opts ...domain.Option,
) (*Session, []byte, error) {
	if msg.Keys.OneTimeKey != oneTime.Public {
		return nil, nil, fmt.Errorf("%w: message was not sent to this one-time key", domain.ErrInvalidArgument)
	}
	remoteRatchet, err := msg.RatchetKey()
	if err != nil {
		return nil, nil, err
	}
	shared, err := x3dh.Responder(identity.Private, oneTime.Private, msg.Keys.IdentityKey, msg.Keys.BaseKey)
	if err != nil {
		return nil, nil, err
	}
	st, err := ratchet.NewResponder(shared.RootKey, shared.ChainKey, remoteRatchet, opts...)
	if err != nil {
		return nil, nil, err
	}
	plaintext, err := st.Decrypt(msg.Message)
	if err != nil {
		return nil, nil, err
	}
	return &Session{keys: msg.Keys, ratchet: st, received: true}, plaintext, nil
}

// Encrypt seals plaintext for the peer. Until a reply has been decrypted
// the result is a pre-key message.
func (s *Session) Encrypt(plaintext []byte) (domain.OlmMessage, error) {
	body, err := s.ratchet.Encrypt(plaintext)
	if err != nil {
		return domain.OlmMessage{}, err
	}
	if s.received {
		return domain.OlmMessage{Type: domain.MessageTypeNormal, Ciphertext: crypto.B64(body)}, nil
	}
	wrapped := PreKeyMessage{Keys: s.keys, Message: body}.MarshalBinary()
	return domain.OlmMessage{Type: domain.MessageTypePreKey, Ciphertext: crypto.B64(wrapped)}, nil
}

// Decrypt opens a message from the peer. A failed decrypt leaves the
// session unchanged.
func (s *Session) Decrypt(msg domain.OlmMessage) ([]byte, error) {
	var body []byte
	switch msg.Type {
	case domain.MessageTypePreKey:
		pk, err := ParsePreKey(msg)
		if err != nil {
			return nil, err
		}
		if pk.Keys != s.keys {
			return nil, fmt.Errorf("%w: pre-key message belongs to another session", domain.ErrAuthenticationFailure)
		}
		body = pk.Message
	case domain.MessageTypeNormal:
		raw, err := crypto.DecodeB64(msg.Ciphertext)
		if err != nil {
			return nil, fmt.Errorf("%w: ciphertext is not base64", domain.ErrAuthenticationFailure)
		}
		body = raw
	default:
		return nil, fmt.Errorf("%w: message type %d", domain.ErrInvalidArgument, int(msg.Type))
	}

	plaintext, err := s.ratchet.Decrypt(body)
	if err != nil {
		return nil, err
	}
	s.received = true
	return plaintext, nil
}

// Matches reports whether a pre-key message was produced by the other end
// of this session. It never changes the session.
func (s *Session) Matches(msg domain.OlmMessage) bool {
	pk, err := ParsePreKey(msg)
	if err != nil {
		return false
	}
	return pk.Keys == s.keys
}

// ID is a stable, non-secret identifier shared by both ends.
func (s *Session) ID() string {
	h := sha256.New()
	h.Write(s.keys.IdentityKey[:])
	h.Write(s.keys.BaseKey[:])
	h.Write(s.keys.OneTimeKey[:])
	return crypto.B64(h.Sum(nil))
}

// HasReceivedMessage reports whether any message has been decrypted.
func (s *Session) HasReceivedMessage() bool { return s.received }

// Keys returns the key-agreement material the session was built from.
func (s *Session) Keys() Keys { return s.keys }

type sessionPickle struct {
	Keys     Keys             `cbor:"keys"`
	Received bool             `cbor:"received"`
	Ratchet  ratchet.Snapshot `cbor:"ratchet"`
}

// Pickle seals the full session state under key.
func (s *Session) Pickle(key []byte) (string, error) {
	return pickle.Seal(pickle.KindSession, sessionPickle{
		Keys:     s.keys,
		Received: s.received,
		Ratchet:  s.ratchet.Snapshot(),
	}, key)
}

// FromPickle restores a session sealed by Pickle.
func FromPickle(blob string, key []byte, opts ...domain.Option) (*Session, error) {
	var p sessionPickle
	if err := pickle.Open(blob, key, pickle.KindSession, &p); err != nil {
		return nil, err
	}
	st, err := ratchet.Restore(p.Ratchet, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{keys: p.Keys, ratchet: st, received: p.Received}, nil
}
