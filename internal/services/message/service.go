package message

import (
	"errors"
	"log/slog"

	"ratchetkit/internal/domain"
	"ratchetkit/internal/services/identity"
	sessionsvc "ratchetkit/internal/services/session"
	"ratchetkit/internal/session"
)

var (
	// ErrNoSession indicates there is no stored session with the peer.
	ErrNoSession = errors.New("no session with peer; create an outbound or inbound session first")
)

// Service encrypts and decrypts messages with stored sessions.
type Service struct {
	store  domain.PickleStore
	log    *slog.Logger
	policy domain.Policy
}

// New constructs a Message Service over the given store.
func New(store domain.PickleStore, log *slog.Logger, opts ...domain.Option) *Service {
	return &Service{store: store, log: log, policy: domain.NewPolicy(opts...)}
}

// Encrypt encrypts plaintext for peer and advances the stored session.
func (s *Service) Encrypt(passphrase, peer string, plaintext []byte) (domain.OlmMessage, error) {
	sess, key, err := s.open(passphrase, peer)
	if err != nil {
		return domain.OlmMessage{}, err
	}
	msg, err := sess.Encrypt(plaintext)
	if err != nil {
		return domain.OlmMessage{}, err
	}
	if err := sessionsvc.Save(s.store, peer, sess, key); err != nil {
		return domain.OlmMessage{}, err
	}
	s.log.Debug("message encrypted", "peer", peer, "type", msg.Type.String())
	return msg, nil
}

// Decrypt decrypts a message from peer. The stored session is only
// updated when the message authenticates.
func (s *Service) Decrypt(passphrase, peer string, msg domain.OlmMessage) ([]byte, error) {
	sess, key, err := s.open(passphrase, peer)
	if err != nil {
		return nil, err
	}
	plaintext, err := sess.Decrypt(msg)
	if err != nil {
		s.log.Warn("message rejected", "peer", peer, "error", err)
		return nil, err
	}
	if err := sessionsvc.Save(s.store, peer, sess, key); err != nil {
		return nil, err
	}
	s.log.Debug("message decrypted", "peer", peer, "type", msg.Type.String())
	return plaintext, nil
}

func (s *Service) open(passphrase, peer string) (*session.Session, []byte, error) {
	// Unlocking the account checks the passphrase before the session is read.
	_, key, err := identity.LoadAccount(s.store, passphrase)
	if err != nil {
		return nil, nil, err
	}
	sess, ok, err := sessionsvc.Load(s.store, peer, key, domain.WithPolicy(s.policy))
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrNoSession
	}
	return sess, key, nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
