package session

import (
	"fmt"
	"log/slog"

	"ratchetkit/internal/domain"
	"ratchetkit/internal/services/identity"
	"ratchetkit/internal/session"
)

// Service establishes pairwise sessions and persists them by peer name.
type Service struct {
	store  domain.PickleStore
	log    *slog.Logger
	policy domain.Policy
}

// New constructs a Session Service over the given store.
func New(store domain.PickleStore, log *slog.Logger, opts ...domain.Option) *Service {
	return &Service{store: store, log: log, policy: domain.NewPolicy(opts...)}
}

// Outbound starts a session with peer from their Curve25519 identity key
// and one of their one-time keys. Any session already stored for peer is
// replaced.
func (s *Service) Outbound(passphrase, peer, identityKey, oneTimeKey string) (string, error) {
	acc, key, err := identity.LoadAccount(s.store, passphrase, domain.WithPolicy(s.policy))
	if err != nil {
		return "", err
	}
	sess, err := acc.CreateOutboundSession(identityKey, oneTimeKey)
	if err != nil {
		return "", err
	}
	if err := Save(s.store, peer, sess, key); err != nil {
		return "", err
	}
	s.log.Info("outbound session created", "peer", peer, "session_id", sess.ID())
	return sess.ID(), nil
}

// Inbound establishes a session from peer's first message and returns its
// plaintext.
func (s *Service) Inbound(passphrase, peer, identityKey string, msg domain.OlmMessage) ([]byte, error) {
	acc, key, err := identity.LoadAccount(s.store, passphrase, domain.WithPolicy(s.policy))
	if err != nil {
		return nil, err
	}

	existing, ok, err := Load(s.store, peer, key, domain.WithPolicy(s.policy))
	if err != nil {
		return nil, err
	}
	if ok && existing.Matches(msg) {
		plaintext, err := existing.Decrypt(msg)
		if err != nil {
			return nil, err
		}
		s.log.Debug("pre-key message matched stored session", "peer", peer, "session_id", existing.ID())
		return plaintext, Save(s.store, peer, existing, key)
	}

	sess, plaintext, err := acc.CreateInboundSession(identityKey, msg)
	if err != nil {
		return nil, err
	}
	// Session before account: the account no longer holds the one-time key.
	if err := Save(s.store, peer, sess, key); err != nil {
		return nil, err
	}
	if err := identity.SaveAccount(s.store, acc, key); err != nil {
		return nil, err
	}
	s.log.Info("inbound session created", "peer", peer, "session_id", sess.ID())
	return plaintext, nil
}

// List returns the peers with a stored session.
func (s *Service) List() ([]string, error) {
	return s.store.List(domain.RecordSession)
}

// Load unpickles the session stored for peer.
func Load(store domain.PickleStore, peer string, key []byte, opts ...domain.Option) (*session.Session, bool, error) {
	blob, ok, err := store.Load(domain.RecordSession, peer)
	if err != nil || !ok {
		return nil, false, err
	}
	sess, err := session.FromPickle(blob, key, opts...)
	if err != nil {
		return nil, false, fmt.Errorf("load session with %s: %w", peer, err)
	}
	return sess, true, nil
}

// Save pickles sess under key as peer's session.
func Save(store domain.PickleStore, peer string, sess *session.Session, key []byte) error {
	blob, err := sess.Pickle(key)
	if err != nil {
		return err
	}
	return store.Save(domain.RecordSession, peer, blob)
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
