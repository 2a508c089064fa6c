package prekey

import (
	"log/slog"

	"ratchetkit/internal/domain"
	"ratchetkit/internal/services/identity"
)

// Service manages one-time keys on the account held in a vault.
type Service struct {
	store  domain.PickleStore
	log    *slog.Logger
	policy domain.Policy
}

func New(store domain.PickleStore, log *slog.Logger, opts ...domain.Option) *Service {
	return &Service{store: store, log: log, policy: domain.NewPolicy(opts...)}
}

// GenerateOneTimeKeys adds n keys and returns every unpublished key, new
// and old, as key id to base64 public key.
func (s *Service) GenerateOneTimeKeys(passphrase string, n int) (map[string]string, error) {
	acc, key, err := identity.LoadAccount(s.store, passphrase, domain.WithPolicy(s.policy))
	if err != nil {
		return nil, err
	}
	if err := acc.GenerateOneTimeKeys(n); err != nil {
		return nil, err
	}
	if err := identity.SaveAccount(s.store, acc, key); err != nil {
		return nil, err
	}
	keys := acc.OneTimeKeys()
	s.log.Info("one-time keys generated", "count", n, "unpublished", len(keys))
	return keys, nil
}

// OneTimeKeys returns the unpublished keys.
func (s *Service) OneTimeKeys(passphrase string) (map[string]string, error) {
	acc, _, err := identity.LoadAccount(s.store, passphrase, domain.WithPolicy(s.policy))
	if err != nil {
		return nil, err
	}
	return acc.OneTimeKeys(), nil
}

// MarkKeysAsPublished flags every unpublished key as published and reports
// how many there were.
func (s *Service) MarkKeysAsPublished(passphrase string) (int, error) {
	acc, key, err := identity.LoadAccount(s.store, passphrase, domain.WithPolicy(s.policy))
	if err != nil {
		return 0, err
	}
	n := len(acc.OneTimeKeys())
	if n == 0 {
		return 0, nil
	}
	acc.MarkKeysAsPublished()
	if err := identity.SaveAccount(s.store, acc, key); err != nil {
		return 0, err
	}
	s.log.Info("one-time keys published", "count", n)
	return n, nil
}

// Compile-time assertion that Service implements domain.PrekeyService.
var _ domain.PrekeyService = (*Service)(nil)
