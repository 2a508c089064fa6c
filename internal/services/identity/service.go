package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode"

	"ratchetkit/internal/account"
	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
	// ErrAccountExists is returned by Init when the vault already holds an account.
	ErrAccountExists = errors.New("an account already exists in this vault")
	// ErrNoAccount is returned when the vault holds no account yet.
	ErrNoAccount = errors.New("no account in this vault; run init first")
)

// Service manages the account stored in a vault.
type Service struct {
	store  domain.PickleStore
	log    *slog.Logger
	policy domain.Policy
}

// New returns an identity service backed by the given store.
func New(store domain.PickleStore, log *slog.Logger, opts ...domain.Option) *Service {
	return &Service{store: store, log: log, policy: domain.NewPolicy(opts...)}
}

// Init creates a new account, pickles it under passphrase and returns its
// identity keys plus a fingerprint of the Curve25519 key.
func (s *Service) Init(passphrase string) (domain.IdentityKeys, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.IdentityKeys{}, "", ErrWeakPassphrase
	}
	if _, ok, err := s.store.Load(domain.RecordAccount, domain.AccountRecord); err != nil {
		return domain.IdentityKeys{}, "", err
	} else if ok {
		return domain.IdentityKeys{}, "", ErrAccountExists
	}

	key, err := s.store.PickleKey(passphrase)
	if err != nil {
		return domain.IdentityKeys{}, "", err
	}
	acc, err := account.New(domain.WithPolicy(s.policy))
	if err != nil {
		return domain.IdentityKeys{}, "", err
	}
	if err := SaveAccount(s.store, acc, key); err != nil {
		return domain.IdentityKeys{}, "", err
	}

	fp := fingerprint(acc)
	s.log.Info("account created", "fingerprint", fp)
	return acc.IdentityKeys(), fp, nil
}

// IdentityKeys returns the public identity keys.
func (s *Service) IdentityKeys(passphrase string) (domain.IdentityKeys, error) {
	acc, _, err := LoadAccount(s.store, passphrase, domain.WithPolicy(s.policy))
	if err != nil {
		return domain.IdentityKeys{}, err
	}
	return acc.IdentityKeys(), nil
}

// Fingerprint returns a short fingerprint of the Curve25519 identity key.
func (s *Service) Fingerprint(passphrase string) (domain.Fingerprint, error) {
	acc, _, err := LoadAccount(s.store, passphrase, domain.WithPolicy(s.policy))
	if err != nil {
		return "", err
	}
	return fingerprint(acc), nil
}

// Sign signs message with the account's Ed25519 key.
func (s *Service) Sign(passphrase string, message []byte) (string, error) {
	acc, _, err := LoadAccount(s.store, passphrase, domain.WithPolicy(s.policy))
	if err != nil {
		return "", err
	}
	return acc.Sign(message), nil
}

func fingerprint(acc *account.Account) domain.Fingerprint {
	pub := acc.Curve25519Key()
	return domain.Fingerprint(crypto.Fingerprint(pub.Slice()))
}

// LoadAccount derives the pickle key for passphrase and unpickles the
// account. The key is returned so the caller can save changes.
func LoadAccount(store domain.PickleStore, passphrase string, opts ...domain.Option) (*account.Account, []byte, error) {
	blob, ok, err := store.Load(domain.RecordAccount, domain.AccountRecord)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrNoAccount
	}
	key, err := store.PickleKey(passphrase)
	if err != nil {
		return nil, nil, err
	}
	acc, err := account.FromPickle(blob, key, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("unlock account: %w", err)
	}
	return acc, key, nil
}

// SaveAccount pickles acc under key and writes it to the store.
func SaveAccount(store domain.PickleStore, acc *account.Account, key []byte) error {
	blob, err := acc.Pickle(key)
	if err != nil {
		return err
	}
	return store.Save(domain.RecordAccount, domain.AccountRecord, blob)
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len([]rune(passphrase)) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
