package app

import (
	"fmt"
	"log/slog"
	"os"

	"ratchetkit/internal/domain"
	groupsvc "ratchetkit/internal/services/group"
	identitysvc "ratchetkit/internal/services/identity"
	messagesvc "ratchetkit/internal/services/message"
	prekeysvc "ratchetkit/internal/services/prekey"
	sessionsvc "ratchetkit/internal/services/session"
	"ratchetkit/internal/store"
)

// Wire bundles the vault and services for the CLI.
type Wire struct {
	Vault    domain.PickleStore
	Identity domain.IdentityService
	Prekeys  domain.PrekeyService
	Sessions domain.SessionService
	Messages domain.MessageService
	Groups   domain.GroupService
	Logger   *slog.Logger
}

// NewWire constructs the dependency graph from cfg, creating the vault
// directory if needed.
func NewWire(cfg Config) (*Wire, error) {
	if cfg.Home == "" {
		return nil, fmt.Errorf("%w: vault directory not set", domain.ErrInvalidArgument)
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	var vaultOpts []store.VaultOption
	if cfg.KDF != nil {
		vaultOpts = append(vaultOpts, store.WithKDF(*cfg.KDF))
	}
	vault := store.NewVault(cfg.Home, vaultOpts...)
	policy := domain.WithPolicy(cfg.Policy)

	return &Wire{
		Vault:    vault,
		Identity: identitysvc.New(vault, log, policy),
		Prekeys:  prekeysvc.New(vault, log, policy),
		Sessions: sessionsvc.New(vault, log, policy),
		Messages: messagesvc.New(vault, log, policy),
		Groups:   groupsvc.New(vault, log),
		Logger:   log,
	}, nil
}
