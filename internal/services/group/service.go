package group

import (
	"errors"
	"fmt"
	"log/slog"

	"ratchetkit/internal/domain"
	"ratchetkit/internal/group"
	"ratchetkit/internal/services/identity"
)

var (
	// ErrGroupExists is returned when creating a group session whose name is taken.
	ErrGroupExists = errors.New("a group session with that name already exists")
	// ErrNoGroup is returned when no group session is stored under the name.
	ErrNoGroup = errors.New("no group session with that name")
)

// Service stores group sessions by name.
type Service struct {
	store domain.PickleStore
	log   *slog.Logger
}

func New(store domain.PickleStore, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

// unlock derives the pickle key after checking the passphrase against the
// account.
func (s *Service) unlock(passphrase string) ([]byte, error) {
	_, key, err := identity.LoadAccount(s.store, passphrase)
	return key, err
}

// Create starts a new outbound group session.
func (s *Service) Create(passphrase, name string) (domain.GroupInfo, error) {
	key, err := s.unlock(passphrase)
	if err != nil {
		return domain.GroupInfo{}, err
	}
	if _, ok, err := s.store.Load(domain.RecordGroupSession, name); err != nil {
		return domain.GroupInfo{}, err
	} else if ok {
		return domain.GroupInfo{}, ErrGroupExists
	}

	gs, err := group.New()
	if err != nil {
		return domain.GroupInfo{}, err
	}
	if err := s.saveOutbound(name, gs, key); err != nil {
		return domain.GroupInfo{}, err
	}
	s.log.Info("group session created", "name", name, "session_id", gs.ID())
	return outboundInfo(name, gs), nil
}

// Encrypt encrypts plaintext with the named outbound session.
func (s *Service) Encrypt(passphrase, name string, plaintext []byte) (string, error) {
	gs, key, err := s.loadOutbound(passphrase, name)
	if err != nil {
		return "", err
	}
	index := gs.MessageIndex()
	ct, err := gs.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	if err := s.saveOutbound(name, gs, key); err != nil {
		return "", err
	}
	s.log.Debug("group message encrypted", "name", name, "message_index", index)
	return ct, nil
}

// SessionKey returns the named outbound session's key at its current index.
func (s *Service) SessionKey(passphrase, name string) (string, error) {
	gs, _, err := s.loadOutbound(passphrase, name)
	if err != nil {
		return "", err
	}
	return gs.SessionKey(), nil
}

// Info describes the named outbound session.
func (s *Service) Info(passphrase, name string) (domain.GroupInfo, error) {
	gs, _, err := s.loadOutbound(passphrase, name)
	if err != nil {
		return domain.GroupInfo{}, err
	}
	return outboundInfo(name, gs), nil
}

// AddInbound stores an inbound session created from a signed session key.
// An existing inbound session under name is replaced.
func (s *Service) AddInbound(passphrase, name, sessionKey string) (domain.GroupInfo, error) {
	key, err := s.unlock(passphrase)
	if err != nil {
		return domain.GroupInfo{}, err
	}
	igs, err := group.NewInbound(sessionKey)
	if err != nil {
		return domain.GroupInfo{}, err
	}
	if err := s.saveInbound(name, igs, key); err != nil {
		return domain.GroupInfo{}, err
	}
	s.log.Info("inbound group session added", "name", name, "session_id", igs.ID(), "first_known_index", igs.FirstKnownIndex())
	return inboundInfo(name, igs), nil
}

// ImportInbound stores an inbound session created from an exported key.
func (s *Service) ImportInbound(passphrase, name, exportedKey string) (domain.GroupInfo, error) {
	key, err := s.unlock(passphrase)
	if err != nil {
		return domain.GroupInfo{}, err
	}
	igs, err := group.Import(exportedKey)
	if err != nil {
		return domain.GroupInfo{}, err
	}
	if err := s.saveInbound(name, igs, key); err != nil {
		return domain.GroupInfo{}, err
	}
	s.log.Info("inbound group session imported", "name", name, "session_id", igs.ID(), "first_known_index", igs.FirstKnownIndex())
	return inboundInfo(name, igs), nil
}

// Decrypt decrypts a group message with the named inbound session.
func (s *Service) Decrypt(passphrase, name, message string) (domain.DecryptedGroupMessage, error) {
	igs, key, err := s.loadInbound(passphrase, name)
	if err != nil {
		return domain.DecryptedGroupMessage{}, err
	}
	out, err := igs.Decrypt(message)
	if err != nil {
		s.log.Warn("group message rejected", "name", name, "error", err)
		return domain.DecryptedGroupMessage{}, err
	}
	if err := s.saveInbound(name, igs, key); err != nil {
		return domain.DecryptedGroupMessage{}, err
	}
	s.log.Debug("group message decrypted", "name", name, "message_index", out.MessageIndex)
	return out, nil
}

// Export exports the named inbound session from index onwards.
func (s *Service) Export(passphrase, name string, index uint32) (string, error) {
	igs, _, err := s.loadInbound(passphrase, name)
	if err != nil {
		return "", err
	}
	return igs.ExportAtIndex(index)
}

// List returns the names of stored outbound and inbound sessions.
func (s *Service) List() ([]string, []string, error) {
	outbound, err := s.store.List(domain.RecordGroupSession)
	if err != nil {
		return nil, nil, err
	}
	inbound, err := s.store.List(domain.RecordInboundGroupSession)
	if err != nil {
		return nil, nil, err
	}
	return outbound, inbound, nil
}

func (s *Service) loadOutbound(passphrase, name string) (*group.GroupSession, []byte, error) {
	key, err := s.unlock(passphrase)
	if err != nil {
		return nil, nil, err
	}
	blob, ok, err := s.store.Load(domain.RecordGroupSession, name)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoGroup, name)
	}
	gs, err := group.FromPickle(blob, key)
	if err != nil {
		return nil, nil, fmt.Errorf("load group session %s: %w", name, err)
	}
	return gs, key, nil
}

func (s *Service) saveOutbound(name string, gs *group.GroupSession, key []byte) error {
	blob, err := gs.Pickle(key)
	if err != nil {
		return err
	}
	return s.store.Save(domain.RecordGroupSession, name, blob)
}

func (s *Service) loadInbound(passphrase, name string) (*group.InboundGroupSession, []byte, error) {
	key, err := s.unlock(passphrase)
	if err != nil {
		return nil, nil, err
	}
	blob, ok, err := s.store.Load(domain.RecordInboundGroupSession, name)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoGroup, name)
	}
	igs, err := group.InboundFromPickle(blob, key)
	if err != nil {
		return nil, nil, fmt.Errorf("load inbound group session %s: %w", name, err)
	}
	return igs, key, nil
}

func (s *Service) saveInbound(name string, igs *group.InboundGroupSession, key []byte) error {
	blob, err := igs.Pickle(key)
	if err != nil {
		return err
	}
	return s.store.Save(domain.RecordInboundGroupSession, name, blob)
}

func outboundInfo(name string, gs *group.GroupSession) domain.GroupInfo {
	return domain.GroupInfo{Name: name, SessionID: gs.ID(), MessageIndex: gs.MessageIndex()}
}

func inboundInfo(name string, igs *group.InboundGroupSession) domain.GroupInfo {
	return domain.GroupInfo{
		Name:            name,
		SessionID:       igs.ID(),
		FirstKnownIndex: igs.FirstKnownIndex(),
		Verified:        igs.IsVerified(),
	}
}

// Compile-time assertion that Service implements domain.GroupService.
var _ domain.GroupService = (*Service)(nil)
