package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
)

const (
	metaFile     = "meta.json"
	pickleSuffix = ".pickle"
	metaVersion  = 1
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_@+-][A-Za-z0-9._@+-]{0,127}$`)

var knownKinds = map[domain.RecordKind]bool{
	domain.RecordAccount:             true,
	domain.RecordSession:             true,
	domain.RecordGroupSession:        true,
	domain.RecordInboundGroupSession: true,
}

type vaultMeta struct {
	Version int              `json:"version"`
	Salt    []byte           `json:"salt"`
	KDF     crypto.KDFParams `json:"kdf"`
}

// Vault is a directory of pickle files.
type Vault struct {
	dir string
	kdf crypto.KDFParams
	mu  sync.Mutex
}

// VaultOption configures a Vault.
type VaultOption func(*Vault)

// WithKDF sets the parameters used when the vault metadata is first
// written. An existing vault keeps the parameters it was created with.
func WithKDF(p crypto.KDFParams) VaultOption {
	return func(v *Vault) { v.kdf = p }
}

// NewVault returns a Vault rooted at dir. Nothing is written until first
// use.
func NewVault(dir string, opts ...VaultOption) *Vault {
	v := &Vault{dir: dir, kdf: crypto.DefaultKDF()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Dir is the vault directory.
func (v *Vault) Dir() string { return v.dir }

// PickleKey derives the 32-byte pickle key for passphrase, creating the
// vault metadata with a fresh salt if it does not exist yet.
func (v *Vault) PickleKey(passphrase string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	meta, err := v.loadOrCreateMeta()
	if err != nil {
		return nil, err
	}
	return meta.KDF.Derive(passphrase, meta.Salt)
}

func (v *Vault) loadOrCreateMeta() (vaultMeta, error) {
	path := filepath.Join(v.dir, metaFile)

	var meta vaultMeta
	ok, err := readJSON(path, &meta)
	if err != nil {
		return vaultMeta{}, fmt.Errorf("store: read %s: %w", metaFile, err)
	}
	if ok {
		if meta.Version != metaVersion {
			return vaultMeta{}, fmt.Errorf("%w: vault metadata version %d", domain.ErrUnsupportedVersion, meta.Version)
		}
		if len(meta.Salt) < crypto.SaltBytes {
			return vaultMeta{}, fmt.Errorf("%w: vault salt is %d bytes", domain.ErrInvalidArgument, len(meta.Salt))
		}
		return meta, nil
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return vaultMeta{}, err
	}
	meta = vaultMeta{Version: metaVersion, Salt: salt, KDF: v.kdf}
	if err := writeJSON(path, meta, 0o600); err != nil {
		return vaultMeta{}, fmt.Errorf("store: write %s: %w", metaFile, err)
	}
	return meta, nil
}

func (v *Vault) path(kind domain.RecordKind, name string) (string, error) {
	if !knownKinds[kind] {
		return "", fmt.Errorf("%w: unknown record kind %q", domain.ErrInvalidArgument, kind)
	}
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: invalid record name %q", domain.ErrInvalidArgument, name)
	}
	return filepath.Join(v.dir, string(kind), name+pickleSuffix), nil
}

// Save writes blob as kind/name, replacing any previous version.
func (v *Vault) Save(kind domain.RecordKind, name, blob string) error {
	path, err := v.path(kind, name)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return writeFile(path, []byte(blob), 0o600)
}

// Load returns the blob stored as kind/name. A missing record is
// ok=false with no error.
func (v *Vault) Load(kind domain.RecordKind, name string) (string, bool, error) {
	path, err := v.path(kind, name)
	if err != nil {
		return "", false, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	b, err := readFile(path)
	if err != nil || b == nil {
		return "", false, err
	}
	return strings.TrimSpace(string(b)), true, nil
}

// List returns the record names of kind in sorted order.
func (v *Vault) List(kind domain.RecordKind) ([]string, error) {
	if !knownKinds[kind] {
		return nil, fmt.Errorf("%w: unknown record kind %q", domain.ErrInvalidArgument, kind)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(v.dir, string(kind)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), pickleSuffix)
		if ok && !e.IsDir() && validName.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes kind/name. Deleting a missing record is not an error.
func (v *Vault) Delete(kind domain.RecordKind, name string) error {
	path, err := v.path(kind, name)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Compile-time assertion that Vault implements domain.PickleStore.
var _ domain.PickleStore = (*Vault)(nil)
