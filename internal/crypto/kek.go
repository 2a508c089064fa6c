package crypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"

	"ratchetkit/internal/domain"
)

const (
	KeyBytes  = 32
	SaltBytes = 16

	KDFArgon2id = "argon2id"
	KDFScrypt   = "scrypt"
)

// KDFParams records how a key-encryption key was derived from a passphrase
// so it can be derived again later. Only the fields for Algo are used.
type KDFParams struct {
	Algo    string `json:"algo"`
	Time    uint32 `json:"time,omitempty"`
	Memory  uint32 `json:"memory_kib,omitempty"`
	Threads uint8  `json:"threads,omitempty"`
	N       int    `json:"n,omitempty"`
	R       int    `json:"r,omitempty"`
	P       int    `json:"p,omitempty"`
}

// DefaultKDF is Argon2id with 64 MiB of memory.
func DefaultKDF() KDFParams {
	return KDFParams{Algo: KDFArgon2id, Time: 1, Memory: 64 * 1024, Threads: 4}
}

// ScryptKDF is scrypt with N=2^15, r=8, p=1.
func ScryptKDF() KDFParams {
	return KDFParams{Algo: KDFScrypt, N: 1 << 15, R: 8, P: 1}
}

// Derive returns a KeyBytes key for passphrase and salt.
func (p KDFParams) Derive(passphrase string, salt []byte) ([]byte, error) {
	switch p.Algo {
	case KDFArgon2id:
		if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
			return nil, fmt.Errorf("%w: incomplete argon2id parameters", domain.ErrInvalidArgument)
		}
		return argon2.IDKey([]byte(passphrase), salt, p.Time, p.Memory, p.Threads, KeyBytes), nil
	case KDFScrypt:
		key, err := scrypt.Key([]byte(passphrase), salt, p.N, p.R, p.P, KeyBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: scrypt: %v", domain.ErrInvalidArgument, err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: unknown kdf %q", domain.ErrUnsupportedVersion, p.Algo)
	}
}

// NewSalt returns SaltBytes of fresh randomness.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltBytes)
	if err := ReadRandom(salt); err != nil {
		return nil, err
	}
	return salt, nil
}
