package pickle

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/util/memzero"
)

const (
	// Version is the only format this package writes and reads.
	Version byte = 1
	// KeySize is the required pickle key length.
	KeySize = 32

	headerSize = 2
)

// Kind tags the entity type a pickle holds.
type Kind byte

const (
	KindAccount Kind = iota + 1
	KindSession
	KindGroupSession
	KindInboundGroupSession
)

func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindSession:
		return "session"
	case KindGroupSession:
		return "group session"
	case KindInboundGroupSession:
		return "inbound group session"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// Seal serialises state and encrypts it under key.
func Seal(kind Kind, state any, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", fmt.Errorf("%w: pickle key must be %d bytes, got %d", domain.ErrInvalidArgument, KeySize, len(key))
	}
	raw, err := cbor.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("pickle: encode %s: %w", kind, err)
	}
	defer memzero.Zero(raw)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	out := make([]byte, headerSize+aead.NonceSize(), headerSize+aead.NonceSize()+len(raw)+aead.Overhead())
	out[0], out[1] = Version, byte(kind)
	if err := crypto.ReadRandom(out[headerSize:]); err != nil {
		return "", err
	}
	out = aead.Seal(out, out[headerSize:], raw, out[:headerSize])
	return crypto.B64(out), nil
}

// Open decrypts blob and decodes it into out, which must be a pointer to
// the state type sealed under want.
func Open(blob string, key []byte, want Kind, out any) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: pickle key must be %d bytes, got %d", domain.ErrInvalidArgument, KeySize, len(key))
	}
	data, err := crypto.DecodeB64(blob)
	if err != nil {
		return fmt.Errorf("%w: pickle is not base64", domain.ErrDecryptionFailure)
	}
	if len(data) < headerSize {
		return fmt.Errorf("%w: pickle truncated", domain.ErrDecryptionFailure)
	}
	if data[0] != Version {
		return fmt.Errorf("%w: pickle version %d", domain.ErrUnsupportedVersion, data[0])
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return err
	}
	if len(data) < headerSize+aead.NonceSize()+aead.Overhead() {
		return fmt.Errorf("%w: pickle truncated", domain.ErrDecryptionFailure)
	}
	nonce := data[headerSize : headerSize+aead.NonceSize()]
	raw, err := aead.Open(nil, nonce, data[headerSize+aead.NonceSize():], data[:headerSize])
	if err != nil {
		return fmt.Errorf("%w: wrong key or tampered pickle", domain.ErrDecryptionFailure)
	}
	defer memzero.Zero(raw)

	if got := Kind(data[1]); got != want {
		return fmt.Errorf("%w: pickle holds %s, want %s", domain.ErrTypeMismatch, got, want)
	}
	if err := cbor.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrDecryptionFailure, want, err)
	}
	return nil
}
