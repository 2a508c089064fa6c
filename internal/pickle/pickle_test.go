package pickle_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/pickle"
)

type sample struct {
	Name  string
	Key   [32]byte
	Index uint32
	Chain []uint64
}

func testKey() []byte { return bytes.Repeat([]byte{7}, pickle.KeySize) }

func TestSealOpen_RoundTrip(t *testing.T) {
	in := sample{Name: "s", Key: [32]byte{1, 2, 3}, Index: 9, Chain: []uint64{4, 5}}

	blob, err := pickle.Seal(pickle.KindSession, in, testKey())
	require.NoError(t, err)

	var out sample
	require.NoError(t, pickle.Open(blob, testKey(), pickle.KindSession, &out))
	assert.Equal(t, in, out)
}

func TestSeal_KeyLength(t *testing.T) {
	_, err := pickle.Seal(pickle.KindAccount, sample{}, make([]byte, 16))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	var out sample
	err = pickle.Open("AAAA", make([]byte, 31), pickle.KindAccount, &out)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestOpen_WrongKey(t *testing.T) {
	blob, err := pickle.Seal(pickle.KindAccount, sample{Name: "a"}, testKey())
	require.NoError(t, err)

	out := sample{Name: "untouched"}
	err = pickle.Open(blob, bytes.Repeat([]byte{8}, 32), pickle.KindAccount, &out)
	assert.ErrorIs(t, err, domain.ErrDecryptionFailure)
	assert.Equal(t, "untouched", out.Name)
}

func TestOpen_Tampered(t *testing.T) {
	blob, err := pickle.Seal(pickle.KindAccount, sample{Name: "a"}, testKey())
	require.NoError(t, err)
	raw, err := crypto.DecodeB64(blob)
	require.NoError(t, err)

	for i := 2; i < len(raw); i++ {
		mod := append([]byte(nil), raw...)
		mod[i] ^= 0x01
		var out sample
		err := pickle.Open(crypto.B64(mod), testKey(), pickle.KindAccount, &out)
		require.ErrorIs(t, err, domain.ErrDecryptionFailure, "byte %d", i)
	}
}

func TestOpen_TamperedKindFailsAuthentication(t *testing.T) {
	blob, err := pickle.Seal(pickle.KindAccount, sample{}, testKey())
	require.NoError(t, err)
	raw, err := crypto.DecodeB64(blob)
	require.NoError(t, err)
	raw[1] = byte(pickle.KindSession)

	var out sample
	err = pickle.Open(crypto.B64(raw), testKey(), pickle.KindSession, &out)
	assert.ErrorIs(t, err, domain.ErrDecryptionFailure)
}

func TestOpen_UnsupportedVersion(t *testing.T) {
	blob, err := pickle.Seal(pickle.KindAccount, sample{}, testKey())
	require.NoError(t, err)
	raw, err := crypto.DecodeB64(blob)
	require.NoError(t, err)
	raw[0] = 99

	var out sample
	err = pickle.Open(crypto.B64(raw), testKey(), pickle.KindAccount, &out)
	assert.ErrorIs(t, err, domain.ErrUnsupportedVersion)
}

func TestOpen_TypeMismatch(t *testing.T) {
	blob, err := pickle.Seal(pickle.KindGroupSession, sample{}, testKey())
	require.NoError(t, err)

	var out sample
	err = pickle.Open(blob, testKey(), pickle.KindInboundGroupSession, &out)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func TestOpen_Garbage(t *testing.T) {
	var out sample
	assert.ErrorIs(t, pickle.Open("%%%", testKey(), pickle.KindAccount, &out), domain.ErrDecryptionFailure)
	assert.ErrorIs(t, pickle.Open("", testKey(), pickle.KindAccount, &out), domain.ErrDecryptionFailure)
}

func TestOpen_EditedTextRejected(t *testing.T) {
	blob, err := pickle.Seal(pickle.KindAccount, sample{Name: "a"}, testKey())
	require.NoError(t, err)

	for i := 0; i < len(blob); i++ {
		for bit := 0; bit < 8; bit++ {
			mod := []byte(blob)
			mod[i] ^= 1 << bit
			out := sample{Name: "untouched"}
			err := pickle.Open(string(mod), testKey(), pickle.KindAccount, &out)
			require.Error(t, err, "char %d bit %d", i, bit)
			require.Equal(t, "untouched", out.Name)
		}
	}

	var out sample
	assert.Error(t, pickle.Open(blob+"==", testKey(), pickle.KindAccount, &out))
	assert.Error(t, pickle.Open(blob+"\n", testKey(), pickle.KindAccount, &out))
}
