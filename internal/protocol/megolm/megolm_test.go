package megolm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/protocol/megolm"
)

func seeded(counter uint32) megolm.Ratchet {
	var data [megolm.RatchetLength]byte
	for i := range data {
		data[i] = byte(i)
	}
	return megolm.NewRatchet(data, counter)
}

func TestAdvanceTo_MatchesRepeatedAdvance(t *testing.T) {
	cases := []struct {
		name     string
		from, to uint32
	}{
		{"same part", 0, 10},
		{"across R2", 250, 300},
		{"across R1", 65530, 65540},
		{"long jump", 3, 70000},
		{"counter wrap", 0xFFFFFFF0, 0x10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stepped := seeded(tc.from)
			for stepped.Index() != tc.to {
				stepped.Advance()
			}
			jumped := seeded(tc.from)
			jumped.AdvanceTo(tc.to)

			assert.Equal(t, tc.to, jumped.Index())
			assert.Equal(t, stepped.Bytes(), jumped.Bytes())
		})
	}
}

func TestAdvance_ChangesState(t *testing.T) {
	r := seeded(0)
	before := r.Bytes()
	r.Advance()
	assert.Equal(t, uint32(1), r.Index())
	assert.NotEqual(t, before, r.Bytes())
}

func signingKey(t *testing.T) domain.Ed25519KeyPair {
	t.Helper()
	kp, err := crypto.GenerateEd25519KeyPair()
	require.NoError(t, err)
	return kp
}

func TestSealOpen(t *testing.T) {
	signing := signingKey(t)
	r := seeded(7)

	m, err := megolm.Seal(r, signing, []byte("group hello"))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), m.Index)

	parsed, err := megolm.ParseMessage(m.Encode())
	require.NoError(t, err)
	require.NoError(t, parsed.Verify(signing.Public))

	pt, err := megolm.Open(r, parsed)
	require.NoError(t, err)
	assert.Equal(t, "group hello", string(pt))

	other := seeded(7)
	other.Advance()
	_, err = megolm.Open(other, parsed)
	assert.Error(t, err)
}

func TestMessage_TamperFailsVerification(t *testing.T) {
	signing := signingKey(t)
	m, err := megolm.Seal(seeded(0), signing, []byte("x"))
	require.NoError(t, err)
	wire := m.MarshalBinary()

	for i := range wire {
		mod := append([]byte(nil), wire...)
		mod[i] ^= 0x80
		parsed, err := megolm.ParseMessage(crypto.B64(mod))
		if err == nil {
			err = parsed.Verify(signing.Public)
		}
		require.ErrorIs(t, err, domain.ErrAuthenticationFailure, "byte %d", i)
	}
}

func TestSessionKey_RoundTrip(t *testing.T) {
	signing := signingKey(t)
	r := seeded(42)

	key := megolm.NewSessionKey(r, signing)
	parsed, err := megolm.ParseSessionKey(key.Encode())
	require.NoError(t, err)
	assert.Equal(t, uint32(42), parsed.Ratchet.Index())
	assert.Equal(t, r.Bytes(), parsed.Ratchet.Bytes())
	assert.Equal(t, signing.Public, parsed.SigningKey)
}

func TestSessionKey_Rejects(t *testing.T) {
	signing := signingKey(t)
	wire, err := crypto.DecodeB64(megolm.NewSessionKey(seeded(0), signing).Encode())
	require.NoError(t, err)

	forged := append([]byte(nil), wire...)
	forged[10] ^= 1
	_, err = megolm.ParseSessionKey(crypto.B64(forged))
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = megolm.ParseSessionKey(crypto.B64(wire[:50]))
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = megolm.ParseSessionKey("@@@")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestExportedSessionKey_RoundTrip(t *testing.T) {
	signing := signingKey(t)
	exp := megolm.ExportedSessionKey{Ratchet: seeded(9), SigningKey: signing.Public}

	parsed, err := megolm.ParseExportedSessionKey(exp.Encode())
	require.NoError(t, err)
	assert.Equal(t, exp.Ratchet.Bytes(), parsed.Ratchet.Bytes())
	assert.Equal(t, uint32(9), parsed.Ratchet.Index())

	// A signed session key is not an exported key.
	_, err = megolm.ParseExportedSessionKey(megolm.NewSessionKey(seeded(0), signing).Encode())
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}
