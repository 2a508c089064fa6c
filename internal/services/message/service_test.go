package message_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/logging"
	"ratchetkit/internal/services/identity"
	"ratchetkit/internal/services/message"
	"ratchetkit/internal/services/prekey"
	sessionsvc "ratchetkit/internal/services/session"
	"ratchetkit/internal/store"
)

const pass = "Correct-Horse-42"

type device struct {
	keys     domain.IdentityKeys
	prekeys  *prekey.Service
	sessions *sessionsvc.Service
	messages *message.Service
}

func newDevice(t *testing.T) device {
	t.Helper()
	v := store.NewVault(t.TempDir(), store.WithKDF(crypto.KDFParams{
		Algo: crypto.KDFArgon2id, Time: 1, Memory: 1024, Threads: 1,
	}))
	log := logging.Discard()
	keys, _, err := identity.New(v, log).Init(pass)
	require.NoError(t, err)
	return device{
		keys:     keys,
		prekeys:  prekey.New(v, log),
		sessions: sessionsvc.New(v, log),
		messages: message.New(v, log),
	}
}

// connect gives bob an outbound session to alice and alice the matching
// inbound one.
func connect(t *testing.T, alice, bob device) {
	t.Helper()
	keys, err := alice.prekeys.GenerateOneTimeKeys(pass, 1)
	require.NoError(t, err)
	var otk string
	for _, k := range keys {
		otk = k
	}
	_, err = bob.sessions.Outbound(pass, "alice", alice.keys.Curve25519, otk)
	require.NoError(t, err)

	first, err := bob.messages.Encrypt(pass, "alice", []byte("hi"))
	require.NoError(t, err)
	_, err = alice.sessions.Inbound(pass, "bob", bob.keys.Curve25519, first)
	require.NoError(t, err)
}

func TestMessageService_Conversation(t *testing.T) {
	alice, bob := newDevice(t), newDevice(t)
	connect(t, alice, bob)

	for i := 0; i < 5; i++ {
		m, err := alice.messages.Encrypt(pass, "bob", []byte(fmt.Sprintf("a%d", i)))
		require.NoError(t, err)
		pt, err := bob.messages.Decrypt(pass, "alice", m)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("a%d", i), string(pt))

		m, err = bob.messages.Encrypt(pass, "alice", []byte(fmt.Sprintf("b%d", i)))
		require.NoError(t, err)
		assert.Equal(t, domain.MessageTypeNormal, m.Type)
		pt, err = alice.messages.Decrypt(pass, "bob", m)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("b%d", i), string(pt))
	}
}

func TestMessageService_TamperDoesNotPersist(t *testing.T) {
	alice, bob := newDevice(t), newDevice(t)
	connect(t, alice, bob)

	m, err := alice.messages.Encrypt(pass, "bob", []byte("real"))
	require.NoError(t, err)
	raw, err := crypto.DecodeB64(m.Ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x80

	_, err = bob.messages.Decrypt(pass, "alice", domain.OlmMessage{Type: m.Type, Ciphertext: crypto.B64(raw)})
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailure)

	pt, err := bob.messages.Decrypt(pass, "alice", m)
	require.NoError(t, err)
	assert.Equal(t, "real", string(pt))
}

func TestMessageService_NoSession(t *testing.T) {
	alice := newDevice(t)
	_, err := alice.messages.Encrypt(pass, "nobody", []byte("x"))
	assert.ErrorIs(t, err, message.ErrNoSession)
	_, err = alice.messages.Decrypt(pass, "nobody", domain.OlmMessage{})
	assert.ErrorIs(t, err, message.ErrNoSession)
}

func TestMessageService_WrongPassphrase(t *testing.T) {
	alice, bob := newDevice(t), newDevice(t)
	connect(t, alice, bob)

	_, err := alice.messages.Encrypt("Wrong-Horse-42", "bob", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrDecryptionFailure)
}
