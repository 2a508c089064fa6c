package app_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratchetkit/internal/app"
	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/logging"
)

func TestNewWire_EndToEnd(t *testing.T) {
	kdf := crypto.KDFParams{Algo: crypto.KDFArgon2id, Time: 1, Memory: 1024, Threads: 1}
	w, err := app.NewWire(app.Config{
		Home:   filepath.Join(t.TempDir(), "vault"),
		Logger: logging.Discard(),
		KDF:    &kdf,
	})
	require.NoError(t, err)

	const pass = "Correct-Horse-42"
	keys, _, err := w.Identity.Init(pass)
	require.NoError(t, err)

	otks, err := w.Prekeys.GenerateOneTimeKeys(pass, 1)
	require.NoError(t, err)
	var otk string
	for _, k := range otks {
		otk = k
	}

	// Talking to ourselves exercises both halves through one vault.
	_, err = w.Sessions.Outbound(pass, "me-out", keys.Curve25519, otk)
	require.NoError(t, err)
	msg, err := w.Messages.Encrypt(pass, "me-out", []byte("loopback"))
	require.NoError(t, err)
	pt, err := w.Sessions.Inbound(pass, "me-in", keys.Curve25519, msg)
	require.NoError(t, err)
	assert.Equal(t, "loopback", string(pt))

	_, err = w.Groups.Create(pass, "g")
	require.NoError(t, err)
	sk, err := w.Groups.SessionKey(pass, "g")
	require.NoError(t, err)
	_, err = w.Groups.AddInbound(pass, "g", sk)
	require.NoError(t, err)
	ct, err := w.Groups.Encrypt(pass, "g", []byte("to the group"))
	require.NoError(t, err)
	got, err := w.Groups.Decrypt(pass, "g", ct)
	require.NoError(t, err)
	assert.Equal(t, "to the group", string(got.Plaintext))
}

func TestNewWire_RequiresHome(t *testing.T) {
	_, err := app.NewWire(app.Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
