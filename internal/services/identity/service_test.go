package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/logging"
	"ratchetkit/internal/services/identity"
	"ratchetkit/internal/store"
)

const pass = "Correct-Horse-42"

func newService(t *testing.T) (*identity.Service, *store.Vault) {
	t.Helper()
	v := store.NewVault(t.TempDir(), store.WithKDF(crypto.KDFParams{
		Algo: crypto.KDFArgon2id, Time: 1, Memory: 1024, Threads: 1,
	}))
	return identity.New(v, logging.Discard()), v
}

func TestInit_WeakPassphrase(t *testing.T) {
	svc, _ := newService(t)
	for _, p := range []string{"short1!A", "alllowercase-123", "ALLUPPER-123456", "NoDigitsHere!!", "NoSymbols12345"} {
		_, _, err := svc.Init(p)
		assert.ErrorIs(t, err, identity.ErrWeakPassphrase, p)
	}
}

func TestInit_ThenLoad(t *testing.T) {
	svc, _ := newService(t)

	keys, fp, err := svc.Init(pass)
	require.NoError(t, err)
	assert.NotEmpty(t, fp)

	got, err := svc.IdentityKeys(pass)
	require.NoError(t, err)
	assert.Equal(t, keys, got)

	fp2, err := svc.Fingerprint(pass)
	require.NoError(t, err)
	assert.Equal(t, fp, fp2)

	sig, err := svc.Sign(pass, []byte("hello"))
	require.NoError(t, err)
	require.NoError(t, crypto.VerifySignature(keys.Ed25519, []byte("hello"), sig))

	_, _, err = svc.Init(pass)
	assert.ErrorIs(t, err, identity.ErrAccountExists)
}

func TestLoad_NoAccount(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.IdentityKeys(pass)
	assert.ErrorIs(t, err, identity.ErrNoAccount)
}

func TestLoad_WrongPassphrase(t *testing.T) {
	svc, _ := newService(t)
	_, _, err := svc.Init(pass)
	require.NoError(t, err)

	_, err = svc.IdentityKeys("Wrong-Horse-42")
	assert.ErrorIs(t, err, domain.ErrDecryptionFailure)
}
