package prekey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratchetkit/internal/crypto"
	"ratchetkit/internal/domain"
	"ratchetkit/internal/logging"
	"ratchetkit/internal/services/identity"
	"ratchetkit/internal/services/prekey"
	"ratchetkit/internal/store"
)

const pass = "Correct-Horse-42"

func newService(t *testing.T, opts ...domain.Option) *prekey.Service {
	t.Helper()
	v := store.NewVault(t.TempDir(), store.WithKDF(crypto.KDFParams{
		Algo: crypto.KDFArgon2id, Time: 1, Memory: 1024, Threads: 1,
	}))
	_, _, err := identity.New(v, logging.Discard(), opts...).Init(pass)
	require.NoError(t, err)
	return prekey.New(v, logging.Discard(), opts...)
}

func TestPrekey_GenerateListPublish(t *testing.T) {
	svc := newService(t)

	keys, err := svc.GenerateOneTimeKeys(pass, 3)
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	more, err := svc.GenerateOneTimeKeys(pass, 2)
	require.NoError(t, err)
	assert.Len(t, more, 5)
	for id, k := range keys {
		assert.Equal(t, k, more[id])
	}

	listed, err := svc.OneTimeKeys(pass)
	require.NoError(t, err)
	assert.Equal(t, more, listed)

	n, err := svc.MarkKeysAsPublished(pass)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	listed, err = svc.OneTimeKeys(pass)
	require.NoError(t, err)
	assert.Empty(t, listed)

	n, err = svc.MarkKeysAsPublished(pass)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPrekey_PolicyLimit(t *testing.T) {
	svc := newService(t, domain.WithMaxOneTimeKeys(4))

	_, err := svc.GenerateOneTimeKeys(pass, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	// The failed call saved nothing.
	listed, err := svc.OneTimeKeys(pass)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestPrekey_NoAccount(t *testing.T) {
	svc := prekey.New(store.NewVault(t.TempDir()), logging.Discard())
	_, err := svc.OneTimeKeys(pass)
	assert.ErrorIs(t, err, identity.ErrNoAccount)
}
