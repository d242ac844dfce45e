package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useArrayKeyring(t *testing.T) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	prev := opener
	opener = func() (keyring.Keyring, error) { return ring, nil }
	t.Cleanup(func() { opener = prev })
}

func TestSetGetDelete(t *testing.T) {
	useArrayKeyring(t)

	require.NoError(t, Set("k", "v"))
	got, err := Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, Delete("k"))
	_, err = Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_MissingKeySucceeds(t *testing.T) {
	useArrayKeyring(t)
	assert.NoError(t, Delete(TokenKey))
}

func TestToken_EnvWins(t *testing.T) {
	useArrayKeyring(t)
	require.NoError(t, Set(TokenKey, "from-keyring"))

	t.Setenv(TokenEnv, "from-env")
	tok, err := Token()
	require.NoError(t, err)
	assert.Equal(t, "from-env", tok)
}

func TestToken_MissingIsEmpty(t *testing.T) {
	useArrayKeyring(t)
	t.Setenv(TokenEnv, "")

	tok, err := Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}
