package credentials

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imajkumar/portalclient"
)

var (
	_ portalclient.CredentialStore = (*Memory)(nil)
	_ portalclient.CredentialStore = (*FileStore)(nil)
)

func TestMemory(t *testing.T) {
	m := NewMemory(Credentials{AccessToken: "abc"})

	token, err := m.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, m.Clear())
	token, err = m.AccessToken()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, 1, m.Clears())

	m.Set(Credentials{AccessToken: "def"})
	token, _ = m.AccessToken()
	assert.Equal(t, "def", token)
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs, "/home/op/.portal/credentials.json")

	creds := Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         json.RawMessage(`{"id":"u1","email":"op@example.com"}`),
	}
	require.NoError(t, store.Save(creds))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.JSONEq(t, `{"id":"u1","email":"op@example.com"}`, string(loaded.User))

	raw, err := afero.ReadFile(fs, store.Path())
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.Contains(t, keys, "accessToken")
	assert.Contains(t, keys, "refreshToken")
	assert.Contains(t, keys, "user")

	token, err := store.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "access", token)
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(afero.NewMemMapFs(), "credentials.json")

	token, err := store.AccessToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing an empty store succeeds.
	require.NoError(t, store.Clear())
}

func TestFileStoreClear(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs, "/creds.json")
	require.NoError(t, store.Save(Credentials{AccessToken: "abc"}))

	require.NoError(t, store.Clear())

	exists, err := afero.Exists(fs, "/creds.json")
	require.NoError(t, err)
	assert.False(t, exists)

	token, err := store.AccessToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileStoreCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/creds.json", []byte("not json"), 0o600))

	_, err := NewFileStore(fs, "/creds.json").AccessToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse credentials")
}
