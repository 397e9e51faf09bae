package keyring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyFile(t *testing.T, dir string, mode os.FileMode) string {
	t.Helper()
	p := filepath.Join(dir, "key.pgp")
	require.NoError(t, os.WriteFile(p, []byte{0xC5, 0x00}, mode))
	return p
}

func TestAddLookupRevoke(t *testing.T) {
	dir := t.TempDir()
	ring := filepath.Join(dir, "keyring.json")
	keyPath := writeKeyFile(t, dir, 0o600)

	require.NoError(t, Add(ring, "alice", keyPath, 1, true))

	e, err := Lookup(ring, "alice")
	require.NoError(t, err)
	assert.Equal(t, keyPath, e.Path)
	assert.EqualValues(t, 1, e.Algorithm)
	assert.True(t, e.Protected)
	assert.False(t, e.Revoked)

	// re-adding replaces the entry in place
	require.NoError(t, Add(ring, "alice", keyPath, 1, false))
	e, err = Lookup(ring, "alice")
	require.NoError(t, err)
	assert.False(t, e.Protected)

	require.NoError(t, Revoke(ring, "alice"))
	e, err = Lookup(ring, "alice")
	require.NoError(t, err)
	assert.True(t, e.Revoked)

	_, err = Lookup(ring, "bob")
	assert.Error(t, err)
	assert.Error(t, Revoke(ring, "bob"))
}

func TestAddRejectsLoosePermissions(t *testing.T) {
	dir := t.TempDir()
	ring := filepath.Join(dir, "keyring.json")
	keyPath := writeKeyFile(t, dir, 0o644)

	assert.Error(t, Add(ring, "alice", keyPath, 1, true))
	_, err := Lookup(ring, "alice")
	assert.Error(t, err)
}

func TestStorePersists(t *testing.T) {
	dir := t.TempDir()
	ring := filepath.Join(dir, "keyring.json")
	keyPath := writeKeyFile(t, dir, 0o600)
	require.NoError(t, Add(ring, "alice", keyPath, 17, true))

	st, err := os.Stat(ring)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}
