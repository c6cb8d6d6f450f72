package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	sess := &UserSession{UserID: "u-17", DisplayName: "Dana", Token: "tok-abc"}
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "session file holds a credential")
}

func TestFileStore_Load_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestFileStore_Load_EmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"userId":"u-1","token":""}`), 0600))

	_, err := NewFileStore(path).Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestFileStore_TokenAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save(&UserSession{UserID: "u-1", Token: "tok"}))

	token, err := store.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	require.NoError(t, store.Clear())
	_, err = store.Token()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}
