package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/exchange-dash/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsKeysOutsideRoot(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	for name, key := range map[string]string{
		"empty":    "",
		"blank":    "  ",
		"absolute": "/etc/passwd",
		"parent":   "../token",
		"deep":     "api/../../token",
		"dot":      ".",
	} {
		t.Run(name, func(t *testing.T) {
			err := store.Put(context.Background(), key, "value")
			require.Error(t, err)
			assert.Regexp(t, `credential key is empty|invalid credential key`, err.Error())
		})
	}
}

func TestStorePutThenGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)

	require.NoError(t, store.Put(context.Background(), "api/token", "tok-1\n"))

	got, err := store.Get(context.Background(), "api/token")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	info, err := os.Stat(filepath.Join(root, "api", "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Join(root, "api"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStorePutReplacesExistingValue(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Put(context.Background(), "api/token", "old"))
	require.NoError(t, store.Put(context.Background(), "api/token", "new"))

	got, err := store.Get(context.Background(), "api/token")
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestStoreGetMissingIsNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	_, err := store.Get(context.Background(), "api/token")
	require.ErrorIs(t, err, ports.ErrCredentialNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Put(context.Background(), "api/token", "tok"))
	require.NoError(t, store.Delete(context.Background(), "api/token"))
	require.NoError(t, store.Delete(context.Background(), "api/token"))

	_, err := store.Get(context.Background(), "api/token")
	require.ErrorIs(t, err, ports.ErrCredentialNotFound)
}
