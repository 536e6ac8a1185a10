package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	directory := t.TempDir()
	store, err := NewFileStore(directory, "notary.bali")
	require.NoError(t, err)

	// Nothing stored yet.
	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Store("[\n    $state: \"limited\"\n]"))

	text, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[\n    $state: \"limited\"\n]", text)

	// Overwrites replace the whole configuration.
	require.NoError(t, store.Store("[:]"))
	text, ok, err = store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[:]", text)
}

func TestFileStoreDelete(t *testing.T) {
	directory := t.TempDir()
	store, err := NewFileStore(directory, "ssm.bali")
	require.NoError(t, err)

	require.NoError(t, store.Store("[:]"))
	require.NoError(t, store.Delete())

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing configuration is not an error.
	require.NoError(t, store.Delete())
}

func TestFileStorePermissions(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "configuration")
	store, err := NewFileStore(directory, "ssm.bali")
	require.NoError(t, err)
	require.NoError(t, store.Store("[:]"))

	info, err := os.Stat(directory)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	info, err = os.Stat(filepath.Join(directory, "ssm.bali"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreLeavesNoTemporaryFiles(t *testing.T) {
	directory := t.TempDir()
	store, err := NewFileStore(directory, "notary.bali")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Store("[:]"))
	}

	entries, err := os.ReadDir(directory)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "notary.bali", entries[0].Name())
}

func TestBoltStoreRoundTrip(t *testing.T) {
	db, err := OpenBoltDatabase(filepath.Join(t.TempDir(), "notary.db"))
	require.NoError(t, err)
	defer db.Close()

	store := db.Store("notary.bali")

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Store("[:]"))
	text, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[:]", text)

	require.NoError(t, store.Delete())
	_, ok, err = store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, store.Delete())
}

func TestBoltStoresAreIndependent(t *testing.T) {
	db, err := OpenBoltDatabase(filepath.Join(t.TempDir(), "notary.db"))
	require.NoError(t, err)
	defer db.Close()

	notaryStore := db.Store("notary.bali")
	ssmStore := db.Store("ssm.bali")

	require.NoError(t, notaryStore.Store("notary state"))
	require.NoError(t, ssmStore.Store("ssm state"))
	require.NoError(t, notaryStore.Delete())

	text, ok, err := ssmStore.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ssm state", text)
}
