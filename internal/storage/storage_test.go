package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	local, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	db, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Storage{"local": local, "sqlite": db}
}

func TestStorageRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "productGroups")
			assert.ErrorIs(t, err, ErrNotFound)

			exists, err := s.Exists(ctx, "productGroups")
			require.NoError(t, err)
			assert.False(t, exists)

			require.NoError(t, s.Put(ctx, "productGroups", []byte(`{"a":[]}`)))
			require.NoError(t, s.Put(ctx, "productGroups", []byte(`{"b":["1"]}`)))

			content, err := s.Get(ctx, "productGroups")
			require.NoError(t, err)
			assert.Equal(t, `{"b":["1"]}`, string(content))

			exists, err = s.Exists(ctx, "productGroups")
			require.NoError(t, err)
			assert.True(t, exists)

			require.NoError(t, s.Delete(ctx, "productGroups"))
			require.NoError(t, s.Delete(ctx, "productGroups"))

			_, err = s.Get(ctx, "productGroups")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStoragePutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "nested/record", []byte("x")))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "record", entries[0].Name())
}

func TestLocalStorageKeysStayInsideBasePath(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "etc", "passwd"), s.keyToPath("../../etc/passwd"))
}

func TestNewRejectsUnknownType(t *testing.T) {
	_, err := New("s3", t.TempDir())
	assert.Error(t, err)
}

func TestSQLiteStorageDetectsCorruptContent(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Put(ctx, "productGroups", []byte(`{"a":[]}`)))
	require.NoError(t, s.db.Model(&Record{}).Where("record_key = ?", "productGroups").
		Update("content", []byte(`{"a":["tampered"]}`)).Error)

	_, err = s.Get(ctx, "productGroups")
	assert.ErrorIs(t, err, ErrCorrupt)
}
