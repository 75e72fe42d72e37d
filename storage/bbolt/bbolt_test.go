package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var nilSlice []string

func mustGet(t *testing.T, s *Storage, bucket, key string) []string {
	t.Helper()

	vals, err := s.Get(context.Background(), bucket, key)
	require.NoError(t, err)

	return vals
}

func TestBolt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	storage, err := New(path)
	require.NoError(t, err)

	require.NoError(t, storage.Append(ctx, "2", "key1", []string{"val1", "val2"}))
	require.Equal(t, []string{"val1", "val2"}, mustGet(t, storage, "2", "key1"))

	require.NoError(t, storage.Append(ctx, "2", "key1", []string{"val3", "val4", "val5"}))
	require.Equal(t, []string{"val1", "val2", "val3", "val4", "val5"}, mustGet(t, storage, "2", "key1"))

	require.Equal(t, nilSlice, mustGet(t, storage, "2", "key2"))
	require.NoError(t, storage.Append(ctx, "2", "key2", []string{"val1"}))
	require.Equal(t, []string{"val1"}, mustGet(t, storage, "2", "key2"))

	require.Equal(t, nilSlice, mustGet(t, storage, "3", "key1"))
	require.NoError(t, storage.Append(ctx, "3", "key1", []string{"val3", "val4", "val5"}))
	require.Equal(t, []string{"val3", "val4", "val5"}, mustGet(t, storage, "3", "key1"))

	keys, err := storage.GetKeys(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, []string{"key1", "key2"}, keys)

	keys, err = storage.GetKeys(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, keys)

	require.NoError(t, storage.Destroy())

	storage, err = New(path)
	require.NoError(t, err)
	defer storage.Close()

	require.Equal(t, nilSlice, mustGet(t, storage, "2", "key1"))
	require.NoError(t, storage.Append(ctx, "2", "key1", []string{"val1", "val2"}))
	require.Equal(t, []string{"val1", "val2"}, mustGet(t, storage, "2", "key1"))
}
