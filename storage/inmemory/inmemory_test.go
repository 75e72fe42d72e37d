package inmemory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	st := New()

	vals, err := st.Get(ctx, "0", "missing")
	require.NoError(t, err)
	require.Nil(t, vals)

	require.NoError(t, st.Append(ctx, "0", "b", []string{"1"}))
	require.NoError(t, st.Append(ctx, "0", "a", []string{"2", "3"}))
	require.NoError(t, st.Append(ctx, "0", "a", []string{"4"}))
	require.NoError(t, st.Append(ctx, "1", "c", []string{"5"}))

	vals, err = st.Get(ctx, "0", "a")
	require.NoError(t, err)
	require.Equal(t, []string{"2", "3", "4"}, vals)

	keys, err := st.GetKeys(ctx, "0")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)

	keys, err = st.GetKeys(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, keys)
}

func TestStorageConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	st := New()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Append(ctx, "0", "key", []string{"v"})
		}()
	}
	wg.Wait()

	vals, err := st.Get(ctx, "0", "key")
	require.NoError(t, err)
	require.Len(t, vals, 50)
}
