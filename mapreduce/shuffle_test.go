package mapreduce

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func kvs(pairs ...string) []KeyVal[string, string] {
	out := make([]KeyVal[string, string], 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, KeyVal[string, string]{Key: pairs[i], Val: pairs[i+1]})
	}
	return out
}

func TestMergeGroupsDescending(t *testing.T) {
	buffers := [][]KeyVal[string, string]{
		kvs("a", "1", "a", "2", "c", "3"),
		kvs("b", "4"),
		nil,
		kvs("a", "5", "c", "6", "d", "7"),
	}

	var consumed []int
	groups := merge(buffers, OrderedLess[string], func(n int) { consumed = append(consumed, n) })

	require.Equal(t, [][]KeyVal[string, string]{
		kvs("d", "7"),
		kvs("c", "3", "c", "6"),
		kvs("b", "4"),
		kvs("a", "2", "a", "1", "a", "5"),
	}, groups)
	require.Equal(t, []int{1, 2, 1, 3}, consumed)

	for _, buf := range buffers {
		require.Empty(t, buf)
	}
}

func TestMergeEmpty(t *testing.T) {
	groups := merge(make([][]KeyVal[string, string], 3), OrderedLess[string], func(int) {
		t.Fatal("progress on empty input")
	})
	require.Empty(t, groups)
}

func TestMergeUsesOnlyLess(t *testing.T) {
	caseless := func(a, b string) bool { return strings.ToLower(a) < strings.ToLower(b) }

	buffers := [][]KeyVal[string, string]{
		kvs("A", "1", "b", "2"),
		kvs("a", "3", "B", "4"),
	}

	groups := merge(buffers, caseless, func(int) {})

	require.Equal(t, [][]KeyVal[string, string]{
		kvs("b", "2", "B", "4"),
		kvs("A", "1", "a", "3"),
	}, groups)
}

func TestMergeKeepsBufferOrderForEqualKeys(t *testing.T) {
	buffers := [][]KeyVal[string, string]{
		kvs("a", "3", "a", "1", "a", "2", "b", "9"),
		kvs("a", "7", "a", "5"),
	}

	groups := merge(buffers, OrderedLess[string], func(int) {})

	// each buffer is drained from its tail
	require.Equal(t, [][]KeyVal[string, string]{
		kvs("b", "9"),
		kvs("a", "2", "a", "1", "a", "3", "a", "5", "a", "7"),
	}, groups)
}
