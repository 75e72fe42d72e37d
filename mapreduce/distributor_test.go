package mapreduce

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressClaimsEachIndexOnce(t *testing.T) {
	const total, workers = 10_000, 8

	var p progress
	p.enter(StageMap)

	claimed := make([][]uint64, workers)
	var wg sync.WaitGroup

	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := p.claim()
				if idx >= total {
					return
				}
				claimed[w] = append(claimed[w], idx)
			}
		}()
	}
	wg.Wait()

	seen := make([]bool, total)
	for _, idxs := range claimed {
		for _, idx := range idxs {
			require.False(t, seen[idx], "index %d claimed twice", idx)
			seen[idx] = true
		}
	}
	require.NotContains(t, seen, false)

	stage, count := p.load()
	require.Equal(t, StageMap, stage)
	require.EqualValues(t, total+workers, count)
}

func TestProgressEnterResets(t *testing.T) {
	var p progress
	p.enter(StageShuffle)
	p.advance(5)
	p.advance(2)

	stage, count := p.load()
	require.Equal(t, StageShuffle, stage)
	require.EqualValues(t, 7, count)

	p.enter(StageReduce)
	require.EqualValues(t, 0, p.claim())
	require.EqualValues(t, 1, p.claim())

	stage, count = p.load()
	require.Equal(t, StageReduce, stage)
	require.EqualValues(t, 2, count)
}

func TestPercentage(t *testing.T) {
	require.Equal(t, 100.0, percentage(0, 0))
	require.Equal(t, 100.0, percentage(5, 0))
	require.Equal(t, 0.0, percentage(0, 4))
	require.Equal(t, 25.0, percentage(1, 4))
	require.Equal(t, 100.0, percentage(7, 4))
}

func TestStageString(t *testing.T) {
	require.Equal(t, "map", StageMap.String())
	require.Equal(t, "shuffle", StageShuffle.String())
	require.Equal(t, "reduce", StageReduce.String())
	require.Equal(t, "undefined", Stage(0).String())
}
