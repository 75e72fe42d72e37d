package mapreduce

import (
	"cmp"
	"context"
)

type KeyVal[K, V any] struct {
	Key K
	Val V
}

// Emitter is handed to map and reduce callbacks. Map callbacks receive one
// bound to the calling worker's intermediate buffer, reduce callbacks one
// bound to the job's output.
type Emitter[K, V any] interface {
	Emit(key K, val V)
}

// MapFunc is called once per input pair on an arbitrary worker. Calls for
// different pairs may run concurrently.
type MapFunc[K1, V1, K2, V2 any] func(ctx context.Context, key K1, val V1, emit Emitter[K2, V2])

// ReduceFunc is called once per group of intermediate pairs with equal keys.
type ReduceFunc[K2, V2, K3, V3 any] func(ctx context.Context, group []KeyVal[K2, V2], emit Emitter[K3, V3])

// LessFunc must define a strict weak order. Two keys are equal when neither
// is less than the other.
type LessFunc[K any] func(a, b K) bool

func OrderedLess[K cmp.Ordered](a, b K) bool {
	return cmp.Less(a, b)
}

type Client[K1, V1, K2, V2, K3, V3 any] struct {
	Map    MapFunc[K1, V1, K2, V2]
	Reduce ReduceFunc[K2, V2, K3, V3]
	Less   LessFunc[K2]
}

type Stage uint8

const (
	StageMap Stage = iota + 1
	StageShuffle
	StageReduce
)

func (s Stage) String() string {
	switch s {
	case StageMap:
		return "map"
	case StageShuffle:
		return "shuffle"
	case StageReduce:
		return "reduce"
	default:
		return "undefined"
	}
}

type State struct {
	Stage      Stage
	Percentage float64
}

func equalKeys[K any](less LessFunc[K], a, b K) bool {
	return !less(a, b) && !less(b, a)
}

func compareKeys[K any](less LessFunc[K]) func(a, b K) int {
	return func(a, b K) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		default:
			return 0
		}
	}
}
