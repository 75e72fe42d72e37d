package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/tymbaca/mapreduce-engine/pkg/caller"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
)

type Storage struct {
	mu   sync.RWMutex
	data map[itemKey][]string
}

func New() *Storage {
	return &Storage{
		data: make(map[itemKey][]string, 1000),
	}
}

func (st *Storage) Get(ctx context.Context, bucket string, key string) ([]string, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.RLock()
	defer st.mu.RUnlock()

	return slices.Clone(st.data[itemKey{bucket: bucket, key: key}]), nil
}

func (st *Storage) GetKeys(ctx context.Context, bucket string) ([]string, error) {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.RLock()
	defer st.mu.RUnlock()

	var keys []string
	for k := range st.data {
		if k.bucket == bucket {
			keys = append(keys, k.key)
		}
	}
	slices.Sort(keys)

	return keys, nil
}

func (st *Storage) Append(ctx context.Context, bucket string, key string, vals []string) error {
	_, span := tracer.Start(ctx, caller.Name())
	defer span.End()

	st.mu.Lock()
	defer st.mu.Unlock()

	itemKey := itemKey{bucket: bucket, key: key}
	st.data[itemKey] = append(st.data[itemKey], vals...)

	return nil
}

type itemKey struct {
	bucket string
	key    string
}
