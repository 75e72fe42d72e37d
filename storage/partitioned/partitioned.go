// Package partitioned spreads keys over a fixed number of buckets of an
// underlying storage by hashing them.
package partitioned

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spaolacci/murmur3"
	"github.com/tymbaca/mapreduce-engine/storage"
)

type Storage struct {
	st      storage.Storage
	prefix  string
	buckets int
}

func New(st storage.Storage, prefix string, buckets int) (*Storage, error) {
	if buckets < 1 {
		return nil, fmt.Errorf("partitioned storage needs at least 1 bucket, got %d", buckets)
	}

	return &Storage{st: st, prefix: prefix, buckets: buckets}, nil
}

// Bucket returns the name of the bucket key is stored in.
func (s *Storage) Bucket(key string) string {
	idx := murmur3.Sum64([]byte(key)) % uint64(s.buckets)
	return s.prefix + strconv.FormatUint(idx, 10)
}

func (s *Storage) Append(ctx context.Context, key string, vals []string) error {
	return s.st.Append(ctx, s.Bucket(key), key, vals)
}

func (s *Storage) Get(ctx context.Context, key string) ([]string, error) {
	return s.st.Get(ctx, s.Bucket(key), key)
}

// Keys returns the keys of all buckets in ascending order.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	var keys []string

	for i := range s.buckets {
		bucket := s.prefix + strconv.Itoa(i)

		bucketKeys, err := s.st.GetKeys(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", bucket, err)
		}

		keys = append(keys, bucketKeys...)
	}
	slices.Sort(keys)

	return keys, nil
}
