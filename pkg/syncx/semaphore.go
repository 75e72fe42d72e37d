package syncx

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Semaphore is a counting semaphore that starts with no available permits.
// Permits become available only through Release, up to max in total.
type Semaphore struct {
	w *semaphore.Weighted
}

func NewSemaphore(max int64) *Semaphore {
	if max < 1 {
		// nobody can ever acquire, but Release(0) must still be legal
		return &Semaphore{w: semaphore.NewWeighted(0)}
	}

	// hold every permit so that only Release makes them available
	w := semaphore.NewWeighted(max)
	_ = w.TryAcquire(max)

	return &Semaphore{w: w}
}

// Acquire blocks until a permit is released or ctx is done.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if err := s.w.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire semaphore: %w", err)
	}

	return nil
}

// Release makes n more permits available. Releasing more than max permits
// over the semaphore's lifetime panics.
func (s *Semaphore) Release(n int64) {
	if n == 0 {
		return
	}

	s.w.Release(n)
}
