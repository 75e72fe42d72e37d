package syncx

import (
	"fmt"
	"sync"
)

// Barrier blocks goroutines calling Wait until n of them have arrived, then
// releases them all at once. It is cyclic: after a release the next n calls
// to Wait form a new generation.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n          int
	arrived    int
	generation uint64
}

func NewBarrier(n int) *Barrier {
	if n < 1 {
		panic(fmt.Sprintf("syncx: barrier size must be positive, got %d", n))
	}

	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)

	return b
}

// Wait returns only after all n participants of the current generation have
// called it.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.arrived++

	if b.arrived == b.n {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return
	}

	// spurious wakeups are possible, so compare generations
	for gen == b.generation {
		b.cond.Wait()
	}
}
