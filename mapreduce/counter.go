package mapreduce

import (
	"fmt"
	"sync/atomic"
)

// Stats counts pairs flowing through a job. MapIn and ReduceIn count
// callback invocations, MapOut and ReduceOut count emitted pairs.
type Stats struct {
	MapIn, MapOut       atomic.Uint64
	ReduceIn, ReduceOut atomic.Uint64
}

func (s *Stats) String() string {
	mi := s.MapIn.Load()
	mo := s.MapOut.Load()
	ri := s.ReduceIn.Load()
	ro := s.ReduceOut.Load()
	return fmt.Sprintf("MapIn: %d, MapOut: %d, ReduceIn: %d, ReduceOut: %d", mi, mo, ri, ro)
}
