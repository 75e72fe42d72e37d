package mapreduce

import "sync/atomic"

const (
	stageShift = 62
	countMask  = 1<<stageShift - 1
)

// progress is the job's work distributor and progress counter in one word:
// the two high bits hold the stage and the rest is the counter, so a reader
// always sees a counter together with the stage it belongs to.
type progress struct {
	word atomic.Uint64
}

// enter switches to stage s and resets the counter.
func (p *progress) enter(s Stage) {
	p.word.Store(uint64(s) << stageShift)
}

// claim returns the next unclaimed index of the current stage. Callers stop
// once the index reaches the stage total.
func (p *progress) claim() uint64 {
	return (p.word.Add(1) - 1) & countMask
}

func (p *progress) advance(n int) {
	p.word.Add(uint64(n))
}

func (p *progress) load() (Stage, uint64) {
	w := p.word.Load()
	return Stage(w >> stageShift), w & countMask
}

func percentage(done, total uint64) float64 {
	if total == 0 {
		return 100
	}

	return 100 * float64(min(done, total)) / float64(total)
}
