package mapreduce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tymbaca/mapreduce-engine/pkg/caller"
	"github.com/tymbaca/mapreduce-engine/pkg/syncx"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidThreads   = errors.New("thread count must be at least 1")
	ErrIncompleteClient = errors.New("client must provide map, reduce and less functions")
)

// Job is a single run of a client's map and reduce functions over an input.
// It is created by Start and runs on a fixed pool of worker goroutines
// through the map, shuffle and reduce stages.
type Job[K1, V1, K2, V2, K3, V3 any] struct {
	id      uuid.UUID
	client  Client[K1, V1, K2, V2, K3, V3]
	input   []KeyVal[K1, V1]
	threads int

	// buffers[i] belongs to worker i until the barrier, then to the leader
	buffers [][]KeyVal[K2, V2]
	// groups is written once by the leader before followers are released
	groups [][]KeyVal[K2, V2]

	outputMu sync.Mutex
	output   []KeyVal[K3, V3]

	progress     progress
	inputSize    uint64
	intermediate atomic.Uint64
	groupCount   atomic.Uint64
	stats        Stats

	barrier  *syncx.Barrier
	shuffled *syncx.Semaphore
	leader   atomic.Bool

	wg     sync.WaitGroup
	joined atomic.Bool
	done   chan struct{}
	closed atomic.Bool

	span trace.Span
}

// Start validates the arguments, spawns threads workers and returns
// without waiting for them. input must not be modified until the job is
// done. ctx is only used as the parent for tracing, jobs cannot be
// cancelled.
func Start[K1, V1, K2, V2, K3, V3 any](ctx context.Context, client Client[K1, V1, K2, V2, K3, V3], input []KeyVal[K1, V1], threads int) (*Job[K1, V1, K2, V2, K3, V3], error) {
	if threads < 1 {
		return nil, fmt.Errorf("start job: %w, got %d", ErrInvalidThreads, threads)
	}
	if client.Map == nil || client.Reduce == nil || client.Less == nil {
		return nil, fmt.Errorf("start job: %w", ErrIncompleteClient)
	}

	job := &Job[K1, V1, K2, V2, K3, V3]{
		id:        uuid.New(),
		client:    client,
		input:     input,
		threads:   threads,
		inputSize: uint64(len(input)),
		buffers:   make([][]KeyVal[K2, V2], threads),
		barrier:   syncx.NewBarrier(threads),
		shuffled:  syncx.NewSemaphore(int64(threads - 1)),
		done:      make(chan struct{}),
	}
	job.progress.enter(StageMap)

	ctx, job.span = tracer.Start(context.WithoutCancel(ctx), caller.Name(), trace.WithAttributes(
		attribute.String("job", job.id.String()),
		attribute.Int("threads", threads),
		attribute.Int("input", len(input)),
	))

	slog.Info("job: starting", "job", job.id, "threads", threads, "input", len(input))

	job.wg.Add(threads)
	for id := range threads {
		forkWorker(ctx, job, id)
	}

	return job, nil
}

// Run starts a job, waits for it and returns its output.
func Run[K1, V1, K2, V2, K3, V3 any](ctx context.Context, client Client[K1, V1, K2, V2, K3, V3], input []KeyVal[K1, V1], threads int) ([]KeyVal[K3, V3], error) {
	job, err := Start(ctx, client, input, threads)
	if err != nil {
		return nil, err
	}
	defer job.Close()

	return job.Output(), nil
}

func (j *Job[K1, V1, K2, V2, K3, V3]) ID() uuid.UUID {
	return j.id
}

func (j *Job[K1, V1, K2, V2, K3, V3]) Stats() *Stats {
	return &j.stats
}

// State reports the current stage and how much of it is done. It never
// blocks the workers.
func (j *Job[K1, V1, K2, V2, K3, V3]) State() State {
	stage, done := j.progress.load()

	var total uint64
	switch stage {
	case StageMap:
		total = j.inputSize
	case StageShuffle:
		total = j.intermediate.Load()
	case StageReduce:
		total = j.groupCount.Load()
	}

	return State{Stage: stage, Percentage: percentage(done, total)}
}

// Wait blocks until every worker has returned. It is safe to call more than
// once and from several goroutines; only the first call joins the workers.
func (j *Job[K1, V1, K2, V2, K3, V3]) Wait() {
	if !j.joined.CompareAndSwap(false, true) {
		<-j.done
		return
	}

	j.wg.Wait()
	j.span.SetAttributes(attribute.Int("output", len(j.output)))
	j.span.End()

	slog.Info("job: done", "job", j.id, "groups", len(j.groups), "output", len(j.output))
	close(j.done)
}

// Output waits for the job and returns the emitted output pairs. The order
// of pairs from different groups is unspecified. After Close it returns nil.
func (j *Job[K1, V1, K2, V2, K3, V3]) Output() []KeyVal[K3, V3] {
	j.Wait()

	j.outputMu.Lock()
	defer j.outputMu.Unlock()

	return j.output
}

// Close waits for the job, if nobody did yet, and releases its buffers.
func (j *Job[K1, V1, K2, V2, K3, V3]) Close() {
	j.Wait()

	if !j.closed.CompareAndSwap(false, true) {
		return
	}

	j.buffers = nil
	j.groups = nil
	j.input = nil

	j.outputMu.Lock()
	j.output = nil
	j.outputMu.Unlock()

	slog.Debug("job: closed", "job", j.id)
}
