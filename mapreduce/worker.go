package mapreduce

import (
	"context"
	"log"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/tymbaca/mapreduce-engine/pkg/caller"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func forkWorker[K1, V1, K2, V2, K3, V3 any](ctx context.Context, job *Job[K1, V1, K2, V2, K3, V3], id int) {
	w := &worker[K1, V1, K2, V2, K3, V3]{
		id:  id,
		job: job,
		buf: &job.buffers[id],
	}

	go w.run(ctx)
}

type worker[K1, V1, K2, V2, K3, V3 any] struct {
	id  int
	job *Job[K1, V1, K2, V2, K3, V3]

	// buf is written by this worker only, until the barrier
	buf *[]KeyVal[K2, V2]
}

func (w *worker[K1, V1, K2, V2, K3, V3]) run(ctx context.Context) {
	defer w.job.wg.Done()

	w.mapPhase(ctx)
	w.sortPhase(ctx)

	w.job.barrier.Wait()

	if w.job.leader.CompareAndSwap(false, true) {
		w.shuffle(ctx)
	} else {
		w.awaitShuffle(ctx)
	}

	w.reducePhase(ctx)
	slog.Debug("worker: done", "job", w.job.id, "worker", w.id)
}

func (w *worker[K1, V1, K2, V2, K3, V3]) mapPhase(ctx context.Context) {
	ctx, span := w.span(ctx, caller.Name())
	defer span.End()

	input := w.job.input
	emit := &intermediateEmitter[K2, V2]{buf: w.buf, total: &w.job.intermediate, stats: &w.job.stats}

	for {
		idx := w.job.progress.claim()
		if idx >= w.job.inputSize {
			break
		}

		kv := input[idx]
		w.job.stats.MapIn.Add(1)
		slog.Debug("worker: mapping", "job", w.job.id, "worker", w.id, "index", idx)

		w.job.client.Map(ctx, kv.Key, kv.Val, emit)
	}

	span.SetAttributes(attribute.Int("buffered", len(*w.buf)))
}

func (w *worker[K1, V1, K2, V2, K3, V3]) sortPhase(ctx context.Context) {
	_, span := w.span(ctx, caller.Name())
	defer span.End()

	compare := compareKeys(w.job.client.Less)
	slices.SortStableFunc(*w.buf, func(a, b KeyVal[K2, V2]) int {
		return compare(a.Key, b.Key)
	})

	slog.Debug("worker: sorted, waiting at barrier", "job", w.job.id, "worker", w.id, "buffered", len(*w.buf))
}

// shuffle is run by the single leader. Followers are released only after the
// groups are published and the stage is REDUCE.
func (w *worker[K1, V1, K2, V2, K3, V3]) shuffle(ctx context.Context) {
	_, span := w.span(ctx, caller.Name())
	defer span.End()

	job := w.job
	slog.Info("worker: elected shuffle leader", "job", job.id, "worker", w.id, "intermediate", job.intermediate.Load())

	job.progress.enter(StageShuffle)
	job.groups = merge(job.buffers, job.client.Less, job.progress.advance)
	job.groupCount.Store(uint64(len(job.groups)))
	job.progress.enter(StageReduce)

	slog.Info("worker: shuffle done", "job", job.id, "worker", w.id, "groups", len(job.groups))
	span.SetAttributes(attribute.Int("groups", len(job.groups)))

	job.shuffled.Release(int64(job.threads - 1))
}

func (w *worker[K1, V1, K2, V2, K3, V3]) awaitShuffle(ctx context.Context) {
	if err := w.job.shuffled.Acquire(ctx); err != nil {
		log.Panicf("worker %d: wait for shuffle: %s", w.id, err)
	}
}

func (w *worker[K1, V1, K2, V2, K3, V3]) reducePhase(ctx context.Context) {
	ctx, span := w.span(ctx, caller.Name())
	defer span.End()

	groups := w.job.groups
	emit := &outputEmitter[K1, V1, K2, V2, K3, V3]{job: w.job}

	for {
		idx := w.job.progress.claim()
		if idx >= uint64(len(groups)) {
			return
		}

		w.job.stats.ReduceIn.Add(1)
		slog.Debug("worker: reducing", "job", w.job.id, "worker", w.id, "index", idx, "size", len(groups[idx]))

		w.job.client.Reduce(ctx, groups[idx], emit)
	}
}

func (w *worker[K1, V1, K2, V2, K3, V3]) span(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("job", w.job.id.String()),
		attribute.Int("worker", w.id),
	))
}

type intermediateEmitter[K, V any] struct {
	buf   *[]KeyVal[K, V]
	total *atomic.Uint64
	stats *Stats
}

func (e *intermediateEmitter[K, V]) Emit(key K, val V) {
	*e.buf = append(*e.buf, KeyVal[K, V]{Key: key, Val: val})
	e.total.Add(1)
	e.stats.MapOut.Add(1)
}

type outputEmitter[K1, V1, K2, V2, K3, V3 any] struct {
	job *Job[K1, V1, K2, V2, K3, V3]
}

func (e *outputEmitter[K1, V1, K2, V2, K3, V3]) Emit(key K3, val V3) {
	e.job.outputMu.Lock()
	e.job.output = append(e.job.output, KeyVal[K3, V3]{Key: key, Val: val})
	e.job.outputMu.Unlock()

	e.job.stats.ReduceOut.Add(1)
}
