package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/tymbaca/mapreduce-engine/mapreduce"
	"github.com/tymbaca/mapreduce-engine/pkg/tracer"
	"github.com/tymbaca/mapreduce-engine/storage"
	"github.com/tymbaca/mapreduce-engine/storage/bbolt"
	"github.com/tymbaca/mapreduce-engine/storage/inmemory"
	"github.com/tymbaca/mapreduce-engine/storage/partitioned"
)

type config struct {
	threads   int
	sentences int
	words     int
	seed      uint64
	store     string
	dbPath    string
	buckets   int
	poll      time.Duration
	otlp      string
	logLevel  string
}

func parseFlags(args []string) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("wordcount", flag.ContinueOnError)
	fs.IntVar(&cfg.threads, "threads", 4, "Number of worker goroutines")
	fs.IntVar(&cfg.sentences, "sentences", 1000, "Number of generated input sentences")
	fs.IntVar(&cfg.words, "words", 20, "Maximum words per sentence")
	fs.Uint64Var(&cfg.seed, "seed", 0, "Seed for the text generator, 0 for random")
	fs.StringVar(&cfg.store, "store", "memory", "Result store: memory or bolt")
	fs.StringVar(&cfg.dbPath, "db", "wordcount.db", "Path of the bolt file when -store=bolt")
	fs.IntVar(&cfg.buckets, "buckets", 8, "Number of result buckets")
	fs.DurationVar(&cfg.poll, "poll", 100*time.Millisecond, "Progress report interval")
	fs.StringVar(&cfg.otlp, "otlp", "", "OTLP/HTTP endpoint for traces, e.g. localhost:4318")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		log.Fatalf("bad log level: %s", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.otlp != "" {
		shutdown, err := tracer.Init(cfg.otlp)
		if err != nil {
			log.Fatal(err)
		}
		defer shutdown(context.Background())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config, w io.Writer) error {
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	input := generate(cfg)

	job, err := mapreduce.Start(ctx, mapreduce.Client[int, string, string, int, string, int]{
		Map:    countMap,
		Reduce: countReduce,
		Less:   mapreduce.OrderedLess[string],
	}, input, cfg.threads)
	if err != nil {
		return err
	}
	defer job.Close()

	start := time.Now()
	report(ctx, job, cfg.poll)
	output := job.Output()
	elapsed := time.Since(start)

	results, err := partitioned.New(st, job.ID().String()+"-", cfg.buckets)
	if err != nil {
		return err
	}

	for _, kv := range output {
		if err := results.Append(ctx, kv.Key, []string{strconv.Itoa(kv.Val)}); err != nil {
			return fmt.Errorf("save %q: %w", kv.Key, err)
		}
	}

	return printResults(ctx, w, results, job.Stats(), elapsed)
}

func openStore(cfg config) (storage.Storage, func(), error) {
	switch cfg.store {
	case "memory":
		return inmemory.New(), func() {}, nil
	case "bolt":
		db, err := bbolt.New(cfg.dbPath)
		if err != nil {
			return nil, nil, err
		}

		return db, func() {
			if err := db.Close(); err != nil {
				slog.Error("wordcount: close bolt", "err", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.store)
	}
}

func generate(cfg config) []mapreduce.KeyVal[int, string] {
	faker := gofakeit.New(cfg.seed)

	input := make([]mapreduce.KeyVal[int, string], cfg.sentences)
	for i := range input {
		input[i] = mapreduce.KeyVal[int, string]{Key: i, Val: faker.Sentence(faker.IntRange(1, max(cfg.words, 1)))}
	}

	return input
}

type progressJob interface {
	State() mapreduce.State
	Wait()
}

// report logs the job state every interval until the job is done. The job
// keeps running if ctx is cancelled, only reporting stops.
func report(ctx context.Context, job progressJob, interval time.Duration) {
	done := make(chan struct{})
	go func() {
		job.Wait()
		close(done)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			state := job.State()
			slog.Info("wordcount: job done", "stage", state.Stage.String(), "percentage", state.Percentage)
			return
		case <-ctx.Done():
			slog.Warn("wordcount: interrupted, waiting for the job to finish")
			<-done
			return
		case <-ticker.C:
			state := job.State()
			slog.Info("wordcount: progress", "stage", state.Stage.String(), "percentage", fmt.Sprintf("%.1f", state.Percentage))
		}
	}
}

func printResults(ctx context.Context, w io.Writer, results *partitioned.Storage, stats *mapreduce.Stats, elapsed time.Duration) error {
	keys, err := results.Keys(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		vals, err := results.Get(ctx, key)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "%s %s\n", key, strings.Join(vals, ",")); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(w, "time elapsed: %s\nstats: %s\n", elapsed, stats)
	return err
}

func countMap(_ context.Context, _ int, value string, emit mapreduce.Emitter[string, int]) {
	for _, word := range strings.Fields(value) {
		word = strings.ToLower(strings.Trim(word, ".,;:!?\"'"))
		if len(word) == 0 {
			continue
		}

		emit.Emit(word, 1)
	}
}

func countReduce(_ context.Context, group []mapreduce.KeyVal[string, int], emit mapreduce.Emitter[string, int]) {
	total := 0
	for _, kv := range group {
		total += kv.Val
	}

	emit.Emit(group[0].Key, total)
}
