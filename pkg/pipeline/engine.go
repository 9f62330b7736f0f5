package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/tei"
)

// Engine is the top-level run controller. It owns the lifecycle of
// discovery, partitioning, the progress tracker, the worker pool, and
// report writing, and guarantees teardown of all of them on every exit
// path.
type Engine struct {
	opts   *Options
	logger *slog.Logger
	ctx    context.Context
}

// NewEngine validates options, fills in defaulted dependencies, and
// prepares a run. Validation failures wrap ErrConfigValidation and
// surface before any processing begins.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger (slog.Handler) is required", ErrConfigValidation)
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("%w: transformation Engine is required", ErrConfigValidation)
	}
	if opts.InputPath == "" || opts.OutputPath == "" || opts.MetadataFile == "" || opts.StylesheetPath == "" {
		return nil, fmt.Errorf("%w: input, output, metadata file and stylesheet paths are all required", ErrConfigValidation)
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}
	if opts.Extractor == nil {
		opts.Extractor = tei.NewExtractor(UnknownField)
	}
	if opts.Sleep == nil {
		opts.Sleep = ContextSleep
	}
	if opts.SourceSuffix == "" {
		opts.SourceSuffix = DefaultSourceSuffix
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries must be >= 0, got %d", ErrConfigValidation, opts.MaxRetries)
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	switch opts.Strategy {
	case "":
		opts.Strategy = StrategyStriped
	case StrategyStriped:
	case StrategyFixedBatch:
		if opts.BatchSize <= 0 {
			return nil, fmt.Errorf("%w: fixed-batch strategy requires a positive batch size", ErrConfigValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown partition strategy %q", ErrConfigValidation, opts.Strategy)
	}

	if err := os.MkdirAll(opts.OutputPath, 0o755); err != nil {
		return nil, fmt.Errorf("%w: cannot create output directory %q: %w", ErrConfigValidation, opts.OutputPath, err)
	}
	if dir := filepath.Dir(opts.MetadataFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: cannot create metadata directory %q: %w", ErrConfigValidation, dir, err)
		}
	}

	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))
	return &Engine{opts: &opts, logger: logger, ctx: ctx}, nil
}

// Run executes the full pipeline: discover, partition, process, and
// report. Cancellation is not an error: the returned Report covers
// whatever completed before the signal, with Summary.Cancelled set.
func (e *Engine) Run() (Report, error) {
	startTime := time.Now()
	opts := e.opts

	files, err := Discover(opts.InputPath, opts.SourceSuffix, e.logger)
	if err != nil {
		return Report{}, err
	}

	report := Report{Summary: ReportSummary{
		InputPath:       opts.InputPath,
		OutputPath:      opts.OutputPath,
		MetadataFile:    opts.MetadataFile,
		Strategy:        opts.Strategy,
		DiscoveredCount: len(files),
	}}

	if len(files) == 0 {
		// Nothing to do is a normal completion, not an error.
		e.logger.Warn("No documents found in input directory", slog.String("path", opts.InputPath))
		report.Summary.Timestamp = time.Now().UTC()
		report.Summary.DurationSeconds = time.Since(startTime).Seconds()
		_ = opts.EventHooks.OnRunComplete(report)
		return report, nil
	}

	workers := Workers(opts.MaxWorkers, len(files))
	chunks, err := Partition(files, opts.Strategy, opts.BatchSize, workers)
	if err != nil {
		return Report{}, err
	}
	e.logger.Info("Run starting",
		slog.Int("documents", len(files)),
		slog.Int("workers", workers),
		slog.Int("chunks", len(chunks)),
		slog.String("strategy", string(opts.Strategy)))

	counter := &Counter{}
	tracker := NewTracker(counter, int64(len(files)), opts.ProgressInterval, opts.HeartbeatInterval, opts.EventHooks, opts.Logger)
	tracker.Start()
	defer tracker.Stop()

	transformer := newChunkTransformer(opts, counter, opts.Logger)
	results := newScheduler(workers, transformer, opts.Logger).Run(e.ctx, chunks)

	// Reporters are joined before aggregation so the final progress
	// update precedes the summary output.
	tracker.Stop()

	records, failures := aggregate(results)
	report.Records = records
	report.Failures = failures
	report.Summary.Workers = workers
	report.Summary.Chunks = len(chunks)
	report.Summary.SuccessCount = len(records)
	report.Summary.FailureCount = len(failures)
	report.Summary.Cancelled = e.ctx.Err() != nil
	report.Summary.DurationSeconds = time.Since(startTime).Seconds()
	report.Summary.Timestamp = time.Now().UTC()

	if err := writeCSV(opts.MetadataFile, records); err != nil {
		return report, err
	}

	e.logger.Info("Run complete",
		slog.Int("success", report.Summary.SuccessCount),
		slog.Int("total", report.Summary.DiscoveredCount),
		slog.Int("failures", report.Summary.FailureCount),
		slog.Bool("cancelled", report.Summary.Cancelled),
		slog.Duration("duration", time.Since(startTime)))

	_ = opts.EventHooks.OnRunComplete(report)
	return report, nil
}
