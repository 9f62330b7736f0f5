package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/tei"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/xslt"
)

// Hooks defines callbacks for observing a run. Implementations MUST be
// thread-safe: status updates arrive concurrently from all workers, and
// progress/heartbeat arrive from the tracker goroutines.
type Hooks interface {
	// OnFileStatusUpdate fires on every per-document state change,
	// including each retry.
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	// OnProgress fires on each tracker poll with the current completed
	// count. Values are monotonic; the final call carries the true total
	// of attempted-to-completion documents.
	OnProgress(completed, total int64) error
	// OnHeartbeat fires on the slow liveness interval. It carries no data.
	OnHeartbeat() error
	// OnRunComplete fires exactly once with the final (possibly partial) report.
	OnRunComplete(report Report) error
}

// NoOpHooks is the default, do-nothing Hooks implementation.
type NoOpHooks struct{}

func (h *NoOpHooks) OnFileStatusUpdate(string, Status, string, time.Duration) error { return nil }
func (h *NoOpHooks) OnProgress(int64, int64) error                                  { return nil }
func (h *NoOpHooks) OnHeartbeat() error                                             { return nil }
func (h *NoOpHooks) OnRunComplete(Report) error                                     { return nil }

// SleepFunc pauses for d or until ctx is cancelled, whichever comes
// first. Injected so retry backoff is testable without real time.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the default SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options holds all configuration for one pipeline run.
type Options struct {
	// Core paths. All required.
	InputPath      string // directory holding the source documents
	OutputPath     string // root of the transformed output tree
	MetadataFile   string // destination of the consolidated CSV report
	StylesheetPath string // XSLT stylesheet compiled once per worker

	// SourceSuffix filters discovered files. Empty means DefaultSourceSuffix.
	SourceSuffix string

	// MaxWorkers caps the worker pool; 0 means all available cores. The
	// effective pool never exceeds the number of discovered documents.
	MaxWorkers int
	// Strategy selects the partitioning scheme. StrategyFixedBatch
	// requires BatchSize > 0; StrategyStriped ignores BatchSize.
	Strategy  PartitionStrategy
	BatchSize int

	// Retry behavior. A document is attempted at most MaxRetries+1 times
	// with a fixed RetryDelay pause between attempts.
	MaxRetries int
	RetryDelay time.Duration

	// Reporting intervals.
	ProgressInterval  time.Duration
	HeartbeatInterval time.Duration

	// OutputFormat of the final summary (consumed by the CLI layer).
	OutputFormat OutputFormat

	// Injected dependencies.
	Logger     slog.Handler  // required logging backend
	EventHooks Hooks         // optional, defaults to NoOpHooks
	Engine     xslt.Engine   // required transformation collaborator
	Extractor  tei.Extractor // optional, defaults to the TEI header extractor
	Sleep      SleepFunc     // optional, defaults to ContextSleep
}
