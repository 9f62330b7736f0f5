package pipeline

import "time"

// Defaults for the configurable knobs of a run. The configuration layer
// seeds Viper with these; the engine falls back to them when a zero
// value slips through.
const (
	// DefaultMaxWorkers of 0 means use all available CPU cores.
	DefaultMaxWorkers = 0
	// DefaultBatchSize of 0 selects striped (equal-division) partitioning.
	DefaultBatchSize = 0
	// DefaultMaxRetries is the number of additional attempts after the
	// first failure, so a document is tried at most DefaultMaxRetries+1 times.
	DefaultMaxRetries = 2
	// DefaultRetryDelay is the fixed pause between attempts on one document.
	DefaultRetryDelay = 1 * time.Second
	// DefaultProgressInterval is how often the tracker polls the shared counter.
	DefaultProgressInterval = 500 * time.Millisecond
	// DefaultHeartbeatInterval is how often the liveness signal fires. The
	// heartbeat carries no data; it only proves the process has not hung.
	DefaultHeartbeatInterval = 10 * time.Second
	// DefaultSourceSuffix is the filename suffix selecting input documents.
	DefaultSourceSuffix = ".xml"
	// DefaultOutputSuffix replaces the source suffix on transformed files.
	DefaultOutputSuffix = ".txt"
	// DefaultLogFilename is where per-document failures are recorded.
	DefaultLogFilename = "multi_saxon.log"
	// DefaultLogLevel is the configured severity floor for the log sink.
	DefaultLogLevel = "INFO"
	// DefaultOutputFormat renders the final summary as plain text.
	DefaultOutputFormat = OutputFormatText
)
