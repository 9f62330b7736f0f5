package pipeline

// Status defines the possible processing states of a document during a run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusRetrying   Status = "retrying"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// PartitionStrategy selects how the discovered document list is divided
// into chunks for the worker pool.
type PartitionStrategy string

const (
	// StrategyFixedBatch divides the list into consecutive chunks of a
	// configured size. Bounds peak memory when the transformation engine
	// holds per-file state; the last chunk may be shorter.
	StrategyFixedBatch PartitionStrategy = "batch"
	// StrategyStriped distributes documents round-robin across one chunk
	// per worker, balancing load regardless of file-size skew.
	StrategyStriped PartitionStrategy = "striped"
)

// UnknownField is the sentinel recorded for any TEI header field whose
// structural element is absent from the source document.
const UnknownField = "Unknown"

// MetadataRecord is the structured result of successfully transforming
// and inspecting one document. It becomes one row of the CSV report.
type MetadataRecord struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Date      string `json:"date"`
	Language  string `json:"language"`
	WordCount int    `json:"wordCount"`
}

// FailureRecord describes one document that exhausted all of its retry
// attempts (or belonged to a chunk whose stylesheet never compiled).
type FailureRecord struct {
	Path     string `json:"path"`
	Err      string `json:"error"`
	Attempts int    `json:"attempts"`
}

// Outcome is the terminal state of exactly one document: either Record
// or Failure is set, never both, never neither.
type Outcome struct {
	Path    string          `json:"path"`
	Record  *MetadataRecord `json:"record,omitempty"`
	Failure *FailureRecord  `json:"failure,omitempty"`
}

// ChunkResult carries the ordered outcomes of one chunk. Chunk preserves
// the chunk's index so aggregation can reassemble results in dispatch
// order regardless of completion interleaving.
type ChunkResult struct {
	Chunk    int
	Outcomes []Outcome
}

// OutputFormat selects the final summary rendering when the TUI is not active.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)
