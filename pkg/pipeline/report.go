package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// csvHeader is the fixed header row of the metadata report.
var csvHeader = []string{"Title", "Author", "Date", "Language", "Word Count"}

// Report is the final result of a run: ordered successful records,
// failures, and aggregate statistics. A cancelled run produces a valid
// Report covering exactly the outcomes completed before the signal.
type Report struct {
	Summary  ReportSummary    `json:"summary"`
	Records  []MetadataRecord `json:"records"`
	Failures []FailureRecord  `json:"failures"`
}

// ReportSummary carries the aggregate statistics of one run.
type ReportSummary struct {
	InputPath       string            `json:"inputPath"`
	OutputPath      string            `json:"outputPath"`
	MetadataFile    string            `json:"metadataFile"`
	Strategy        PartitionStrategy `json:"strategy"`
	Workers         int               `json:"workers"`
	Chunks          int               `json:"chunks"`
	DiscoveredCount int               `json:"discoveredCount"`
	SuccessCount    int               `json:"successCount"`
	FailureCount    int               `json:"failureCount"`
	Cancelled       bool              `json:"cancelled"`
	DurationSeconds float64           `json:"durationSeconds"`
	Timestamp       time.Time         `json:"timestamp"`
}

// aggregate flattens per-chunk results in chunk order, preserving each
// chunk's internal order, and partitions outcomes into successes and
// failures. No deduplication: every document belongs to exactly one
// chunk, so at most one outcome exists per path.
func aggregate(results []ChunkResult) (records []MetadataRecord, failures []FailureRecord) {
	for _, res := range results {
		for _, out := range res.Outcomes {
			switch {
			case out.Record != nil:
				records = append(records, *out.Record)
			case out.Failure != nil:
				failures = append(failures, *out.Failure)
			}
		}
	}
	return records, failures
}

// writeCSV writes the consolidated metadata report: a UTF-8 CSV with the
// fixed header row and one row per successful record. encoding/csv
// handles quoting of embedded commas and quotes.
func writeCSV(path string, records []MetadataRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrReportWrite, path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("%w: %q: %w", ErrReportWrite, path, err)
	}
	for _, r := range records {
		row := []string{r.Title, r.Author, r.Date, r.Language, strconv.Itoa(r.WordCount)}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("%w: %q: %w", ErrReportWrite, path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %q: %w", ErrReportWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrReportWrite, path, err)
	}
	return nil
}
