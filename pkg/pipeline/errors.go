package pipeline

import "errors"

// Error categories returned by Run or recorded per document. Callers
// check against these with errors.Is.
var (
	// ErrConfigValidation indicates the provided Options failed validation
	// before any processing began. Always fatal.
	ErrConfigValidation = errors.New("invalid pipeline options")

	// ErrDiscovery indicates the input root could not be enumerated
	// (nonexistent or unreadable). Fatal, raised before the pool starts.
	ErrDiscovery = errors.New("document discovery failed")

	// ErrCompile indicates a worker failed to compile the stylesheet.
	// Fatal to that worker's chunk only: every document of the chunk is
	// recorded as a failure and sibling workers continue.
	ErrCompile = errors.New("stylesheet compilation failed")

	// ErrTransform indicates the external engine failed to transform one
	// document. Retried up to the configured limit.
	ErrTransform = errors.New("document transformation failed")

	// ErrExtract indicates the TEI header of one document could not be
	// parsed. Retried up to the configured limit.
	ErrExtract = errors.New("metadata extraction failed")

	// ErrMkdirOutput indicates a language subdirectory could not be created.
	ErrMkdirOutput = errors.New("failed to create output directory")

	// ErrWriteOutput indicates the transformed text could not be moved
	// into its final location.
	ErrWriteOutput = errors.New("failed to write output file")

	// ErrReportWrite indicates the consolidated CSV report could not be
	// written at the end of the run.
	ErrReportWrite = errors.New("failed to write metadata report")
)
