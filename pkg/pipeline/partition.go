package pipeline

import (
	"fmt"
	"runtime"
)

// Workers resolves the effective pool size: the configured maximum (0
// meaning all available cores) clamped to the number of candidates, so
// no worker ever starts without at least one document.
func Workers(configured, candidates int) int {
	n := configured
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > candidates {
		n = candidates
	}
	return n
}

// Partition splits files into chunks per the chosen strategy. Every file
// appears in exactly one chunk; an empty input yields no chunks.
//
// StrategyFixedBatch produces ceil(len(files)/batchSize) consecutive
// chunks of batchSize, the last possibly shorter. StrategyStriped
// produces one chunk per worker with files assigned round-robin
// (chunk[w] holds file[i] for all i where i % workers == w), so chunk
// sizes differ by at most one.
func Partition(files []string, strategy PartitionStrategy, batchSize, workers int) ([][]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	switch strategy {
	case StrategyFixedBatch:
		if batchSize <= 0 {
			return nil, fmt.Errorf("%w: fixed-batch partitioning requires a positive batch size, got %d", ErrConfigValidation, batchSize)
		}
		chunks := make([][]string, 0, (len(files)+batchSize-1)/batchSize)
		for start := 0; start < len(files); start += batchSize {
			end := start + batchSize
			if end > len(files) {
				end = len(files)
			}
			chunks = append(chunks, files[start:end])
		}
		return chunks, nil
	case StrategyStriped:
		if workers <= 0 {
			return nil, fmt.Errorf("%w: striped partitioning requires a positive worker count, got %d", ErrConfigValidation, workers)
		}
		if workers > len(files) {
			workers = len(files)
		}
		chunks := make([][]string, workers)
		for i, f := range files {
			w := i % workers
			chunks[w] = append(chunks[w], f)
		}
		return chunks, nil
	default:
		return nil, fmt.Errorf("%w: unknown partition strategy %q", ErrConfigValidation, strategy)
	}
}
