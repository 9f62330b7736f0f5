package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// scheduler owns the fixed-size worker pool. Chunks are dispatched over
// a channel of indexes; each chunk runs to completion on exactly one
// worker (no work stealing) and its result lands in a slice slot keyed
// by chunk index, keeping aggregation order deterministic regardless of
// which worker finishes first.
type scheduler struct {
	workers     int
	transformer *chunkTransformer
	logger      *slog.Logger
}

func newScheduler(workers int, transformer *chunkTransformer, loggerHandler slog.Handler) *scheduler {
	return &scheduler{
		workers:     workers,
		transformer: transformer,
		logger:      slog.New(loggerHandler).With(slog.String("component", "scheduler")),
	}
}

// Run blocks until every dispatched chunk has returned. On cancellation
// it stops dispatching, lets in-flight chunks wind down at their next
// per-document check, and still returns whatever results were captured,
// so a cancelled run aggregates into a valid partial report.
func (s *scheduler) Run(ctx context.Context, chunks [][]string) []ChunkResult {
	results := make([]ChunkResult, len(chunks))
	for i := range results {
		results[i].Chunk = i
	}

	chunkCh := make(chan int)
	var g errgroup.Group
	for w := 0; w < s.workers; w++ {
		wLogger := s.logger.With(slog.Int("worker", w))
		g.Go(func() error {
			wLogger.Debug("Worker started")
			for idx := range chunkCh {
				wLogger.Debug("Processing chunk", slog.Int("chunk", idx), slog.Int("documents", len(chunks[idx])))
				results[idx] = s.transformer.Process(ctx, idx, chunks[idx])
			}
			wLogger.Debug("Worker shutting down")
			return nil
		})
	}

	s.logger.Info("Worker pool started",
		slog.Int("workers", s.workers),
		slog.Int("chunks", len(chunks)))

dispatch:
	for i := range chunks {
		select {
		case chunkCh <- i:
		case <-ctx.Done():
			s.logger.Info("Dispatch stopped on cancellation",
				slog.Int("dispatched", i),
				slog.Int("remaining", len(chunks)-i))
			break dispatch
		}
	}
	close(chunkCh)
	_ = g.Wait()

	return results
}
