package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/tei"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/xslt"
)

// chunkTransformer processes one chunk per invocation: it compiles the
// stylesheet once, amortizing the cost across the chunk, then works
// through the documents strictly in order with bounded per-file retries.
// One instance is shared by all workers; all mutable state lives in the
// arguments and the shared counter.
type chunkTransformer struct {
	opts      *Options
	counter   *Counter
	hooks     Hooks
	extractor tei.Extractor
	sleep     SleepFunc
	logger    *slog.Logger
}

func newChunkTransformer(opts *Options, counter *Counter, loggerHandler slog.Handler) *chunkTransformer {
	return &chunkTransformer{
		opts:      opts,
		counter:   counter,
		hooks:     opts.EventHooks,
		extractor: opts.Extractor,
		sleep:     opts.Sleep,
		logger:    slog.New(loggerHandler).With(slog.String("component", "transformer")),
	}
}

// Process runs one chunk to completion. A stylesheet compile failure
// fails every document of the chunk without touching sibling workers.
// Cancellation mid-chunk returns the outcomes completed so far; the
// document in flight at the moment of cancellation gets no outcome.
func (t *chunkTransformer) Process(ctx context.Context, chunkIdx int, files []string) ChunkResult {
	res := ChunkResult{Chunk: chunkIdx, Outcomes: make([]Outcome, 0, len(files))}
	logger := t.logger.With(slog.Int("chunk", chunkIdx))

	compiled, err := t.opts.Engine.Compile(ctx, t.opts.StylesheetPath)
	if err != nil {
		compileErr := fmt.Errorf("%w: %w", ErrCompile, err)
		logger.Error("Stylesheet compilation failed, recording whole chunk as failed",
			slog.String("stylesheet", t.opts.StylesheetPath),
			slog.Int("documents", len(files)),
			slog.String("error", err.Error()))
		for _, f := range files {
			_ = t.hooks.OnFileStatusUpdate(f, StatusFailed, compileErr.Error(), 0)
			res.Outcomes = append(res.Outcomes, Outcome{
				Path:    f,
				Failure: &FailureRecord{Path: f, Err: compileErr.Error(), Attempts: 0},
			})
			t.counter.Add(1)
		}
		return res
	}

	for _, f := range files {
		if ctx.Err() != nil {
			logger.Info("Chunk wind-down on cancellation",
				slog.Int("completed", len(res.Outcomes)),
				slog.Int("remaining", len(files)-len(res.Outcomes)))
			return res
		}
		outcome := t.processDocument(ctx, compiled, f, logger)
		if outcome == nil {
			// Cancelled mid-attempt: no outcome, no counter advance.
			return res
		}
		res.Outcomes = append(res.Outcomes, *outcome)
		t.counter.Add(1)
	}
	return res
}

// processDocument drives the bounded retry loop for one document:
// Attempting(n) -> Success | Attempting(n+1) | Failed, with at most
// MaxRetries+1 total attempts. Every error kind is retried identically;
// only the attempt count decides when to give up. Returns nil only when
// cancelled before reaching a terminal state.
func (t *chunkTransformer) processDocument(ctx context.Context, compiled xslt.CompiledTransform, path string, logger *slog.Logger) *Outcome {
	start := time.Now()
	_ = t.hooks.OnFileStatusUpdate(path, StatusProcessing, "", 0)

	var lastErr error
	for attempt := 1; attempt <= t.opts.MaxRetries+1; attempt++ {
		record, err := t.attempt(ctx, compiled, path)
		if err == nil {
			_ = t.hooks.OnFileStatusUpdate(path, StatusSuccess, "", time.Since(start))
			return &Outcome{Path: path, Record: record}
		}
		if ctx.Err() != nil {
			return nil
		}
		lastErr = err
		logger.Error("Document processing attempt failed",
			slog.String("path", path),
			slog.Int("attempt", attempt),
			slog.Int("maxAttempts", t.opts.MaxRetries+1),
			slog.String("error", err.Error()))
		if attempt <= t.opts.MaxRetries {
			_ = t.hooks.OnFileStatusUpdate(path, StatusRetrying, err.Error(), time.Since(start))
			if sleepErr := t.sleep(ctx, t.opts.RetryDelay); sleepErr != nil {
				return nil
			}
		}
	}

	_ = t.hooks.OnFileStatusUpdate(path, StatusFailed, lastErr.Error(), time.Since(start))
	return &Outcome{
		Path: path,
		Failure: &FailureRecord{
			Path:     path,
			Err:      lastErr.Error(),
			Attempts: t.opts.MaxRetries + 1,
		},
	}
}

// attempt performs one full pass over a document: transform to a staging
// path in the output root, extract the TEI header, ensure the
// language-keyed subdirectory, atomically rename the staging file into
// it, and count the words of the final text.
func (t *chunkTransformer) attempt(ctx context.Context, compiled xslt.CompiledTransform, path string) (*MetadataRecord, error) {
	name := t.outputName(path)
	staging := filepath.Join(t.opts.OutputPath, name)

	if err := compiled.Apply(ctx, path, staging); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransform, err)
	}

	meta, err := t.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtract, err)
	}

	langDir := filepath.Join(t.opts.OutputPath, pathSafe(meta.Language))
	// MkdirAll is idempotent: concurrent creation of an existing language
	// directory never errors.
	if err := os.MkdirAll(langDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrMkdirOutput, langDir, err)
	}

	final := filepath.Join(langDir, name)
	if err := os.Rename(staging, final); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrWriteOutput, final, err)
	}

	wordCount, err := tei.CountWords(final)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrWriteOutput, final, err)
	}

	return &MetadataRecord{
		Title:     meta.Title,
		Author:    meta.Author,
		Date:      meta.Date,
		Language:  meta.Language,
		WordCount: wordCount,
	}, nil
}

// outputName derives the output filename from the document's path
// relative to the input root, flattening separators so distinct inputs
// always map to distinct outputs even when basenames collide across
// subdirectories.
func (t *chunkTransformer) outputName(path string) string {
	rel, err := filepath.Rel(t.opts.InputPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	name := strings.ReplaceAll(filepath.ToSlash(rel), "/", "__")
	suffix := t.opts.SourceSuffix
	if strings.HasSuffix(name, suffix) {
		name = name[:len(name)-len(suffix)]
	}
	return name + DefaultOutputSuffix
}

// pathSafe strips path separators from a metadata-derived directory
// name so a hostile language ident cannot escape the output root.
func pathSafe(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, string(filepath.Separator), "_")
	if s == "" || s == "." || s == ".." {
		return UnknownField
	}
	return s
}
