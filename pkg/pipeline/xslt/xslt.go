// Package xslt wraps the external XSLT processor used to transform
// source documents. The pipeline treats it as a black box: compile a
// stylesheet once per worker, then apply it file by file.
package xslt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// maxStderrBytes limits the amount of processor stderr captured into
// error messages.
const maxStderrBytes = 4 * 1024

var (
	// ErrCompile indicates the stylesheet could not be loaded or the
	// processor command is unusable.
	ErrCompile = errors.New("stylesheet compilation failed")
	// ErrApply indicates the processor failed to transform one document.
	ErrApply = errors.New("transformation failed")
)

// Engine compiles stylesheets into appliable transforms.
type Engine interface {
	Compile(ctx context.Context, stylesheetPath string) (CompiledTransform, error)
}

// CompiledTransform applies one compiled stylesheet to a source
// document, writing the result to destPath.
type CompiledTransform interface {
	Apply(ctx context.Context, sourcePath, destPath string) error
}

// execEngine implements Engine by shelling out to a Saxon-style
// processor command, e.g. ["java", "-jar", "saxon-he.jar"]. Apply
// invocations append -s:, -xsl: and -o: arguments in Saxon's syntax.
type execEngine struct {
	command []string
	logger  *slog.Logger
}

// NewExecEngine creates an Engine that runs the given processor command
// as an external process per document.
func NewExecEngine(command []string, loggerHandler slog.Handler) Engine {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "xslt"))
	return &execEngine{command: command, logger: logger}
}

// Compile verifies the processor command and stylesheet up front so a
// broken configuration surfaces once per worker instead of once per
// document. The stylesheet content is read to catch unreadable files
// early; the processor itself re-reads it on each Apply.
func (e *execEngine) Compile(ctx context.Context, stylesheetPath string) (CompiledTransform, error) {
	if len(e.command) == 0 {
		return nil, fmt.Errorf("%w: processor command cannot be empty", ErrCompile)
	}
	if _, err := exec.LookPath(e.command[0]); err != nil {
		return nil, fmt.Errorf("%w: processor command %q not found: %w", ErrCompile, e.command[0], err)
	}
	content, err := os.ReadFile(stylesheetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read stylesheet %q: %w", ErrCompile, stylesheetPath, err)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: stylesheet %q is empty", ErrCompile, stylesheetPath)
	}
	e.logger.Debug("Stylesheet loaded",
		slog.String("path", stylesheetPath),
		slog.Int("bytes", len(content)))
	return &execTransform{
		command:        e.command,
		stylesheetPath: stylesheetPath,
		logger:         e.logger,
	}, nil
}

type execTransform struct {
	command        []string
	stylesheetPath string
	logger         *slog.Logger
}

// Apply runs the processor on one document. The process is bound to ctx
// so cancellation kills an in-flight transformation.
func (t *execTransform) Apply(ctx context.Context, sourcePath, destPath string) error {
	args := append([]string(nil), t.command[1:]...)
	args = append(args,
		"-s:"+sourcePath,
		"-xsl:"+t.stylesheetPath,
		"-o:"+destPath,
	)
	cmd := exec.CommandContext(ctx, t.command[0], args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = newLimitWriter(&stderrBuf, maxStderrBytes)

	t.logger.Debug("Running processor",
		slog.String("source", sourcePath),
		slog.String("dest", destPath))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		detail := strings.TrimSpace(stderrBuf.String())
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%w: %s: %s", ErrApply, sourcePath, detail)
	}
	return nil
}

// limitWriter discards everything past n bytes. Keeps rogue processor
// output from bloating error messages.
type limitWriter struct {
	w io.Writer
	n int
}

func newLimitWriter(w io.Writer, n int) *limitWriter {
	return &limitWriter{w: w, n: n}
}

func (l *limitWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return len(p), nil
	}
	if len(p) > l.n {
		if _, err := l.w.Write(p[:l.n]); err != nil {
			return 0, err
		}
		l.n = 0
		return len(p), nil
	}
	l.n -= len(p)
	return l.w.Write(p)
}
