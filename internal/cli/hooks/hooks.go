package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
)

// --- TUI messages ---

// FileStatusUpdateMsg signals a change in a document's processing status.
type FileStatusUpdateMsg struct {
	Path     string
	Status   pipeline.Status
	Message  string
	Duration time.Duration
}

// ProgressMsg carries the shared completion counter to the TUI.
type ProgressMsg struct {
	Completed int64
	Total     int64
}

// HeartbeatMsg signals that the run is still alive.
type HeartbeatMsg struct{}

// RunCompleteMsg signals the completion of the entire run.
type RunCompleteMsg struct{ Report pipeline.Report }

// TUIProgram defines the interface needed to interact with the Bubble Tea program.
type TUIProgram interface {
	Send(msg tea.Msg)
}

// ProgressBar defines the interface needed to drive the terminal
// progress bar. Matches the methods of progressbar.ProgressBar.
type ProgressBar interface {
	Set(num int) error
	ChangeMax(newMax int)
	Describe(description string)
	Close() error
}

// NoOpTUIProgram provides a default null implementation.
type NoOpTUIProgram struct{}

func (n *NoOpTUIProgram) Send(msg tea.Msg) {}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

func (n *NoOpProgressBar) Set(num int) error           { return nil }
func (n *NoOpProgressBar) ChangeMax(newMax int)        {}
func (n *NoOpProgressBar) Describe(description string) {}
func (n *NoOpProgressBar) Close() error                { return nil }

// CLIHooks implements pipeline.Hooks, bridging pipeline events to the
// CLI's UI layer (TUI, progress bar, logger).
type CLIHooks struct {
	logger     *slog.Logger
	tuiEnabled bool
	verbose    bool
	tui        TUIProgram
	bar        ProgressBar
	mu         sync.Mutex // protects bar
}

// NewCLIHooks creates a CLIHooks instance. Pass nil for tui or bar when
// not applicable; no-op versions are substituted.
func NewCLIHooks(logger *slog.Logger, tuiEnabled, verbose bool, tui TUIProgram, bar ProgressBar) pipeline.Hooks {
	if tui == nil {
		tui = &NoOpTUIProgram{}
	}
	if bar == nil {
		bar = &NoOpProgressBar{}
	}
	return &CLIHooks{
		logger:     logger,
		tuiEnabled: tuiEnabled,
		verbose:    verbose,
		tui:        tui,
		bar:        bar,
	}
}

// OnFileStatusUpdate handles per-document status transitions. Must be
// safe for concurrent use by the worker pool.
func (h *CLIHooks) OnFileStatusUpdate(path string, status pipeline.Status, message string, duration time.Duration) error {
	if h.tuiEnabled {
		h.tui.Send(FileStatusUpdateMsg{Path: path, Status: status, Message: message, Duration: duration})
		return nil
	}

	if h.verbose {
		level := slog.LevelDebug
		msg := "Document status updated"
		attrs := []any{
			slog.String("path", path),
			slog.String("status", string(status)),
		}
		if duration > 0 {
			attrs = append(attrs, slog.Duration("duration", duration))
		}
		if message != "" {
			key := "message"
			if status == pipeline.StatusFailed {
				key = "error"
			}
			attrs = append(attrs, slog.String(key, message))
		}
		switch status {
		case pipeline.StatusSuccess:
			level = slog.LevelInfo
		case pipeline.StatusFailed:
			level = slog.LevelError
			msg = "Document processing failed"
		}
		h.logger.Log(context.Background(), level, msg, attrs...)
		return nil
	}

	// Progress bar / plain mode: surface failures regardless.
	if status == pipeline.StatusFailed {
		h.logger.Error("Document processing failed", "path", path, "error", message)
	}
	return nil
}

// OnProgress handles periodic snapshots of the shared completion counter.
func (h *CLIHooks) OnProgress(completed, total int64) error {
	if h.tuiEnabled {
		h.tui.Send(ProgressMsg{Completed: completed, Total: total})
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bar.ChangeMax(int(total))
	_ = h.bar.Set(int(completed))
	return nil
}

// OnHeartbeat emits a liveness signal so long runs never look hung.
func (h *CLIHooks) OnHeartbeat() error {
	if h.tuiEnabled {
		h.tui.Send(HeartbeatMsg{})
		return nil
	}
	h.logger.Info("Still processing")
	return nil
}

// OnRunComplete finalizes the UI. The textual summary itself is printed
// by the CLI runner, not here.
func (h *CLIHooks) OnRunComplete(report pipeline.Report) error {
	if h.tuiEnabled {
		h.tui.Send(RunCompleteMsg{Report: report})
		return nil
	}
	h.mu.Lock()
	_ = h.bar.Close()
	h.mu.Unlock()
	// Newline after the bar so the summary does not overlap it.
	_, _ = fmt.Fprintf(os.Stderr, "\n")
	return nil
}
