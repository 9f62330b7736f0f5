package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/Pantagrueliste/multi-saxon/internal/cli/config"
	"github.com/Pantagrueliste/multi-saxon/internal/cli/hooks"
	"github.com/Pantagrueliste/multi-saxon/internal/cli/ui"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/xslt"
)

// ExitCodeSuccess and ExitCodeError are the process exit codes. A
// cancelled run that produced a partial report still exits zero.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// Run executes a full processing run with the given settings and
// returns the process exit code. It owns the log sink, the UI mode
// decision, and the final summary; the pipeline itself lives in
// pkg/pipeline.
func Run(ctx context.Context, settings config.Settings) int {
	logFile, err := os.OpenFile(settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open log file %s: %v\n", settings.LogFile, err)
		return ExitCodeError
	}
	defer logFile.Close()

	var logSink io.Writer = logFile
	level := settings.LogLevel
	if settings.Verbose {
		logSink = io.MultiWriter(logFile, os.Stderr)
		if level > slog.LevelDebug {
			level = slog.LevelDebug
		}
	}
	handler := slog.NewTextHandler(logSink, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With(slog.String("component", "cli"))

	opts := settings.Options
	opts.Logger = handler
	opts.Engine = xslt.NewExecEngine(settings.XSLTCommand, handler)

	useTUI := !settings.NoTUI &&
		!settings.Verbose &&
		settings.OutputFormat == pipeline.OutputFormatText &&
		term.IsTerminal(int(os.Stdout.Fd()))

	var report pipeline.Report
	var runErr error
	if useTUI {
		report, runErr = runWithTUI(ctx, opts, logger)
	} else {
		report, runErr = runPlain(ctx, opts, settings, handler)
	}
	if runErr != nil {
		logger.Error("Run failed", "error", runErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return ExitCodeError
	}

	if err := printSummary(report, settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}

// runPlain runs the pipeline in progress-bar or log-only mode.
func runPlain(ctx context.Context, opts pipeline.Options, settings config.Settings, handler slog.Handler) (pipeline.Report, error) {
	logger := slog.New(handler).With(slog.String("component", "cli"))

	var bar hooks.ProgressBar
	showBar := !settings.Verbose &&
		settings.OutputFormat == pipeline.OutputFormatText &&
		term.IsTerminal(int(os.Stderr.Fd()))
	if showBar {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Processing documents"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetRenderBlankState(true),
		)
	}

	opts.EventHooks = hooks.NewCLIHooks(logger, false, settings.Verbose, nil, bar)

	eng, err := pipeline.NewEngine(ctx, opts)
	if err != nil {
		return pipeline.Report{}, err
	}
	return eng.Run()
}

// runWithTUI runs the pipeline behind a Bubble Tea program. The
// pipeline executes on a goroutine with a context that is cancelled
// when the user quits the TUI early.
func runWithTUI(ctx context.Context, opts pipeline.Options, logger *slog.Logger) (pipeline.Report, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(0)
	program := tea.NewProgram(&model, tea.WithContext(ctx))

	opts.EventHooks = hooks.NewCLIHooks(logger, true, false, program, nil)

	type result struct {
		report pipeline.Report
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		eng, err := pipeline.NewEngine(runCtx, opts)
		if err != nil {
			resCh <- result{err: err}
			program.Send(tea.Quit())
			return
		}
		report, err := eng.Run()
		resCh <- result{report: report, err: err}
	}()

	if _, err := program.Run(); err != nil {
		logger.Warn("TUI terminated", "error", err)
	}
	// Quitting the TUI before completion cancels the run; the pipeline
	// then finishes in-flight documents and reports partial results.
	cancel()
	res := <-resCh
	return res.report, res.err
}

// printSummary writes the end-of-run summary to stdout in the
// configured output format.
func printSummary(report pipeline.Report, settings config.Settings) error {
	if settings.OutputFormat == pipeline.OutputFormatJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("cannot encode report: %w", err)
		}
		return nil
	}

	s := report.Summary
	fmt.Fprintf(os.Stdout, "Processing complete: %d/%d files processed successfully\n",
		s.SuccessCount, s.DiscoveredCount)
	if s.Cancelled {
		fmt.Fprintln(os.Stdout, "Run was cancelled; results above reflect completed work only.")
	}
	if s.FailureCount > 0 {
		fmt.Fprintf(os.Stdout, "Check %s for details on failed files.\n", settings.LogFile)
	}
	fmt.Fprintf(os.Stdout, "Metadata written to %s\n", s.MetadataFile)
	return nil
}
