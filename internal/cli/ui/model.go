package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Pantagrueliste/multi-saxon/internal/cli/hooks"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
)

// recentLimit bounds the activity log shown below the progress bar.
const recentLimit = 12

// activityEntry is one line of the recent-activity log.
type activityEntry struct {
	path     string
	status   pipeline.Status
	message  string
	duration time.Duration
}

// Summary tracks the aggregated counts shown in the footer.
type Summary struct {
	Completed int64
	Total     int64
	Successes int
	Failures  int
	Retries   int
	StartTime time.Time
}

// Model is the Bubble Tea state for an interactive run: a spinner, a
// progress bar fed by the shared completion counter, a short activity
// log, and the final report once the run completes.
type Model struct {
	spinner  spinner.Model
	progress progress.Model
	width    int

	phase     string
	summary   Summary
	recent    []activityEntry
	report    *pipeline.Report
	done      bool
	quitting  bool
	fatalLine string
}

// NewModel creates the initial TUI model.
func NewModel(total int64) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(progress.WithDefaultGradient())

	return Model{
		spinner:  s,
		progress: p,
		phase:    "Processing...",
		summary:  Summary{Total: total, StartTime: time.Now()},
		recent:   make([]activityEntry, 0, recentLimit),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 4
		if w < 10 {
			w = 10
		}
		m.progress.Width = w

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done || m.quitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		cmds = append(cmds, cmd)

	case hooks.ProgressMsg:
		m.summary.Completed = msg.Completed
		m.summary.Total = msg.Total
		if msg.Total > 0 {
			cmds = append(cmds, m.progress.SetPercent(float64(msg.Completed)/float64(msg.Total)))
		}

	case hooks.HeartbeatMsg:
		// The spinner already conveys liveness; nothing to update.

	case hooks.FileStatusUpdateMsg:
		switch msg.Status {
		case pipeline.StatusSuccess:
			m.summary.Successes++
		case pipeline.StatusFailed:
			m.summary.Failures++
		case pipeline.StatusRetrying:
			m.summary.Retries++
		}
		m.recent = append(m.recent, activityEntry{
			path:     msg.Path,
			status:   msg.Status,
			message:  msg.Message,
			duration: msg.Duration,
		})
		if len(m.recent) > recentLimit {
			m.recent = m.recent[len(m.recent)-recentLimit:]
		}

	case hooks.RunCompleteMsg:
		m.done = true
		m.phase = "Complete"
		r := msg.Report
		m.report = &r
		m.summary.Completed = int64(r.Summary.SuccessCount + r.Summary.FailureCount)
		m.summary.Successes = r.Summary.SuccessCount
		m.summary.Failures = r.Summary.FailureCount
		if r.Summary.Cancelled {
			m.fatalLine = "Run cancelled; report reflects completed work only."
		}
		cmds = append(cmds, tea.Quit)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	if m.quitting && !m.done {
		return "Cancelling...\n"
	}

	var b strings.Builder

	head := m.phase
	if !m.done {
		head = m.spinner.View() + " " + m.phase
	}
	b.WriteString(headerStyle.Render(head))
	b.WriteString("\n\n")

	b.WriteString("  " + m.progress.View() + "\n")
	b.WriteString(fmt.Sprintf("  %d/%d documents\n\n", m.summary.Completed, m.summary.Total))

	for _, e := range m.recent {
		b.WriteString("  " + renderEntry(e) + "\n")
	}

	if m.report != nil {
		s := m.report.Summary
		b.WriteString(fmt.Sprintf("\n  Processing complete: %d/%d files processed successfully\n",
			s.SuccessCount, s.DiscoveredCount))
	}
	if m.fatalLine != "" {
		b.WriteString("\n" + failedStyle.Render(m.fatalLine) + "\n")
	}

	elapsed := time.Since(m.summary.StartTime).Round(time.Millisecond)
	footer := fmt.Sprintf("Succeeded: %d | Failed: %d | Retries: %d | Elapsed: %s",
		m.summary.Successes, m.summary.Failures, m.summary.Retries, elapsed)
	b.WriteString("\n" + footerStyle.Render(footer) + "  q: quit\n")

	return b.String()
}

func renderEntry(e activityEntry) string {
	switch e.status {
	case pipeline.StatusSuccess:
		d := ""
		if e.duration > 0 {
			d = " " + formatDuration(e.duration)
		}
		return successStyle.Render("✓") + " " + e.path + dimStyle.Render(d)
	case pipeline.StatusFailed:
		return failedStyle.Render("✗") + " " + e.path + " " + dimStyle.Render(e.message)
	case pipeline.StatusRetrying:
		return retryStyle.Render("↻") + " " + e.path + " " + dimStyle.Render(e.message)
	default:
		return dimStyle.Render("·") + " " + e.path
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("56")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	retryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
