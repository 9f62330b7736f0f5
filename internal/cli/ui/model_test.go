package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pantagrueliste/multi-saxon/internal/cli/hooks"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
)

func update(t *testing.T, m *Model, msg tea.Msg) *Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(*Model)
	require.True(t, ok)
	return nm
}

func TestProgressMsgUpdatesCounts(t *testing.T) {
	m := NewModel(0)
	mp := update(t, &m, hooks.ProgressMsg{Completed: 4, Total: 10})

	assert.Equal(t, int64(4), mp.summary.Completed)
	assert.Equal(t, int64(10), mp.summary.Total)
	assert.Contains(t, mp.View(), "4/10 documents")
}

func TestStatusUpdatesAccumulateSummary(t *testing.T) {
	m := NewModel(3)
	mp := &m
	mp = update(t, mp, hooks.FileStatusUpdateMsg{Path: "a.xml", Status: pipeline.StatusSuccess, Duration: time.Second})
	mp = update(t, mp, hooks.FileStatusUpdateMsg{Path: "b.xml", Status: pipeline.StatusRetrying, Message: "timeout"})
	mp = update(t, mp, hooks.FileStatusUpdateMsg{Path: "b.xml", Status: pipeline.StatusFailed, Message: "gave up"})

	assert.Equal(t, 1, mp.summary.Successes)
	assert.Equal(t, 1, mp.summary.Failures)
	assert.Equal(t, 1, mp.summary.Retries)

	view := mp.View()
	assert.Contains(t, view, "a.xml")
	assert.Contains(t, view, "b.xml")
	assert.Contains(t, view, "Succeeded: 1")
	assert.Contains(t, view, "Failed: 1")
}

func TestRecentActivityIsBounded(t *testing.T) {
	m := NewModel(100)
	mp := &m
	for i := 0; i < recentLimit*3; i++ {
		mp = update(t, mp, hooks.FileStatusUpdateMsg{Path: "doc.xml", Status: pipeline.StatusSuccess})
	}
	assert.Len(t, mp.recent, recentLimit)
}

func TestRunCompleteQuitsWithFinalCounts(t *testing.T) {
	m := NewModel(5)
	report := pipeline.Report{Summary: pipeline.ReportSummary{
		DiscoveredCount: 5,
		SuccessCount:    4,
		FailureCount:    1,
	}}
	next, cmd := (&m).Update(hooks.RunCompleteMsg{Report: report})
	mp := next.(*Model)

	assert.True(t, mp.done)
	assert.Equal(t, 4, mp.summary.Successes)
	assert.Equal(t, 1, mp.summary.Failures)
	require.NotNil(t, cmd, "completion schedules a quit")
}

func TestRunCompleteCancelledShowsNotice(t *testing.T) {
	m := NewModel(5)
	report := pipeline.Report{Summary: pipeline.ReportSummary{Cancelled: true}}
	next, _ := (&m).Update(hooks.RunCompleteMsg{Report: report})
	mp := next.(*Model)

	assert.Contains(t, mp.View(), "cancelled")
}

func TestQuitKeyCancels(t *testing.T) {
	m := NewModel(5)
	next, cmd := (&m).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	mp := next.(*Model)

	assert.True(t, mp.quitting)
	require.NotNil(t, cmd)
	assert.Contains(t, mp.View(), "Cancelling")
}

func TestWindowSizeAdjustsProgressWidth(t *testing.T) {
	m := NewModel(5)
	mp := update(t, &m, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, 76, mp.progress.Width)

	mp = update(t, mp, tea.WindowSizeMsg{Width: 8, Height: 24})
	assert.Equal(t, 10, mp.progress.Width, "width never collapses below a usable minimum")
}
