package hooks_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pantagrueliste/multi-saxon/internal/cli/hooks"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
)

// recordingTUI captures messages sent to the TUI program.
type recordingTUI struct {
	mu   sync.Mutex
	msgs []interface{}
}

func (r *recordingTUI) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingTUI) messages() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.msgs...)
}

// recordingBar captures progress bar interactions.
type recordingBar struct {
	mu     sync.Mutex
	sets   []int
	max    int
	closed bool
}

func (b *recordingBar) Set(num int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sets = append(b.sets, num)
	return nil
}

func (b *recordingBar) ChangeMax(newMax int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.max = newMax
}

func (b *recordingBar) Describe(string) {}

func (b *recordingBar) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestTUIModeForwardsEvents(t *testing.T) {
	tui := &recordingTUI{}
	var buf bytes.Buffer
	h := hooks.NewCLIHooks(testLogger(&buf), true, false, tui, nil)

	require.NoError(t, h.OnFileStatusUpdate("a.xml", pipeline.StatusSuccess, "", time.Second))
	require.NoError(t, h.OnProgress(3, 10))
	require.NoError(t, h.OnHeartbeat())
	require.NoError(t, h.OnRunComplete(pipeline.Report{}))

	msgs := tui.messages()
	require.Len(t, msgs, 4)
	assert.IsType(t, hooks.FileStatusUpdateMsg{}, msgs[0])
	assert.Equal(t, hooks.ProgressMsg{Completed: 3, Total: 10}, msgs[1])
	assert.IsType(t, hooks.HeartbeatMsg{}, msgs[2])
	assert.IsType(t, hooks.RunCompleteMsg{}, msgs[3])
}

func TestProgressBarModeDrivesBar(t *testing.T) {
	bar := &recordingBar{}
	var buf bytes.Buffer
	h := hooks.NewCLIHooks(testLogger(&buf), false, false, nil, bar)

	require.NoError(t, h.OnProgress(4, 10))
	require.NoError(t, h.OnProgress(10, 10))
	require.NoError(t, h.OnRunComplete(pipeline.Report{}))

	assert.Equal(t, []int{4, 10}, bar.sets)
	assert.Equal(t, 10, bar.max)
	assert.True(t, bar.closed)
}

func TestNonTUIFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	h := hooks.NewCLIHooks(testLogger(&buf), false, false, nil, &recordingBar{})

	require.NoError(t, h.OnFileStatusUpdate("bad.xml", pipeline.StatusFailed, "transform exploded", time.Second))

	out := buf.String()
	assert.Contains(t, out, "bad.xml")
	assert.Contains(t, out, "transform exploded")
}

func TestVerboseModeLogsStatusTransitions(t *testing.T) {
	var buf bytes.Buffer
	h := hooks.NewCLIHooks(testLogger(&buf), false, true, nil, nil)

	require.NoError(t, h.OnFileStatusUpdate("doc.xml", pipeline.StatusProcessing, "", 0))
	require.NoError(t, h.OnFileStatusUpdate("doc.xml", pipeline.StatusRetrying, "timeout", 0))
	require.NoError(t, h.OnFileStatusUpdate("doc.xml", pipeline.StatusSuccess, "", 2*time.Second))

	out := buf.String()
	assert.Contains(t, out, string(pipeline.StatusProcessing))
	assert.Contains(t, out, string(pipeline.StatusRetrying))
	assert.Contains(t, out, string(pipeline.StatusSuccess))
}

func TestHeartbeatLogsInPlainMode(t *testing.T) {
	var buf bytes.Buffer
	h := hooks.NewCLIHooks(testLogger(&buf), false, false, nil, nil)

	require.NoError(t, h.OnHeartbeat())
	assert.Contains(t, buf.String(), "Still processing")
}

func TestNilCollaboratorsAreSafe(t *testing.T) {
	var buf bytes.Buffer
	h := hooks.NewCLIHooks(testLogger(&buf), false, false, nil, nil)

	assert.NoError(t, h.OnProgress(1, 2))
	assert.NoError(t, h.OnRunComplete(pipeline.Report{}))
}
