package pipeline

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Counter is the single cross-worker shared value: the number of
// documents attempted to completion (success or exhausted failure).
// Increments are atomic; readers may observe any value between 0 and the
// total at any poll, which is acceptable for a display counter.
type Counter struct {
	n atomic.Int64
}

// Add advances the counter by delta.
func (c *Counter) Add(delta int64) { c.n.Add(delta) }

// Load returns the current value.
func (c *Counter) Load() int64 { return c.n.Load() }

// Tracker renders progress without ever blocking workers: a polling
// goroutine reads the counter at a fixed interval and a second, slower
// goroutine emits a data-free heartbeat. Both terminate only on an
// explicit Stop after the scheduler returns, never by inferring
// completion from the counter reaching the total, which would race with
// the final increment.
type Tracker struct {
	counter           *Counter
	total             int64
	pollInterval      time.Duration
	heartbeatInterval time.Duration
	hooks             Hooks
	logger            *slog.Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewTracker creates a tracker over the shared counter. total is the
// number of discovered documents.
func NewTracker(counter *Counter, total int64, poll, heartbeat time.Duration, hooks Hooks, loggerHandler slog.Handler) *Tracker {
	if poll <= 0 {
		poll = DefaultProgressInterval
	}
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	if hooks == nil {
		hooks = &NoOpHooks{}
	}
	return &Tracker{
		counter:           counter,
		total:             total,
		pollInterval:      poll,
		heartbeatInterval: heartbeat,
		hooks:             hooks,
		logger:            slog.New(loggerHandler).With(slog.String("component", "progress")),
		done:              make(chan struct{}),
	}
}

// Start launches the polling and heartbeat goroutines.
func (t *Tracker) Start() {
	t.wg.Add(2)
	go t.pollLoop()
	go t.heartbeatLoop()
	t.logger.Debug("Progress tracker started",
		slog.Int64("total", t.total),
		slog.Duration("pollInterval", t.pollInterval),
		slog.Duration("heartbeatInterval", t.heartbeatInterval))
}

// Stop signals both loops, waits for them, and emits one final progress
// update so displays land on the true completed count. Safe to call
// more than once.
func (t *Tracker) Stop() {
	t.once.Do(func() {
		close(t.done)
		t.wg.Wait()
		_ = t.hooks.OnProgress(t.counter.Load(), t.total)
		t.logger.Debug("Progress tracker stopped", slog.Int64("completed", t.counter.Load()))
	})
}

func (t *Tracker) pollLoop() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = t.hooks.OnProgress(t.counter.Load(), t.total)
		case <-t.done:
			return
		}
	}
}

func (t *Tracker) heartbeatLoop() {
	defer t.wg.Done()
	ticker := time.NewTicker(t.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = t.hooks.OnHeartbeat()
		case <-t.done:
			return
		}
	}
}
