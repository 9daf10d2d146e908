// Package progress drives a timer-paced progress indicator that completes on
// an explicit end signal.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tormodhaugland/ani/internal/host"
)

// State is the lifecycle of a tracker's session.
type State int

const (
	Idle State = iota
	Running
	Completing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completing:
		return "completing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	// Step is added to the percentage on every tick.
	Step = 10
	// Cap is the highest percentage reached before End is called.
	Cap = 90
	// DefaultTitle is used when Start is given an empty title.
	DefaultTitle = "Processing..."
)

// Tracker runs at most one progress session at a time.
type Tracker struct {
	Host     host.Progress
	Interval time.Duration
	Hold     time.Duration
	Log      *slog.Logger

	mu  sync.Mutex
	cur *session
}

type session struct {
	id       string
	title    string
	state    State
	percent  int
	done     chan struct{}
	ended    bool
	cancel   context.CancelFunc
	finished chan struct{}
}

// Start opens a new session. A session that is still running is cancelled
// first: its indicator closes without reaching 100.
func (t *Tracker) Start(ctx context.Context, title string) error {
	if title == "" {
		title = DefaultTitle
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev := t.cur; prev != nil {
		t.logger().Info("replacing running progress session", "session", prev.id, "title", prev.title)
		prev.cancel()
		t.cur = nil
	}

	ind, err := t.Host.StartProgress(ctx, title)
	if err != nil {
		return fmt.Errorf("starting progress %q: %w", title, err)
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &session{
		id:       uuid.NewString(),
		title:    title,
		state:    Running,
		done:     make(chan struct{}),
		cancel:   cancel,
		finished: make(chan struct{}),
	}
	t.cur = s

	t.logger().Debug("progress started", "session", s.id, "title", title)
	go t.run(sctx, s, ind)
	return nil
}

// End signals the running session to complete. It is a no-op when no
// session is running.
func (t *Tracker) End() {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.cur
	if s == nil || s.state != Running || s.ended {
		return
	}
	s.ended = true
	close(s.done)
}

// Stop cancels the running session, if any, and waits for it to exit. A
// session that End was already called on is left to report 100 and hold.
func (t *Tracker) Stop() {
	t.mu.Lock()
	s := t.cur
	if s != nil && !s.ended {
		s.cancel()
	}
	t.mu.Unlock()

	if s != nil {
		<-s.finished
	}
}

// Wait blocks until the current session, if any, has finished.
func (t *Tracker) Wait() {
	t.mu.Lock()
	s := t.cur
	t.mu.Unlock()

	if s != nil {
		<-s.finished
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur == nil {
		return Idle
	}
	return t.cur.state
}

// Percent returns the current session's percentage, or 0 when idle.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur == nil {
		return 0
	}
	return t.cur.percent
}

func (t *Tracker) run(ctx context.Context, s *session, ind host.ProgressIndicator) {
	defer t.finish(s)
	defer ind.Close()

	ticker := time.NewTicker(t.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// End may have raced the cancellation.
			select {
			case <-s.done:
				t.complete(ctx, s, ind)
			default:
				t.logger().Debug("progress cancelled", "session", s.id)
			}
			return

		case <-s.done:
			t.complete(ctx, s, ind)
			return

		case <-ticker.C:
			t.mu.Lock()
			if s.percent >= Cap {
				t.mu.Unlock()
				continue
			}
			s.percent += Step
			pct := s.percent
			t.mu.Unlock()

			ind.Report(pct, "")
		}
	}
}

// complete reports 100 and holds it, cut short if ctx ends.
func (t *Tracker) complete(ctx context.Context, s *session, ind host.ProgressIndicator) {
	t.mu.Lock()
	s.state = Completing
	s.percent = 100
	t.mu.Unlock()

	ind.Report(100, "Done")
	if ctx.Err() == nil {
		select {
		case <-time.After(t.Hold):
		case <-ctx.Done():
		}
	}
	t.logger().Debug("progress completed", "session", s.id)
}

func (t *Tracker) finish(s *session) {
	t.mu.Lock()
	if t.cur == s {
		t.cur = nil
	}
	s.state = Idle
	t.mu.Unlock()

	s.cancel()
	close(s.finished)
}

func (t *Tracker) interval() time.Duration {
	if t.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return t.Interval
}

func (t *Tracker) logger() *slog.Logger {
	if t.Log != nil {
		return t.Log
	}
	return slog.Default()
}
