// Package bridge dispatches messages from a webview to their handlers and
// carries messages back to it.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tormodhaugland/ani/internal/config"
	"github.com/tormodhaugland/ani/internal/host"
	"github.com/tormodhaugland/ani/internal/message"
	"github.com/tormodhaugland/ani/internal/progress"
	"github.com/tormodhaugland/ani/internal/pyenv"
)

// Bridge owns the channel between one panel's webview and the host.
type Bridge struct {
	host      host.Host
	poster    host.Poster
	checker   *pyenv.Checker
	installer *pyenv.Installer
	progress  *progress.Tracker
	delay     time.Duration
	log       *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type options struct {
	runner pyenv.Runner
	log    *slog.Logger
	delay  *time.Duration
}

// Option customizes a Bridge.
type Option func(*options)

// WithRunner replaces the process runner used for probes and installs.
func WithRunner(r pyenv.Runner) Option {
	return func(o *options) { o.runner = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithInstallDelay overrides the pacing delay between installs.
func WithInstallDelay(d time.Duration) Option {
	return func(o *options) { o.delay = &d }
}

// New builds a bridge that performs host calls on h and posts UI messages
// through p.
func New(h host.Host, p host.Poster, cfg *config.Config, opts ...Option) *Bridge {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.runner == nil {
		o.runner = &pyenv.ExecRunner{Timeout: cfg.InstallTimeout()}
	}
	delay := cfg.InstallDelay()
	if o.delay != nil {
		delay = *o.delay
	}

	log := o.log.With("component", "bridge")
	return &Bridge{
		host:   h,
		poster: p,
		checker: &pyenv.Checker{
			Runner:      o.runner,
			Interpreter: cfg.Python.Interpreter,
			ImportNames: cfg.Python.ImportNames,
			Log:         log,
		},
		installer: &pyenv.Installer{
			Runner:      o.runner,
			Interpreter: cfg.Python.Interpreter,
			Args:        cfg.Python.InstallArgs,
		},
		progress: &progress.Tracker{
			Host:     h,
			Interval: cfg.ProgressInterval(),
			Hold:     cfg.ProgressHold(),
			Log:      log,
		},
		delay: delay,
		log:   log,
	}
}

// Dispatch decodes raw and hands it to its handler. Input without a usable
// type is dropped like an unrecognized message; a known type with a payload
// of the wrong shape gets that handler's validation notification.
func (b *Bridge) Dispatch(ctx context.Context, raw []byte) {
	msg, err := message.Decode(raw)
	if err != nil {
		var de *message.DecodeError
		if errors.As(err, &de) && de.Type != "" {
			b.guard(ctx, func() { b.invalidPayload(ctx, de) })
			return
		}
		b.log.Debug("dropping undecodable message", "error", err)
		return
	}
	b.DispatchMessage(ctx, msg)
}

// DispatchMessage runs the handler for msg. Handlers that wait on the host
// or on external processes run on their own goroutine, so the caller never
// blocks on them and a later message may be handled first. Progress and
// notification handlers run inline to keep start/end ordering.
func (b *Bridge) DispatchMessage(ctx context.Context, msg message.Message) {
	if b.isClosed() {
		b.log.Debug("dropping message for closed bridge", "type", msg.MessageType())
		return
	}
	b.log.Debug("dispatch", "type", msg.MessageType())

	switch m := msg.(type) {
	case message.Info:
		b.guard(ctx, func() { b.onInfo(ctx, m) })
	case message.Error:
		b.guard(ctx, func() { b.onError(ctx, m) })
	case message.InsertContent:
		b.spawn(ctx, func() { b.insertContent(ctx, m) })
	case message.InsertFile:
		b.spawn(ctx, func() { b.insertFile(ctx, m) })
	case message.InstallPythonLibs:
		b.spawn(ctx, func() { b.installPythonLibs(ctx, m) })
	case message.StartProgress:
		b.guard(ctx, func() { b.startProgress(ctx, m) })
	case message.EndProgress:
		b.guard(ctx, func() { b.progress.End() })
	default:
		// Unrecognized types are ignored on purpose.
		b.log.Debug("ignoring unrecognized message", "type", msg.MessageType())
	}
}

// Post sends msg to the webview.
func (b *Bridge) Post(ctx context.Context, msg message.Message) error {
	return b.poster.Post(ctx, msg)
}

// Progress exposes the bridge's progress tracker.
func (b *Bridge) Progress() *progress.Tracker {
	return b.progress
}

// Wait blocks until every spawned handler has returned.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// Close stops accepting messages, cancels any progress session and waits for
// running handlers.
func (b *Bridge) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.progress.Stop()
	b.wg.Wait()
}

func (b *Bridge) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// spawn runs fn on its own goroutine unless the bridge is closing. The Add
// happens under mu so it never races the Wait in Close.
func (b *Bridge) spawn(ctx context.Context, fn func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.log.Debug("dropping handler for closed bridge")
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		b.guard(ctx, fn)
	}()
}

// guard keeps a failing handler from taking the bridge down with it.
func (b *Bridge) guard(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("handler panicked", "panic", r)
			b.host.ShowError(ctx, "Unexpected error.")
		}
	}()
	fn()
}
