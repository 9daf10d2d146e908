// Package app wires the stdio connection to panels and commands.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tormodhaugland/ani/internal/bridge"
	"github.com/tormodhaugland/ani/internal/commands"
	"github.com/tormodhaugland/ani/internal/config"
	"github.com/tormodhaugland/ani/internal/host"
	"github.com/tormodhaugland/ani/internal/panel"
	"github.com/tormodhaugland/ani/internal/rpc"
)

const msgCommandFailed = "Command failed."

// App serves one editor window.
type App struct {
	conn     *rpc.Conn
	host     host.Host
	panels   *panel.Manager
	commands *commands.Registry
	log      *slog.Logger

	wg sync.WaitGroup
}

// New builds an App on conn. opts are applied to every panel's bridge.
func New(conn *rpc.Conn, cfg *config.Config, log *slog.Logger, opts ...bridge.Option) *App {
	if log == nil {
		log = slog.Default()
	}
	h := rpc.NewHost(conn)
	opts = append([]bridge.Option{bridge.WithLogger(log)}, opts...)

	factory := func(name string) *bridge.Bridge {
		return bridge.New(h, conn.Poster(name), cfg, opts...)
	}
	panels := panel.NewManager(factory, conn.PanelView(), log)

	reg := commands.NewRegistry()
	commands.RegisterBuiltins(reg, commands.Deps{Host: h, Panels: panels, Log: log})

	return &App{
		conn:     conn,
		host:     h,
		panels:   panels,
		commands: reg,
		log:      log.With("component", "app"),
	}
}

func (a *App) Panels() *panel.Manager {
	return a.panels
}

func (a *App) Commands() *commands.Registry {
	return a.commands
}

// Serve handles frames until the plugin closes the connection, then shuts
// every panel down.
func (a *App) Serve(ctx context.Context) error {
	a.log.Info("serving", "commands", len(a.commands.Names()))

	err := a.conn.Serve(ctx, a.handle)

	a.wg.Wait()
	a.panels.Close()
	a.log.Info("connection closed")
	return err
}

func (a *App) handle(ctx context.Context, f rpc.Frame) {
	switch f.Kind {
	case rpc.KindMessage:
		a.panels.Dispatch(ctx, panelName(f.Panel), f.Message)
	case rpc.KindCommand:
		a.async(func() { a.runCommand(ctx, f.Command) })
	case rpc.KindPanel:
		a.panelEvent(ctx, panelName(f.Panel), f.Event)
	default:
		a.log.Debug("ignoring frame", "kind", f.Kind)
	}
}

func (a *App) panelEvent(ctx context.Context, name, event string) {
	switch event {
	case rpc.EventResolve:
		a.panels.Resolve(name)
	case rpc.EventRevive:
		a.panels.Revive(name)
	case rpc.EventDispose:
		// Closing a bridge waits for its handlers, which may be waiting on
		// replies this loop has yet to read.
		a.async(func() { a.panels.Disposed(name) })
	default:
		a.log.Warn("unknown panel event", "panel", name, "event", event)
	}
}

func (a *App) runCommand(ctx context.Context, name string) {
	a.log.Debug("running command", "command", name)

	err := a.commands.Run(ctx, name)
	if err == nil {
		return
	}

	var unknown *commands.UnknownCommandError
	var ambiguous *commands.AmbiguousCommandError
	switch {
	case errors.As(err, &unknown), errors.As(err, &ambiguous):
		a.log.Warn("command not run", "command", name, "error", err)
	case errors.Is(err, rpc.ErrClosed), errors.Is(err, context.Canceled):
		a.log.Debug("command interrupted", "command", name, "error", err)
	default:
		a.log.Error("command failed", "command", name, "error", err)
		a.host.ShowError(ctx, msgCommandFailed)
	}
}

func (a *App) async(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

func panelName(name string) string {
	if name == "" {
		return panel.Sidebar
	}
	return name
}
