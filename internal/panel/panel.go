// Package panel tracks the webview panels of one editor window. Each panel
// owns exactly one bridge.
package panel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tormodhaugland/ani/internal/bridge"
	"github.com/tormodhaugland/ani/internal/message"
)

// Well-known panel names.
const (
	// Sidebar is the activity-bar view.
	Sidebar = "sidebar"
	// Main is the editor-area panel opened by the open panel command.
	Main = "main"
)

// ErrNotFound is returned when posting to a panel that does not exist.
var ErrNotFound = errors.New("panel not found")

// Factory builds the bridge for a new panel.
type Factory func(name string) *bridge.Bridge

// View shows and disposes panels on the editor side.
type View interface {
	Show(ctx context.Context, name string) error
	Dispose(ctx context.Context, name string) error
}

type Panel struct {
	ID      string
	Name    string
	Bridge  *bridge.Bridge
	Created time.Time
}

type Manager struct {
	factory Factory
	view    View
	log     *slog.Logger

	mu     sync.Mutex
	panels map[string]*Panel
}

// NewManager returns a manager. view may be nil when the editor shows panels
// on its own.
func NewManager(factory Factory, view View, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		factory: factory,
		view:    view,
		log:     log.With("component", "panel"),
		panels:  make(map[string]*Panel),
	}
}

// Resolve returns the panel named name, creating it on first use.
func (m *Manager) Resolve(name string) *Panel {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.panels[name]; ok {
		return p
	}
	p := &Panel{
		ID:      uuid.NewString(),
		Name:    name,
		Bridge:  m.factory(name),
		Created: time.Now(),
	}
	m.panels[name] = p
	m.log.Debug("panel created", "panel", name, "id", p.ID)
	return p
}

// CreateOrShow resolves the panel and asks the editor to reveal it.
func (m *Manager) CreateOrShow(ctx context.Context, name string) (*Panel, error) {
	p := m.Resolve(name)
	if m.view != nil {
		if err := m.view.Show(ctx, name); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Revive re-attaches a view the editor recreated. The existing bridge is
// kept; a panel unknown to the manager is created.
func (m *Manager) Revive(name string) *Panel {
	m.log.Debug("panel revived", "panel", name)
	return m.Resolve(name)
}

// Get returns the panel named name without creating it.
func (m *Manager) Get(name string) (*Panel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[name]
	return p, ok
}

// Disposed forgets a panel the editor has closed and shuts its bridge down.
func (m *Manager) Disposed(name string) {
	p := m.remove(name)
	if p == nil {
		return
	}
	p.Bridge.Close()
	m.log.Debug("panel disposed", "panel", name, "id", p.ID)
}

// Kill closes the panel on both sides.
func (m *Manager) Kill(ctx context.Context, name string) error {
	p := m.remove(name)
	if p == nil {
		return nil
	}
	p.Bridge.Close()
	m.log.Debug("panel killed", "panel", name, "id", p.ID)

	if m.view != nil {
		return m.view.Dispose(ctx, name)
	}
	return nil
}

// Refresh kills the panel and opens a fresh one with a new bridge.
func (m *Manager) Refresh(ctx context.Context, name string) (*Panel, error) {
	if err := m.Kill(ctx, name); err != nil {
		m.log.Warn("disposing panel before refresh failed", "panel", name, "error", err)
	}
	return m.CreateOrShow(ctx, name)
}

// Dispatch hands a webview message to the panel's bridge, creating the panel
// if the editor resolved it before telling us.
func (m *Manager) Dispatch(ctx context.Context, name string, raw []byte) {
	m.Resolve(name).Bridge.Dispatch(ctx, raw)
}

// Post sends msg to an existing panel's webview.
func (m *Manager) Post(ctx context.Context, name string, msg message.Message) error {
	p, ok := m.Get(name)
	if !ok {
		return ErrNotFound
	}
	return p.Bridge.Post(ctx, msg)
}

// Close shuts every panel's bridge down.
func (m *Manager) Close() {
	m.mu.Lock()
	panels := make([]*Panel, 0, len(m.panels))
	for name, p := range m.panels {
		panels = append(panels, p)
		delete(m.panels, name)
	}
	m.mu.Unlock()

	for _, p := range panels {
		p.Bridge.Close()
	}
}

func (m *Manager) remove(name string) *Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[name]
	if !ok {
		return nil
	}
	delete(m.panels, name)
	return p
}
