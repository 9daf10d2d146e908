// Package hosttest provides an in-memory host.Host for tests.
package hosttest

import (
	"context"
	"sync"

	"github.com/tormodhaugland/ani/internal/host"
	"github.com/tormodhaugland/ani/internal/message"
)

// Fake records every host interaction. Zero value is usable; set the exported
// fields before handing it to the code under test.
type Fake struct {
	// Root is returned by WorkspaceRoot. Empty means no workspace.
	Root string
	// HasEditor controls whether InsertAtCursor succeeds.
	HasEditor bool
	// Answer is returned by Confirm.
	Answer string
	// SelectionText is returned by Selection.
	SelectionText string
	// Document is returned by ActiveDocument when HasEditor is set.
	Document host.Document

	mu         sync.Mutex
	infos      []string
	errors     []string
	prompts    []string
	inserts    []string
	opened     []string
	posted     []message.Message
	indicators []*Indicator
}

var _ host.Host = (*Fake)(nil)

func (f *Fake) ShowInfo(_ context.Context, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, msg)
}

func (f *Fake) ShowError(_ context.Context, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, msg)
}

func (f *Fake) Confirm(_ context.Context, msg string, _ ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, msg)
	return f.Answer, nil
}

func (f *Fake) InsertAtCursor(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.HasEditor {
		return host.ErrNoActiveEditor
	}
	f.inserts = append(f.inserts, text)
	return nil
}

func (f *Fake) OpenFile(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, path)
	return nil
}

func (f *Fake) Selection(_ context.Context) (string, error) {
	if !f.HasEditor {
		return "", host.ErrNoActiveEditor
	}
	return f.SelectionText, nil
}

func (f *Fake) ActiveDocument(_ context.Context) (host.Document, error) {
	if !f.HasEditor {
		return host.Document{}, host.ErrNoActiveEditor
	}
	return f.Document, nil
}

func (f *Fake) WorkspaceRoot(_ context.Context) (string, error) {
	if f.Root == "" {
		return "", host.ErrNoWorkspace
	}
	return f.Root, nil
}

func (f *Fake) StartProgress(_ context.Context, title string) (host.ProgressIndicator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ind := &Indicator{Title: title}
	f.indicators = append(f.indicators, ind)
	return ind, nil
}

// Post records messages sent to the webview, so Fake doubles as a host.Poster.
func (f *Fake) Post(_ context.Context, msg message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, msg)
	return nil
}

func (f *Fake) Infos() []string   { return f.snapshot(&f.infos) }
func (f *Fake) Errors() []string  { return f.snapshot(&f.errors) }
func (f *Fake) Prompts() []string { return f.snapshot(&f.prompts) }
func (f *Fake) Inserts() []string { return f.snapshot(&f.inserts) }
func (f *Fake) Opened() []string  { return f.snapshot(&f.opened) }

func (f *Fake) Posted() []message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message.Message(nil), f.posted...)
}

func (f *Fake) Indicators() []*Indicator {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Indicator(nil), f.indicators...)
}

func (f *Fake) snapshot(s *[]string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), (*s)...)
}

// Indicator records the percentages reported to one progress indicator.
type Indicator struct {
	Title string

	mu       sync.Mutex
	percents []int
	closed   bool
}

func (i *Indicator) Report(percent int, _ string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.percents = append(i.percents, percent)
}

func (i *Indicator) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
}

func (i *Indicator) Percents() []int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]int(nil), i.percents...)
}

func (i *Indicator) Closed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}
