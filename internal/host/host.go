// Package host describes the editor-side capabilities the bridge relies on.
// The editor plugin (over rpc) and the terminal (tui) both implement Host.
package host

import (
	"context"
	"errors"

	"github.com/tormodhaugland/ani/internal/message"
)

var (
	// ErrNoActiveEditor is returned when an edit targets the focused document
	// but none is focused.
	ErrNoActiveEditor = errors.New("no active editor")

	// ErrNoWorkspace is returned when no workspace folder is open.
	ErrNoWorkspace = errors.New("no workspace folder open")
)

// Notifier shows notifications and prompts.
type Notifier interface {
	ShowInfo(ctx context.Context, msg string)
	ShowError(ctx context.Context, msg string)

	// Confirm shows msg with the given choices and returns the one picked.
	// An empty string means the prompt was dismissed.
	Confirm(ctx context.Context, msg string, choices ...string) (string, error)
}

// Editor exposes the focused document and file opening.
type Editor interface {
	InsertAtCursor(ctx context.Context, text string) error
	OpenFile(ctx context.Context, path string) error
	Selection(ctx context.Context) (string, error)
	ActiveDocument(ctx context.Context) (Document, error)
}

// Document is a snapshot of an open text document.
type Document struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// Workspace resolves the single workspace root.
type Workspace interface {
	WorkspaceRoot(ctx context.Context) (string, error)
}

// Progress opens a visual progress indicator.
type Progress interface {
	StartProgress(ctx context.Context, title string) (ProgressIndicator, error)
}

// ProgressIndicator is one running indicator. Report takes an absolute
// percentage in [0,100].
type ProgressIndicator interface {
	Report(percent int, msg string)
	Close()
}

// Host bundles everything a bridge needs from the editor.
type Host interface {
	Notifier
	Editor
	Workspace
	Progress
}

// Poster delivers messages to a webview.
type Poster interface {
	Post(ctx context.Context, msg message.Message) error
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(ctx context.Context, msg message.Message) error

func (f PosterFunc) Post(ctx context.Context, msg message.Message) error {
	return f(ctx, msg)
}
