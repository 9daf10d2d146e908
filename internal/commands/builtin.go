package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tormodhaugland/ani/internal/host"
	"github.com/tormodhaugland/ani/internal/message"
	"github.com/tormodhaugland/ani/internal/panel"
	"github.com/tormodhaugland/ani/internal/todo"
)

// Names of the built-in commands.
const (
	OpenPanel   = "ani-todo.openPanel"
	Refresh     = "ani-todo.refresh"
	AddTodo     = "ani-todo.addTodo"
	ScanTodos   = "ani-todo.scanTodos"
	AskQuestion = "ani-todo.askQuestion"
)

const (
	msgNoSelection   = "No text selected."
	msgNoEditor      = "No active editor."
	msgNoAnnotations = "No to-do annotations found."
	msgScanFailed    = "Failed to scan for to-do annotations."
	msgQuestion      = "How was your day?"
	msgSorry         = "Sorry to hear that."

	answerGood = "Good"
	answerBad  = "Bad"
)

// Deps are the collaborators the built-in commands act through.
type Deps struct {
	Host   host.Host
	Panels *panel.Manager
	Log    *slog.Logger
}

// RegisterBuiltins adds the extension's commands to r.
func RegisterBuiltins(r *Registry, d Deps) {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	b := &builtins{Deps: d, log: d.Log.With("component", "commands")}

	r.Register(Command{Name: OpenPanel, Title: "Open panel", Run: b.openPanel})
	r.Register(Command{Name: Refresh, Title: "Refresh panel", Run: b.refresh})
	r.Register(Command{Name: AddTodo, Title: "Add to-do from selection", Run: b.addTodo})
	r.Register(Command{Name: ScanTodos, Title: "Scan file for to-dos", Run: b.scanTodos})
	r.Register(Command{Name: AskQuestion, Title: "Ask question", Run: b.askQuestion})
}

type builtins struct {
	Deps
	log *slog.Logger
}

func (b *builtins) openPanel(ctx context.Context) error {
	_, err := b.Panels.CreateOrShow(ctx, panel.Main)
	return err
}

func (b *builtins) refresh(ctx context.Context) error {
	_, err := b.Panels.Refresh(ctx, panel.Main)
	return err
}

func (b *builtins) addTodo(ctx context.Context) error {
	text, err := b.Host.Selection(ctx)
	if err != nil && !errors.Is(err, host.ErrNoActiveEditor) {
		return err
	}
	if strings.TrimSpace(text) == "" {
		b.Host.ShowError(ctx, msgNoSelection)
		return nil
	}
	return b.postTodos(ctx, []string{text})
}

func (b *builtins) scanTodos(ctx context.Context) error {
	doc, err := b.Host.ActiveDocument(ctx)
	if errors.Is(err, host.ErrNoActiveEditor) {
		b.Host.ShowError(ctx, msgNoEditor)
		return nil
	}
	if err != nil {
		return err
	}

	annotations, err := todo.Scan([]byte(doc.Text), doc.Path)
	if err != nil {
		b.log.Error("scan failed", "path", doc.Path, "error", err)
		b.Host.ShowError(ctx, msgScanFailed)
		return nil
	}
	if len(annotations) == 0 {
		b.Host.ShowInfo(ctx, msgNoAnnotations)
		return nil
	}

	values := make([]string, len(annotations))
	for i, a := range annotations {
		values[i] = a.String()
	}
	b.log.Debug("annotations found", "path", doc.Path, "count", len(values))
	return b.postTodos(ctx, values)
}

// postTodos delivers one new-todo message per value to the sidebar, revealing
// it first.
func (b *builtins) postTodos(ctx context.Context, values []string) error {
	if _, err := b.Panels.CreateOrShow(ctx, panel.Sidebar); err != nil {
		return err
	}
	for _, v := range values {
		if err := b.Panels.Post(ctx, panel.Sidebar, message.NewTodo{Value: v}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builtins) askQuestion(ctx context.Context) error {
	answer, err := b.Host.Confirm(ctx, msgQuestion, answerGood, answerBad)
	if err != nil {
		return err
	}
	if answer == answerBad {
		b.Host.ShowInfo(ctx, msgSorry)
		return nil
	}
	b.log.Debug("question answered", "answer", answer)
	return nil
}
