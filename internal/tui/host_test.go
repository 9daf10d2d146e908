package tui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/ani/internal/host"
	"github.com/tormodhaugland/ani/internal/message"
)

func TestHost_InsertAtCursor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	h := &Host{Out: &bytes.Buffer{}, File: path, Cursor: 5}
	ctx := context.Background()

	require.NoError(t, h.InsertAtCursor(ctx, ","))
	require.NoError(t, h.InsertAtCursor(ctx, " there"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello, there world", string(data))
	assert.Equal(t, 12, h.Cursor)
}

func TestHost_InsertAtEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")

	h := &Host{Out: &bytes.Buffer{}, File: path, Cursor: -1}
	require.NoError(t, h.InsertAtCursor(context.Background(), "first"))
	require.NoError(t, h.InsertAtCursor(context.Background(), " second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first second", string(data))
}

func TestHost_NoEditorNoWorkspace(t *testing.T) {
	h := &Host{Out: &bytes.Buffer{}}
	ctx := context.Background()

	assert.ErrorIs(t, h.InsertAtCursor(ctx, "x"), host.ErrNoActiveEditor)
	_, err := h.ActiveDocument(ctx)
	assert.ErrorIs(t, err, host.ErrNoActiveEditor)
	_, err = h.WorkspaceRoot(ctx)
	assert.ErrorIs(t, err, host.ErrNoWorkspace)
}

func TestHost_ActiveDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))

	h := &Host{File: path}
	doc, err := h.ActiveDocument(context.Background())
	require.NoError(t, err)
	assert.Equal(t, host.Document{Path: path, Text: "package main\n"}, doc)
}

func TestHost_NotificationsAndProgress(t *testing.T) {
	var out bytes.Buffer
	h := &Host{Out: &out}
	ctx := context.Background()

	h.ShowInfo(ctx, "File created: a.txt")
	h.ShowError(ctx, "No libraries specified.")
	require.NoError(t, h.OpenFile(ctx, "/tmp/a.txt"))

	ind, err := h.StartProgress(ctx, "Installing Python libraries")
	require.NoError(t, err)
	ind.Report(50, "requests")
	ind.Close()

	text := out.String()
	assert.Contains(t, text, "File created: a.txt")
	assert.Contains(t, text, "No libraries specified.")
	assert.Contains(t, text, "opened /tmp/a.txt")
	assert.Contains(t, text, "Installing Python libraries")
	assert.Contains(t, text, "50%")
	assert.Contains(t, text, "requests")
	assert.Contains(t, text, "Installing Python libraries done")
}

func TestHost_ConfirmUsesPrompt(t *testing.T) {
	var gotChoices []string
	h := &Host{Prompt: func(_ context.Context, _ string, choices []string) (string, error) {
		gotChoices = choices
		return "Yes", nil
	}}

	answer, err := h.Confirm(context.Background(), "Install?", "Yes", "No")
	require.NoError(t, err)
	assert.Equal(t, "Yes", answer)
	assert.Equal(t, []string{"Yes", "No"}, gotChoices)
}

func TestJSONPoster(t *testing.T) {
	var out bytes.Buffer
	p := &JSONPoster{W: &out}

	require.NoError(t, p.Post(context.Background(), message.NewTodo{Value: "a"}))
	require.NoError(t, p.Post(context.Background(), message.NewTodo{Value: "b"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"type":"new-todo","value":"a"}`, lines[0])
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-5))
	assert.Equal(t, 42, clamp(42))
	assert.Equal(t, 100, clamp(120))
}

func TestPanelView(t *testing.T) {
	var out bytes.Buffer
	v := PanelView{Host: &Host{Out: &out}}

	require.NoError(t, v.Show(context.Background(), "main"))
	require.NoError(t, v.Dispose(context.Background(), "main"))
	assert.Contains(t, out.String(), "panel main shown")
	assert.Contains(t, out.String(), "panel main closed")
}
