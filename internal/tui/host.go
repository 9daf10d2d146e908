// Package tui is the terminal stand-in for the editor. It renders
// notifications, prompts and progress on a terminal and edits files on disk.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tormodhaugland/ani/internal/host"
	"github.com/tormodhaugland/ani/internal/message"
)

var (
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

// UseRenderer makes lipgloss detect colors from w. stdout carries protocol
// output, so the terminal host renders on stderr.
func UseRenderer(w io.Writer) {
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(w, termenv.WithColorCache(true)))
}

// PromptFunc answers a confirmation prompt.
type PromptFunc func(ctx context.Context, msg string, choices []string) (string, error)

// Host implements host.Host on a terminal.
type Host struct {
	In  io.Reader
	Out io.Writer

	// Root is the workspace root. Empty means no workspace.
	Root string
	// Editor is the command used by OpenFile. Empty prints the path instead.
	Editor string
	// File is the active document. Empty means no active editor.
	File string
	// Cursor is the byte offset InsertAtCursor writes at; negative means end
	// of file.
	Cursor int
	// SelectionText is what Selection returns.
	SelectionText string
	// Prompt answers Confirm. Nil runs the interactive chooser.
	Prompt PromptFunc

	mu sync.Mutex
}

var _ host.Host = (*Host)(nil)

func (h *Host) ShowInfo(_ context.Context, msg string) {
	h.println(infoStyle.Render("ℹ " + msg))
}

func (h *Host) ShowError(_ context.Context, msg string) {
	h.println(errorStyle.Render("✗ " + msg))
}

func (h *Host) Confirm(ctx context.Context, msg string, choices ...string) (string, error) {
	if h.Prompt != nil {
		return h.Prompt(ctx, msg, choices)
	}
	in := h.In
	if in == nil {
		in = os.Stdin
	}
	res, err := RunChoice(ctx, in, h.out(), msg, choices)
	if err != nil {
		return "", err
	}
	if res.Aborted {
		return "", nil
	}
	return res.Choice, nil
}

func (h *Host) InsertAtCursor(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.File == "" {
		return host.ErrNoActiveEditor
	}
	data, err := os.ReadFile(h.File)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", h.File, err)
	}

	at := h.Cursor
	if at < 0 || at > len(data) {
		at = len(data)
	}
	out := make([]byte, 0, len(data)+len(text))
	out = append(out, data[:at]...)
	out = append(out, text...)
	out = append(out, data[at:]...)

	if err := os.WriteFile(h.File, out, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", h.File, err)
	}
	if h.Cursor >= 0 {
		h.Cursor = at + len(text)
	}
	return nil
}

func (h *Host) OpenFile(_ context.Context, path string) error {
	if h.Editor != "" {
		editorCmd := exec.Command(h.Editor, path)
		editorCmd.Stdout = os.Stderr
		editorCmd.Stderr = os.Stderr
		return editorCmd.Start()
	}
	h.println(mutedStyle.Render("opened " + path))
	return nil
}

func (h *Host) Selection(_ context.Context) (string, error) {
	return h.SelectionText, nil
}

func (h *Host) ActiveDocument(_ context.Context) (host.Document, error) {
	if h.File == "" {
		return host.Document{}, host.ErrNoActiveEditor
	}
	data, err := os.ReadFile(h.File)
	if err != nil {
		return host.Document{}, fmt.Errorf("reading %s: %w", h.File, err)
	}
	return host.Document{Path: h.File, Text: string(data)}, nil
}

func (h *Host) WorkspaceRoot(_ context.Context) (string, error) {
	if h.Root == "" {
		return "", host.ErrNoWorkspace
	}
	return h.Root, nil
}

func (h *Host) StartProgress(_ context.Context, title string) (host.ProgressIndicator, error) {
	return newIndicator(h, title), nil
}

func (h *Host) out() io.Writer {
	if h.Out == nil {
		return os.Stderr
	}
	return h.Out
}

func (h *Host) println(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintln(h.out(), s)
}

// JSONPoster writes each webview message as one JSON line.
type JSONPoster struct {
	W io.Writer

	mu sync.Mutex
}

func (p *JSONPoster) Post(_ context.Context, msg message.Message) error {
	raw, err := message.Encode(msg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = fmt.Fprintf(p.W, "%s\n", raw)
	return err
}

var _ host.Poster = (*JSONPoster)(nil)

// PrintJSON writes v indented, for --json output.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PanelView reports panel changes on the terminal.
type PanelView struct {
	Host *Host
}

func (v PanelView) Show(_ context.Context, name string) error {
	v.Host.println(mutedStyle.Render("panel " + name + " shown"))
	return nil
}

func (v PanelView) Dispose(_ context.Context, name string) error {
	v.Host.println(mutedStyle.Render("panel " + name + " closed"))
	return nil
}
