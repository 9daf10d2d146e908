package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/ani/internal/config"
	"github.com/tormodhaugland/ani/internal/tui"
)

// terminalFlags describe the editor state the terminal host pretends to have.
type terminalFlags struct {
	root      string
	file      string
	cursor    int
	selection string
	answer    string
}

func (f *terminalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "workspace root (default: workspace_root from config, else current directory)")
	cmd.Flags().StringVar(&f.file, "file", "", "active document")
	cmd.Flags().IntVar(&f.cursor, "cursor", -1, "cursor byte offset in --file (-1: end of file)")
	cmd.Flags().StringVar(&f.selection, "selection", "", "selected text")
	cmd.Flags().StringVar(&f.answer, "answer", "", "answer every prompt with this choice instead of asking")
}

func (f *terminalFlags) host(cfg *config.Config) *tui.Host {
	tui.UseRenderer(os.Stderr)

	root := f.root
	if root == "" {
		root = cfg.WorkspaceRoot
	}
	if root == "" {
		root, _ = os.Getwd()
	}

	h := &tui.Host{
		In:            os.Stdin,
		Out:           os.Stderr,
		Root:          root,
		Editor:        cfg.Editor,
		File:          f.file,
		Cursor:        f.cursor,
		SelectionText: f.selection,
	}
	if f.answer != "" {
		answer := f.answer
		h.Prompt = func(context.Context, string, []string) (string, error) {
			return answer, nil
		}
	}
	return h
}
