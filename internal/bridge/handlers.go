package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tormodhaugland/ani/internal/files"
	"github.com/tormodhaugland/ani/internal/host"
	"github.com/tormodhaugland/ani/internal/message"
	"github.com/tormodhaugland/ani/internal/pyenv"
)

// User-facing notification texts.
const (
	msgNoContent        = "No content to insert."
	msgNoActiveEditor   = "No active editor to insert content."
	msgInsertFailed     = "Failed to insert content."
	msgMissingPath      = "Missing file path or content."
	msgNoWorkspace      = "No workspace folder open."
	msgCreateFailed     = "Failed to create file."
	msgNoLibs           = "No libraries specified."
	msgAllInstalled     = "All libraries are already installed."
	msgInstallCancelled = "Installation cancelled."
	msgProgressFailed   = "Failed to start progress."

	installTitle = "Installing Python libraries"
	confirmYes   = "Yes"
	confirmNo    = "No"
)

func (b *Bridge) onInfo(ctx context.Context, m message.Info) {
	if message.Validate(m) != nil {
		return
	}
	b.host.ShowInfo(ctx, m.Value)
}

func (b *Bridge) onError(ctx context.Context, m message.Error) {
	if message.Validate(m) != nil {
		return
	}
	b.host.ShowError(ctx, m.Value)
}

func (b *Bridge) insertContent(ctx context.Context, m message.InsertContent) {
	if err := message.Validate(m); err != nil {
		b.host.ShowError(ctx, msgNoContent)
		return
	}

	if err := b.host.InsertAtCursor(ctx, m.Value); err != nil {
		if errors.Is(err, host.ErrNoActiveEditor) {
			b.host.ShowError(ctx, msgNoActiveEditor)
			return
		}
		b.log.Error("insert content failed", "error", err)
		b.host.ShowError(ctx, msgInsertFailed)
	}
}

func (b *Bridge) insertFile(ctx context.Context, m message.InsertFile) {
	if err := message.Validate(m); err != nil {
		b.host.ShowError(ctx, msgMissingPath)
		return
	}

	root, err := b.host.WorkspaceRoot(ctx)
	if err != nil || root == "" {
		if err != nil && !errors.Is(err, host.ErrNoWorkspace) {
			b.log.Warn("resolving workspace root failed", "error", err)
		}
		b.host.ShowError(ctx, msgNoWorkspace)
		return
	}

	target, err := files.Materialize(root, m.Path, m.Content)
	if err != nil {
		b.log.Error("creating file failed", "path", m.Path, "error", err)
		b.host.ShowError(ctx, msgCreateFailed)
		return
	}

	if err := b.host.OpenFile(ctx, target); err != nil {
		b.log.Error("opening created file failed", "path", target, "error", err)
		b.host.ShowError(ctx, msgCreateFailed)
		return
	}

	b.log.Info("file created", "path", target)
	b.host.ShowInfo(ctx, "File created: "+m.Path)
}

func (b *Bridge) installPythonLibs(ctx context.Context, m message.InstallPythonLibs) {
	libs := pyenv.Normalize(m.Libs)
	if len(libs) == 0 {
		b.host.ShowError(ctx, msgNoLibs)
		return
	}

	result := b.checker.Check(ctx, libs)
	b.log.Info("python libraries checked",
		"installed", result.Installed,
		"missing", result.NotInstalled,
	)
	if result.AllInstalled() {
		b.host.ShowInfo(ctx, msgAllInstalled)
		return
	}

	missing := result.NotInstalled
	prompt := fmt.Sprintf("The following libraries are missing: %s. Install them now?", strings.Join(missing, ", "))
	answer, err := b.host.Confirm(ctx, prompt, confirmYes, confirmNo)
	if err != nil {
		b.log.Warn("confirmation prompt failed", "error", err)
	}
	if answer != confirmYes {
		b.host.ShowInfo(ctx, msgInstallCancelled)
		return
	}

	ind, err := b.host.StartProgress(ctx, installTitle)
	if err != nil {
		b.log.Warn("starting install progress failed", "error", err)
		ind = nopIndicator{}
	}
	defer ind.Close()

	total := len(missing)
	installed := 0
	for i, lib := range missing {
		ind.Report(i*100/total, "Installing "+lib)

		if err := b.installer.Install(ctx, lib); err != nil {
			b.log.Error("python library install failed", "lib", lib, "error", err)
			b.host.ShowError(ctx, fmt.Sprintf("Failed to install %s.", lib))
		} else {
			installed++
			b.log.Info("python library installed", "lib", lib)
		}

		ind.Report((i+1)*100/total, "Installed "+lib)
		b.pause(ctx)
	}

	b.host.ShowInfo(ctx, fmt.Sprintf("Installed %d of %d libraries.", installed, total))
}

// invalidPayload reports a known message whose payload did not decode.
func (b *Bridge) invalidPayload(ctx context.Context, de *message.DecodeError) {
	b.log.Warn("invalid message payload", "type", de.Type, "error", de.Err)

	switch de.Type {
	case message.TypeInsertContent:
		b.host.ShowError(ctx, msgNoContent)
	case message.TypeInsertFile:
		b.host.ShowError(ctx, msgMissingPath)
	case message.TypeInstallPythonLibs:
		b.host.ShowError(ctx, msgNoLibs)
	}
}

func (b *Bridge) startProgress(ctx context.Context, m message.StartProgress) {
	if err := b.progress.Start(ctx, m.Title); err != nil {
		b.log.Error("start progress failed", "error", err)
		b.host.ShowError(ctx, msgProgressFailed)
	}
}

// pause waits the install pacing delay unless ctx ends first.
func (b *Bridge) pause(ctx context.Context) {
	if b.delay <= 0 {
		return
	}
	t := time.NewTimer(b.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

type nopIndicator struct{}

func (nopIndicator) Report(int, string) {}
func (nopIndicator) Close()             {}
