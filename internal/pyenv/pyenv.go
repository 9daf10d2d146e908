// Package pyenv probes a Python interpreter for libraries and installs the
// missing ones with pip.
package pyenv

import (
	"context"
	"log/slog"
	"strings"
)

// probeScript imports the module named by argv[1]. Passing the name as an
// argument keeps it out of the code string.
const probeScript = "import importlib, sys; importlib.import_module(sys.argv[1])"

// CheckResult partitions the checked libraries. Both lists keep input order.
type CheckResult struct {
	Installed    []string
	NotInstalled []string
}

// AllInstalled reports whether nothing is missing.
func (r *CheckResult) AllInstalled() bool {
	return len(r.NotInstalled) == 0
}

// Normalize trims names, drops blanks and removes duplicates, keeping the
// first occurrence.
func Normalize(libs []string) []string {
	seen := make(map[string]bool, len(libs))
	out := make([]string, 0, len(libs))
	for _, lib := range libs {
		lib = strings.TrimSpace(lib)
		if lib == "" || seen[lib] {
			continue
		}
		seen[lib] = true
		out = append(out, lib)
	}
	return out
}

// Checker probes for installed libraries.
type Checker struct {
	Runner      Runner
	Interpreter string
	// ImportNames maps a distribution name to its import name when they
	// differ, e.g. "scikit-learn" -> "sklearn".
	ImportNames map[string]string
	Log         *slog.Logger
}

// ModuleName returns the import name used to probe lib.
func (c *Checker) ModuleName(lib string) string {
	if name, ok := c.ImportNames[lib]; ok && name != "" {
		return name
	}
	return strings.ReplaceAll(lib, "-", "_")
}

// Check probes each library in order, one at a time. Any probe failure,
// including a context cancellation, counts as not installed.
func (c *Checker) Check(ctx context.Context, libs []string) *CheckResult {
	result := &CheckResult{
		Installed:    []string{},
		NotInstalled: []string{},
	}

	for _, lib := range Normalize(libs) {
		_, err := c.Runner.Run(ctx, c.Interpreter, "-c", probeScript, c.ModuleName(lib))
		if err != nil {
			c.logger().Debug("library not importable", "lib", lib, "error", err)
			result.NotInstalled = append(result.NotInstalled, lib)
			continue
		}
		result.Installed = append(result.Installed, lib)
	}

	return result
}

func (c *Checker) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}

// Installer installs libraries through the interpreter's package manager.
type Installer struct {
	Runner      Runner
	Interpreter string
	// Args precede the library name, e.g. ["-m", "pip", "install"].
	Args []string
}

// Install installs a single library.
func (i *Installer) Install(ctx context.Context, lib string) error {
	args := append(append([]string{}, i.Args...), lib)
	if _, err := i.Runner.Run(ctx, i.Interpreter, args...); err != nil {
		return &InstallError{Lib: lib, Err: err}
	}
	return nil
}
