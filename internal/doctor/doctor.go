// Package doctor checks that the machine can serve the extension: the Python
// interpreter and its package manager, the workspace root and any libraries
// the user expects to be installed.
package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tormodhaugland/ani/internal/config"
	"github.com/tormodhaugland/ani/internal/pyenv"
)

type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type Report struct {
	Checks  []Check  `json:"checks"`
	Missing []string `json:"missing,omitempty"`
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

func (r *Report) add(name string, status Status, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Detail: detail})
}

// Doctor runs the environment checks.
type Doctor struct {
	Config *config.Config
	Runner pyenv.Runner
}

// Run performs every check. libs, when given, are probed like an
// installPythonLibs request would probe them.
func (d *Doctor) Run(ctx context.Context, libs []string) *Report {
	r := &Report{}
	cfg := d.Config

	interpOK := d.checkInterpreter(ctx, r)
	if interpOK {
		d.checkPackageManager(ctx, r)
	}
	checkWorkspace(r, cfg.WorkspaceRoot)

	libs = pyenv.Normalize(libs)
	if len(libs) == 0 {
		return r
	}
	if !interpOK {
		r.add("libraries", StatusFail, "skipped, no interpreter")
		r.Missing = libs
		return r
	}

	checker := &pyenv.Checker{
		Runner:      d.Runner,
		Interpreter: cfg.Python.Interpreter,
		ImportNames: cfg.Python.ImportNames,
	}
	res := checker.Check(ctx, libs)
	r.Missing = res.NotInstalled
	if res.AllInstalled() {
		r.add("libraries", StatusOK, fmt.Sprintf("%d installed", len(res.Installed)))
	} else {
		r.add("libraries", StatusFail, "missing: "+strings.Join(res.NotInstalled, ", "))
	}
	return r
}

// Fix installs the missing libraries of a report and returns the ones that
// failed.
func (d *Doctor) Fix(ctx context.Context, r *Report) (installed, failed []string) {
	inst := &pyenv.Installer{
		Runner:      d.Runner,
		Interpreter: d.Config.Python.Interpreter,
		Args:        d.Config.Python.InstallArgs,
	}
	for _, lib := range r.Missing {
		if err := inst.Install(ctx, lib); err != nil {
			failed = append(failed, lib)
			continue
		}
		installed = append(installed, lib)
	}
	return installed, failed
}

func (d *Doctor) checkInterpreter(ctx context.Context, r *Report) bool {
	interp := d.Config.Python.Interpreter
	res, err := d.Runner.Run(ctx, interp, "--version")
	if err != nil {
		r.add("interpreter", StatusFail, fmt.Sprintf("%s: %v", interp, err))
		return false
	}
	r.add("interpreter", StatusOK, strings.TrimSpace(res.Output))
	return true
}

// checkPackageManager probes "-m <module> --version" when the install
// command runs a module.
func (d *Doctor) checkPackageManager(ctx context.Context, r *Report) {
	args := d.Config.Python.InstallArgs
	if len(args) < 2 || args[0] != "-m" {
		r.add("package manager", StatusWarn, "custom install command, not probed")
		return
	}

	module := args[1]
	res, err := d.Runner.Run(ctx, d.Config.Python.Interpreter, "-m", module, "--version")
	if err != nil {
		r.add("package manager", StatusFail, fmt.Sprintf("%s: %v", module, err))
		return
	}
	r.add("package manager", StatusOK, strings.TrimSpace(res.Output))
}

func checkWorkspace(r *Report, root string) {
	if root == "" {
		r.add("workspace root", StatusWarn, "not set, the editor supplies it")
		return
	}
	info, err := os.Stat(root)
	if err != nil {
		r.add("workspace root", StatusFail, err.Error())
		return
	}
	if !info.IsDir() {
		r.add("workspace root", StatusFail, root+" is not a directory")
		return
	}
	r.add("workspace root", StatusOK, root)
}
