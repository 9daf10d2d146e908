package pyenv

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"
)

const waitDelay = 2 * time.Second

// Runner executes an external command and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*RunResult, error)
}

// RunResult captures one finished command.
type RunResult struct {
	Command  string
	Output   string
	ExitCode int
	Duration time.Duration
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Timeout bounds each command. Zero means no limit beyond ctx.
	Timeout time.Duration
	// Dir is the working directory. Empty inherits the process's.
	Dir string
	// Output, when set, receives a live copy of stdout and stderr.
	Output io.Writer
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*RunResult, error) {
	result := &RunResult{Command: commandLine(name, args)}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	// Children that inherit the output pipes must not hold Run open after a kill.
	cmd.WaitDelay = waitDelay

	var outputBuf bytes.Buffer
	if r.Output != nil {
		cmd.Stdout = io.MultiWriter(&outputBuf, r.Output)
		cmd.Stderr = io.MultiWriter(&outputBuf, r.Output)
	} else {
		cmd.Stdout = &outputBuf
		cmd.Stderr = &outputBuf
	}

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)
	result.Output = outputBuf.String()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result, &TimeoutError{Command: result.Command, Timeout: r.Timeout}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, &ProcessError{
			Command:  result.Command,
			ExitCode: result.ExitCode,
			Output:   result.Output,
			Err:      err,
		}
	}

	return result, nil
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
