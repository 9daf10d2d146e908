package pyenv

import (
	"fmt"
	"time"
)

// ProcessError indicates an external command exited non-zero or could not
// be started.
type ProcessError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil && e.ExitCode == 0 {
		return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("command %q failed with exit code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("command %q failed", e.Command)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates an external command exceeded its time limit.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("command %q timed out after %s", e.Command, e.Timeout)
	}
	return fmt.Sprintf("command %q timed out", e.Command)
}

// InstallError records one library that failed to install.
type InstallError struct {
	Lib string
	Err error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installing %s: %v", e.Lib, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}
