package commands

import (
	"fmt"
	"strings"
)

// UnknownCommandError is returned when no registered command matches a name.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Name)
}

// AmbiguousCommandError is returned when a partial name matches several
// commands equally well.
type AmbiguousCommandError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousCommandError) Error() string {
	return fmt.Sprintf("ambiguous command %q: could be %s", e.Name, strings.Join(e.Candidates, ", "))
}
