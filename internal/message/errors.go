package message

import "fmt"

// DecodeError indicates a message could not be parsed.
type DecodeError struct {
	Type Type
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("invalid %s message: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("invalid message: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a required payload field is missing or empty.
type ValidationError struct {
	Type   Type
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s - %s", e.Type, e.Field, e.Reason)
}
