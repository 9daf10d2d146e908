// Package rpc carries frames between ani and its editor plugin as
// newline-delimited JSON on stdio.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Frame kinds.
const (
	// Plugin to ani.
	KindMessage = "message"
	KindCommand = "command"
	KindPanel   = "panel"
	KindReply   = "reply"

	// ani to plugin.
	KindPost    = "post"
	KindRequest = "request"
)

// Panel events.
const (
	EventResolve = "resolve"
	EventRevive  = "revive"
	EventDispose = "dispose"
)

// Reply error codes the plugin uses for expected conditions.
const (
	CodeNoActiveEditor = "no_active_editor"
	CodeNoWorkspace    = "no_workspace"
)

// Frame is one line on the wire. Which fields are set depends on Kind.
type Frame struct {
	Kind    string          `json:"kind"`
	ID      string          `json:"id,omitempty"`
	Panel   string          `json:"panel,omitempty"`
	Event   string          `json:"event,omitempty"`
	Command string          `json:"command,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// RemoteError is a failed reply from the plugin.
type RemoteError struct {
	Method  string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s failed (%s): %s", e.Method, e.Code, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Method, e.Message)
}
