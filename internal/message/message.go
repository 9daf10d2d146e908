// Package message defines the tagged messages exchanged between the webview
// UI and the host bridge.
package message

import (
	"encoding/json"
	"fmt"
)

// Type is the discriminator carried in every message's "type" field.
type Type string

const (
	TypeInfo              Type = "onInfo"
	TypeError             Type = "onError"
	TypeInsertContent     Type = "insertContent"
	TypeInsertFile        Type = "insertFile"
	TypeInstallPythonLibs Type = "installPythonLibs"
	TypeStartProgress     Type = "startProgress"
	TypeEndProgress       Type = "endProgress"

	// TypeNewTodo is only ever sent from the host to the UI.
	TypeNewTodo Type = "new-todo"
)

// Message is implemented by every concrete message payload.
type Message interface {
	MessageType() Type
}

// Info asks the host to show an informational notification.
type Info struct {
	Value string `json:"value" validate:"required"`
}

// Error asks the host to show an error notification.
type Error struct {
	Value string `json:"value" validate:"required"`
}

// InsertContent inserts Value at the cursor of the focused document.
type InsertContent struct {
	Value string `json:"value" validate:"required"`
}

// InsertFile writes Content to Path, relative to the workspace root.
type InsertFile struct {
	Path    string `json:"path" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// InstallPythonLibs checks and installs the named libraries.
type InstallPythonLibs struct {
	Libs []string `json:"libs" validate:"required,min=1"`
}

type StartProgress struct {
	Title string `json:"title,omitempty"`
}

type EndProgress struct{}

// NewTodo carries a to-do entry to the UI.
type NewTodo struct {
	Value string `json:"value" validate:"required"`
}

// Unknown holds a message whose type has no handler.
type Unknown struct {
	Type Type
	Raw  json.RawMessage
}

func (Info) MessageType() Type              { return TypeInfo }
func (Error) MessageType() Type             { return TypeError }
func (InsertContent) MessageType() Type     { return TypeInsertContent }
func (InsertFile) MessageType() Type        { return TypeInsertFile }
func (InstallPythonLibs) MessageType() Type { return TypeInstallPythonLibs }
func (StartProgress) MessageType() Type     { return TypeStartProgress }
func (EndProgress) MessageType() Type       { return TypeEndProgress }
func (NewTodo) MessageType() Type           { return TypeNewTodo }
func (u Unknown) MessageType() Type         { return u.Type }

type envelope struct {
	Type Type `json:"type"`
}

// Decode parses a raw message. Messages with an unrecognized type decode to
// Unknown without error; only malformed JSON or a payload that does not fit
// its type's shape is an error.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Err: err}
	}

	var msg Message
	switch env.Type {
	case TypeInfo:
		msg = &Info{}
	case TypeError:
		msg = &Error{}
	case TypeInsertContent:
		msg = &InsertContent{}
	case TypeInsertFile:
		msg = &InsertFile{}
	case TypeInstallPythonLibs:
		msg = &InstallPythonLibs{}
	case TypeStartProgress:
		msg = &StartProgress{}
	case TypeEndProgress:
		return EndProgress{}, nil
	case TypeNewTodo:
		msg = &NewTodo{}
	default:
		return Unknown{Type: env.Type, Raw: append(json.RawMessage(nil), data...)}, nil
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, &DecodeError{Type: env.Type, Err: err}
	}
	return deref(msg), nil
}

// deref returns the value form so callers can type-switch on plain structs.
func deref(m Message) Message {
	switch v := m.(type) {
	case *Info:
		return *v
	case *Error:
		return *v
	case *InsertContent:
		return *v
	case *InsertFile:
		return *v
	case *InstallPythonLibs:
		return *v
	case *StartProgress:
		return *v
	case *NewTodo:
		return *v
	}
	return m
}

// Encode serializes a message with its "type" field set.
func Encode(m Message) ([]byte, error) {
	if u, ok := m.(Unknown); ok {
		return u.Raw, nil
	}

	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", m.MessageType(), err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", m.MessageType(), err)
	}
	typ, err := json.Marshal(m.MessageType())
	if err != nil {
		return nil, err
	}
	fields["type"] = typ

	return json.Marshal(fields)
}
