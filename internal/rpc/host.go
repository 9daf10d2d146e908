package rpc

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tormodhaugland/ani/internal/host"
	"github.com/tormodhaugland/ani/internal/message"
)

// Host methods understood by the plugin.
const (
	MethodShowInfo          = "showInformationMessage"
	MethodShowError         = "showErrorMessage"
	MethodConfirm           = "confirm"
	MethodInsertText        = "insertText"
	MethodOpenFile          = "openFile"
	MethodGetSelection      = "getSelection"
	MethodGetActiveDocument = "getActiveDocument"
	MethodGetWorkspaceRoot  = "getWorkspaceRoot"
	MethodProgressStart     = "progressStart"
	MethodProgressReport    = "progressReport"
	MethodProgressEnd       = "progressEnd"
	MethodShowPanel         = "showPanel"
	MethodDisposePanel      = "disposePanel"
)

// Host implements host.Host by asking the editor plugin over conn.
type Host struct {
	conn *Conn
}

var _ host.Host = (*Host)(nil)

func NewHost(conn *Conn) *Host {
	return &Host{conn: conn}
}

type notifyParams struct {
	Message string `json:"message"`
}

type confirmParams struct {
	Message string   `json:"message"`
	Choices []string `json:"choices"`
}

type textParams struct {
	Text string `json:"text"`
}

type pathParams struct {
	Path string `json:"path"`
}

type progressParams struct {
	ProgressID string `json:"progressId"`
	Title      string `json:"title,omitempty"`
	Percent    int    `json:"percent,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (h *Host) ShowInfo(_ context.Context, msg string) {
	if err := h.conn.Notify(MethodShowInfo, notifyParams{Message: msg}); err != nil {
		h.conn.log.Error("show info failed", "error", err)
	}
}

func (h *Host) ShowError(_ context.Context, msg string) {
	if err := h.conn.Notify(MethodShowError, notifyParams{Message: msg}); err != nil {
		h.conn.log.Error("show error failed", "error", err)
	}
}

func (h *Host) Confirm(ctx context.Context, msg string, choices ...string) (string, error) {
	var picked string
	err := h.conn.Call(ctx, MethodConfirm, confirmParams{Message: msg, Choices: choices}, &picked)
	return picked, err
}

func (h *Host) InsertAtCursor(ctx context.Context, text string) error {
	return mapRemote(h.conn.Call(ctx, MethodInsertText, textParams{Text: text}, nil))
}

func (h *Host) OpenFile(ctx context.Context, path string) error {
	return mapRemote(h.conn.Call(ctx, MethodOpenFile, pathParams{Path: path}, nil))
}

func (h *Host) Selection(ctx context.Context) (string, error) {
	var text string
	err := h.conn.Call(ctx, MethodGetSelection, nil, &text)
	return text, mapRemote(err)
}

func (h *Host) ActiveDocument(ctx context.Context) (host.Document, error) {
	var doc host.Document
	err := h.conn.Call(ctx, MethodGetActiveDocument, nil, &doc)
	return doc, mapRemote(err)
}

func (h *Host) WorkspaceRoot(ctx context.Context) (string, error) {
	var root string
	if err := h.conn.Call(ctx, MethodGetWorkspaceRoot, nil, &root); err != nil {
		return "", mapRemote(err)
	}
	if root == "" {
		return "", host.ErrNoWorkspace
	}
	return root, nil
}

func (h *Host) StartProgress(_ context.Context, title string) (host.ProgressIndicator, error) {
	ind := &indicator{conn: h.conn, id: uuid.NewString()}
	if err := h.conn.Notify(MethodProgressStart, progressParams{ProgressID: ind.id, Title: title}); err != nil {
		return nil, err
	}
	return ind, nil
}

type indicator struct {
	conn *Conn
	id   string
}

func (i *indicator) Report(percent int, msg string) {
	err := i.conn.Notify(MethodProgressReport, progressParams{ProgressID: i.id, Percent: percent, Message: msg})
	if err != nil {
		i.conn.log.Debug("progress report failed", "error", err)
	}
}

func (i *indicator) Close() {
	if err := i.conn.Notify(MethodProgressEnd, progressParams{ProgressID: i.id}); err != nil {
		i.conn.log.Debug("progress end failed", "error", err)
	}
}

// mapRemote turns the plugin's well-known reply codes into host sentinels.
func mapRemote(err error) error {
	var re *RemoteError
	if !errors.As(err, &re) {
		return err
	}
	switch re.Code {
	case CodeNoActiveEditor:
		return host.ErrNoActiveEditor
	case CodeNoWorkspace:
		return host.ErrNoWorkspace
	}
	return err
}

// Poster returns a host.Poster that delivers messages to the named panel.
func (c *Conn) Poster(panel string) host.Poster {
	return host.PosterFunc(func(_ context.Context, msg message.Message) error {
		raw, err := message.Encode(msg)
		if err != nil {
			return err
		}
		return c.Send(Frame{Kind: KindPost, Panel: panel, Message: raw})
	})
}

type panelParams struct {
	Panel string `json:"panel"`
}

// PanelView asks the plugin to reveal or close webview panels.
type PanelView struct {
	conn *Conn
}

func (c *Conn) PanelView() *PanelView {
	return &PanelView{conn: c}
}

func (v *PanelView) Show(_ context.Context, name string) error {
	return v.conn.Notify(MethodShowPanel, panelParams{Panel: name})
}

func (v *PanelView) Dispose(_ context.Context, name string) error {
	return v.conn.Notify(MethodDisposePanel, panelParams{Panel: name})
}
