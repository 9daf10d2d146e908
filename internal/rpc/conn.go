package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxLineBytes bounds a single inbound frame.
const MaxLineBytes = 1024 * 1024

// ErrClosed is returned by calls that were pending or started after the
// connection stopped serving.
var ErrClosed = errors.New("rpc: connection closed")

// Conn is one stdio connection to the editor plugin.
type Conn struct {
	r   *bufio.Reader
	w   io.Writer
	log *slog.Logger

	wmu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Frame
	closed  bool
}

func NewConn(r io.Reader, w io.Writer, log *slog.Logger) *Conn {
	if log == nil {
		log = slog.Default()
	}
	return &Conn{
		r:       bufio.NewReaderSize(r, 64*1024),
		w:       w,
		log:     log.With("component", "rpc"),
		pending: make(map[string]chan Frame),
	}
}

// Send writes one frame.
func (c *Conn) Send(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding %s frame: %w", f.Kind, err)
	}
	data = append(data, '\n')

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("writing %s frame: %w", f.Kind, err)
	}
	return nil
}

// Notify sends a request the plugin does not answer.
func (c *Conn) Notify(method string, params any) error {
	raw, err := marshalParams(params)
	if err != nil {
		return err
	}
	return c.Send(Frame{Kind: KindRequest, Method: method, Params: raw})
}

// Call sends a request and waits for the matching reply. When result is
// non-nil the reply's result is decoded into it.
func (c *Conn) Call(ctx context.Context, method string, params any, result any) error {
	raw, err := marshalParams(params)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	ch := make(chan Frame, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.Send(Frame{Kind: KindRequest, ID: id, Method: method, Params: raw}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case reply, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if reply.Error != "" || reply.Code != "" {
			return &RemoteError{Method: method, Code: reply.Code, Message: reply.Error}
		}
		if result != nil && len(reply.Result) > 0 {
			if err := json.Unmarshal(reply.Result, result); err != nil {
				return fmt.Errorf("decoding %s result: %w", method, err)
			}
		}
		return nil
	}
}

// Serve reads frames until the reader is exhausted. Replies complete pending
// calls; every other frame is passed to handle, one at a time and in order.
// Replies are read while handle runs, but handle must hand off any work that
// waits on Call, since the next frame is not read until it returns.
// When Serve returns, pending and future calls fail with ErrClosed.
func (c *Conn) Serve(ctx context.Context, handle func(context.Context, Frame)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan Frame)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)
		defer cancel()
		return c.readLoop(gctx, frames)
	})
	g.Go(func() error {
		for f := range frames {
			handle(gctx, f)
		}
		return nil
	})

	err := g.Wait()
	c.shutdown()
	return err
}

func (c *Conn) readLoop(ctx context.Context, frames chan<- Frame) error {
	for {
		line, tooLong, err := readLine(c.r, MaxLineBytes)
		if tooLong {
			c.log.Warn("dropping oversized frame", "limit", MaxLineBytes)
		} else if len(line) > 0 {
			c.route(ctx, line, frames)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading frames: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Conn) route(ctx context.Context, line []byte, frames chan<- Frame) {
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		c.log.Warn("dropping invalid frame", "error", err)
		return
	}

	if f.Kind == KindReply {
		c.deliver(f)
		return
	}

	select {
	case frames <- f:
	case <-ctx.Done():
	}
}

func (c *Conn) deliver(f Frame) {
	c.mu.Lock()
	ch, ok := c.pending[f.ID]
	if ok {
		delete(c.pending, f.ID)
	}
	c.mu.Unlock()

	if !ok {
		c.log.Debug("reply for unknown request", "id", f.ID)
		return
	}
	ch <- f
}

func (c *Conn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// readLine returns the next line without its trailing newline. Lines longer
// than max are consumed and reported as tooLong.
func readLine(r *bufio.Reader, max int) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > max+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if n := len(line); n > 0 && line[n-1] == '\n' {
			line = line[:n-1]
		}
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		return line, tooLong, err
	}
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}
	return raw, nil
}
