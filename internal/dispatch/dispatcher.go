package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/monotint/internal/recolor"
	"github.com/jmylchreest/monotint/internal/scene"
)

const (
	defaultPreviewCount = 5
	maxPreviewCount     = 256
	maxLineBytes        = 1024 * 1024
)

// Resolver turns node ids into nodes.
type Resolver func(ids []string) ([]scene.Node, error)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithResolver enables the ids field of recolour messages.
func WithResolver(r Resolver) Option {
	return func(d *Dispatcher) {
		d.resolve = r
	}
}

// WithAfterWrite registers a hook run after every recolour that changed
// at least one node, typically to persist the document.
func WithAfterWrite(fn func() error) Option {
	return func(d *Dispatcher) {
		d.afterWrite = fn
	}
}

// Dispatcher routes messages to a Recolorer.
type Dispatcher struct {
	recolorer  *recolor.Recolorer
	selection  scene.SelectionProvider
	resolve    Resolver
	afterWrite func() error
	logger     hclog.Logger

	pending []Event
	closed  bool
}

// New creates a Dispatcher recolouring the nodes that sel returns.
func New(cfg recolor.Config, sel scene.SelectionProvider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		selection: sel,
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.recolorer = recolor.New(cfg,
		recolor.WithLogger(d.logger.Named("recolor")),
		recolor.WithNotifier(recolor.NotifierFunc(d.notify)),
	)
	return d
}

// Closed reports whether a cancel message has been handled.
func (d *Dispatcher) Closed() bool {
	return d.closed
}

func (d *Dispatcher) notify(msg string) {
	d.pending = append(d.pending, Event{Type: EventNotify, Message: msg})
}

// Handle processes one message and returns the events it produced, in order.
func (d *Dispatcher) Handle(msg Message) []Event {
	d.pending = nil
	if d.closed {
		return []Event{{Type: EventError, Message: "session is closed"}}
	}

	d.logger.Debug("handling message", "type", msg.Type)

	var reply Event
	switch msg.Type {
	case MsgRecolor:
		reply = d.recolor(recolor.Flat, msg.IDs)
	case MsgRecolorShaded:
		reply = d.recolor(recolor.Shaded, msg.IDs)
	case MsgPreview:
		reply = d.preview(msg.Count)
	case MsgResize:
		reply = Event{Type: EventAck, Message: fmt.Sprintf("resize to %d ignored", msg.Height)}
	case MsgCancel:
		d.closed = true
		reply = Event{Type: EventClosed}
	default:
		reply = Event{Type: EventError, Message: fmt.Sprintf("unknown message type: %q", msg.Type)}
	}

	events := append(d.pending, reply)
	d.pending = nil
	return events
}

func (d *Dispatcher) recolor(s recolor.Strategy, ids []string) Event {
	var roots []scene.Node
	if len(ids) > 0 {
		if d.resolve == nil {
			return Event{Type: EventError, Message: "selecting by id is not supported"}
		}
		nodes, err := d.resolve(ids)
		if err != nil {
			return Event{Type: EventError, Message: err.Error()}
		}
		roots = nodes
	} else if d.selection != nil {
		roots = d.selection.Selection()
	}

	res := d.recolorer.Run(s, roots)
	if res.Count > 0 && d.afterWrite != nil {
		if err := d.afterWrite(); err != nil {
			d.logger.Error("failed to persist document", "error", err)
			return Event{Type: EventError, Message: fmt.Sprintf("recoloured %d objects but failed to save: %v", res.Count, err)}
		}
	}
	return Event{Type: EventResult, Result: &res}
}

func (d *Dispatcher) preview(count int) Event {
	if count <= 0 {
		count = defaultPreviewCount
	}
	if count > maxPreviewCount {
		return Event{Type: EventError, Message: fmt.Sprintf("preview count too large: %d (maximum: %d)", count, maxPreviewCount)}
	}

	cfg := d.recolorer.Config()
	shades := cfg.Shades.Shades(cfg.Base, count)
	hex := make([]string, len(shades))
	for i, c := range shades {
		hex[i] = c.Hex()
	}
	return Event{Type: EventPalette, Colours: hex}
}

// Serve reads messages from r and writes events to w until the input ends,
// a cancel message is handled or ctx is done. Each message runs to
// completion before the next one is taken. Malformed lines produce an
// error event and do not stop the loop.
//
// Lines are read on a separate goroutine, so cancelling ctx returns at once
// even while r is blocked. That goroutine exits when r returns, so callers
// owning a pipe or socket should close it after Serve returns.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go scanLines(r, lines, readErr, stop)

	enc := json.NewEncoder(w)
	for !d.Closed() {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read message: %w", err)
				}
				return nil
			}
			line = l
		}

		var events []Event
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			events = []Event{{Type: EventError, Message: fmt.Sprintf("invalid message: %v", err)}}
		} else {
			events = d.Handle(msg)
		}

		for _, ev := range events {
			if err := enc.Encode(ev); err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}
		}
	}
	return nil
}

// scanLines sends each non-empty line of r on lines. When r is exhausted it
// reports the scan error on errc and closes lines.
func scanLines(r io.Reader, lines chan<- []byte, errc chan<- error, stop <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		select {
		case lines <- bytes.Clone(scanner.Bytes()):
		case <-stop:
			return
		}
	}
	errc <- scanner.Err()
}
