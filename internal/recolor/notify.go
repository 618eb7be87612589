package recolor

import (
	"errors"
	"fmt"
)

// Notifier receives user-facing status messages. Notify must not block.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(msg string) { f(msg) }

type discardNotifier struct{}

func (discardNotifier) Notify(string) {}

// Status is the outcome of a recolour operation.
type Status int

const (
	// StatusOK means at least one node was recoloured.
	StatusOK Status = iota
	// StatusEmptySelection means no roots were supplied.
	StatusEmptySelection
	// StatusNoColorableObjects means no node in the selection had solid paint.
	StatusNoColorableObjects
)

var (
	// ErrEmptySelection reports an operation run with nothing selected.
	ErrEmptySelection = errors.New("empty selection")
	// ErrNoColorableObjects reports a selection without any solid paint.
	ErrNoColorableObjects = errors.New("no colourable objects")
)

// String returns a short name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmptySelection:
		return "empty-selection"
	case StatusNoColorableObjects:
		return "no-colourable-objects"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Err returns the sentinel error matching the status, or nil for StatusOK.
func (s Status) Err() error {
	switch s {
	case StatusEmptySelection:
		return ErrEmptySelection
	case StatusNoColorableObjects:
		return ErrNoColorableObjects
	default:
		return nil
	}
}

// Message returns the notification text for the status.
func (s Status) Message(count int) string {
	switch s {
	case StatusEmptySelection:
		return "Please select a frame, object or group"
	case StatusNoColorableObjects:
		return "No objects with a solid fill or stroke in the selection"
	default:
		return fmt.Sprintf("Recoloured objects: %d", count)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for _, v := range []Status{StatusOK, StatusEmptySelection, StatusNoColorableObjects} {
		if string(text) == v.String() {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown status: %s", text)
}
