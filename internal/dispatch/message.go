// Package dispatch serves recolour requests over a line-delimited JSON stream.
//
// Each input line is one Message. Messages are handled strictly one at a
// time; every message produces zero or more notify events followed by one
// reply event.
package dispatch

import (
	"github.com/jmylchreest/monotint/internal/recolor"
)

// MessageType names an inbound request.
type MessageType string

// Inbound message types.
const (
	// MsgRecolor runs the flat strategy.
	MsgRecolor MessageType = "recolor"
	// MsgRecolorShaded runs the shaded strategy.
	MsgRecolorShaded MessageType = "recolor-shaded"
	// MsgPreview returns a shade ladder without touching the document.
	MsgPreview MessageType = "preview"
	// MsgResize is accepted for compatibility with UI hosts and ignored.
	MsgResize MessageType = "resize"
	// MsgCancel ends the session.
	MsgCancel MessageType = "cancel"
)

// Message is one inbound request.
type Message struct {
	Type MessageType `json:"type"`
	// IDs overrides the session selection for recolour requests.
	IDs []string `json:"ids,omitempty"`
	// Count is the number of shades a preview should return.
	Count int `json:"count,omitempty"`
	// Height is carried by resize requests.
	Height int `json:"height,omitempty"`
}

// EventType names an outbound event.
type EventType string

// Outbound event types.
const (
	EventNotify  EventType = "notify"
	EventResult  EventType = "result"
	EventPalette EventType = "palette"
	EventAck     EventType = "ack"
	EventClosed  EventType = "closed"
	EventError   EventType = "error"
)

// Event is one outbound line.
type Event struct {
	Type    EventType       `json:"type"`
	Message string          `json:"message,omitempty"`
	Result  *recolor.Result `json:"result,omitempty"`
	Colours []string        `json:"colours,omitempty"`
}
