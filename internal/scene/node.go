package scene

import (
	"encoding/json"
	"fmt"
)

// Node is any entity in the document tree.
type Node interface {
	// ID returns the node's identifier, unique within a document.
	ID() string
	// Name returns the node's display name.
	Name() string
}

// Paintable is a node that may carry fill and stroke paint.
// Either slot may be nil when the node kind has no such property.
// Writers replace the slot contents through the returned pointer.
type Paintable interface {
	Node
	Fills() *Slot
	Strokes() *Slot
}

// Container is a node that owns child nodes.
type Container interface {
	Node
	Children() []Node
}

// Element is the generic document node decoded from JSON. It is Paintable
// and a Container; the capabilities it actually has depend on which
// properties were present in the source document.
type Element struct {
	NodeID     string
	NodeName   string
	Type       string
	FillSlot   *Slot
	StrokeSlot *Slot
	Nodes      []*Element

	extra map[string]json.RawMessage
}

// ID implements Node.
func (e *Element) ID() string { return e.NodeID }

// Name implements Node.
func (e *Element) Name() string { return e.NodeName }

// Fills implements Paintable.
func (e *Element) Fills() *Slot { return e.FillSlot }

// Strokes implements Paintable.
func (e *Element) Strokes() *Slot { return e.StrokeSlot }

// Children implements Container.
func (e *Element) Children() []Node {
	if len(e.Nodes) == 0 {
		return nil
	}
	out := make([]Node, 0, len(e.Nodes))
	for _, c := range e.Nodes {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

type elementJSON struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Type     string     `json:"type,omitempty"`
	Fills    *Slot      `json:"fills,omitempty"`
	Strokes  *Slot      `json:"strokes,omitempty"`
	Children []*Element `json:"children,omitempty"`
}

var elementKnownKeys = []string{"id", "name", "type", "fills", "strokes", "children"}

// UnmarshalJSON decodes an element and keeps unknown fields.
func (e *Element) UnmarshalJSON(data []byte) error {
	var known elementJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("invalid node: %w", err)
	}
	extra, err := splitExtra(data, elementKnownKeys)
	if err != nil {
		return fmt.Errorf("invalid node: %w", err)
	}

	*e = Element{
		NodeID:     known.ID,
		NodeName:   known.Name,
		Type:       known.Type,
		FillSlot:   known.Fills,
		StrokeSlot: known.Strokes,
		Nodes:      known.Children,
		extra:      extra,
	}
	return nil
}

// MarshalJSON encodes an element including any preserved fields.
func (e *Element) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(elementJSON{
		ID:       e.NodeID,
		Name:     e.NodeName,
		Type:     e.Type,
		Fills:    e.FillSlot,
		Strokes:  e.StrokeSlot,
		Children: e.Nodes,
	})
	if err != nil || len(e.extra) == 0 {
		return base, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	for k, v := range e.extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// Walk visits root and its descendants depth first, children in order,
// using an explicit stack. Returning false from fn skips the node's children.
func Walk(root Node, fn func(Node) bool) {
	if root == nil {
		return
	}
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		c, ok := n.(Container)
		if !ok {
			continue
		}
		kids := c.Children()
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] != nil {
				stack = append(stack, kids[i])
			}
		}
	}
}
