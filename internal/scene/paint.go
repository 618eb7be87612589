// Package scene models the design document that monotint recolours.
//
// A document is a tree of nodes. Nodes that can carry paint implement
// Paintable and expose optional fill and stroke slots; nodes that own other
// nodes implement Container. A nil slot means the node kind has no such
// property, which is different from an empty slot.
package scene

import (
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/monotint/internal/colour"
)

// PaintType is the kind of a paint entry.
type PaintType string

// Paint types found in design documents. Only PaintSolid carries a colour
// that monotint reads or writes; every other kind is passed through untouched.
const (
	PaintSolid           PaintType = "SOLID"
	PaintGradientLinear  PaintType = "GRADIENT_LINEAR"
	PaintGradientRadial  PaintType = "GRADIENT_RADIAL"
	PaintGradientAngular PaintType = "GRADIENT_ANGULAR"
	PaintGradientDiamond PaintType = "GRADIENT_DIAMOND"
	PaintImage           PaintType = "IMAGE"
	PaintPattern         PaintType = "PATTERN"
)

// Paint is one entry of a fill or stroke slot.
type Paint struct {
	Type  PaintType
	Color *colour.RGB

	// extra holds fields monotint does not interpret (opacity, stops,
	// image hashes) so they survive a load/save cycle.
	extra map[string]json.RawMessage
}

// Solid returns a solid paint of the given colour, clamped to [0, 1].
func Solid(c colour.RGB) Paint {
	c = c.Clamp()
	return Paint{Type: PaintSolid, Color: &c}
}

// IsSolid reports whether the paint is a flat colour.
func (p Paint) IsSolid() bool {
	return p.Type == PaintSolid
}

// Extra returns the raw value of an uninterpreted field.
func (p Paint) Extra(key string) (json.RawMessage, bool) {
	v, ok := p.extra[key]
	return v, ok
}

var paintKnownKeys = []string{"type", "color"}

// UnmarshalJSON decodes a paint and keeps unknown fields.
func (p *Paint) UnmarshalJSON(data []byte) error {
	var known struct {
		Type  PaintType   `json:"type"`
		Color *colour.RGB `json:"color"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("invalid paint: %w", err)
	}
	extra, err := splitExtra(data, paintKnownKeys)
	if err != nil {
		return fmt.Errorf("invalid paint: %w", err)
	}

	p.Type = known.Type
	p.Color = known.Color
	p.extra = extra
	return nil
}

// MarshalJSON encodes a paint including any preserved fields.
func (p Paint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.extra)+2)
	for k, v := range p.extra {
		out[k] = v
	}
	out["type"] = p.Type
	if p.Color != nil {
		out["color"] = p.Color
	}
	return json.Marshal(out)
}

// Slot is an ordered list of paints. Only the first entry is ever read.
type Slot []Paint

// First returns the first paint of the slot.
func (s Slot) First() (Paint, bool) {
	if len(s) == 0 {
		return Paint{}, false
	}
	return s[0], true
}

// splitExtra returns every top-level field of the JSON object in data that
// is not listed in known.
func splitExtra(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
