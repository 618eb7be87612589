// Package colour provides the colour maths used to build monochromatic palettes.
package colour

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGB represents a colour with each channel in the unit range [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// HSL represents a colour in HSL space.
// H is a fraction of a full turn in [0, 1); S and L are in [0, 1].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// DefaultBase is the stock base colour #2A7DC7.
var DefaultBase = RGB{R: 42.0 / 255.0, G: 125.0 / 255.0, B: 199.0 / 255.0}

// Clamp returns a copy of the colour with every channel limited to [0, 1].
func (c RGB) Clamp() RGB {
	return RGB{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// To8Bit returns the channels scaled and rounded to 0-255.
func (c RGB) To8Bit() (r, g, b uint8) {
	c = c.Clamp()
	return uint8(math.Round(c.R * 255)), uint8(math.Round(c.G * 255)), uint8(math.Round(c.B * 255))
}

// Hex returns the colour as a hex string (e.g., "#2a7dc7").
func (c RGB) Hex() string {
	r, g, b := c.To8Bit()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// String returns the colour in the format "rgb(r, g, b)" using 8-bit channels.
func (c RGB) String() string {
	r, g, b := c.To8Bit()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

// RGBA implements color.Color with full opacity.
func (c RGB) RGBA() (r, g, b, a uint32) {
	c = c.Clamp()
	return uint32(math.Round(c.R * 0xffff)), uint32(math.Round(c.G * 0xffff)), uint32(math.Round(c.B * 0xffff)), 0xffff
}

// FromColor converts any color.Color to RGB, discarding alpha.
// Premultiplied channels are divided back out for translucent colours.
func FromColor(c color.Color) RGB {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return RGB{}
	}
	fa := float64(a)
	return RGB{R: float64(r) / fa, G: float64(g) / fa, B: float64(b) / fa}
}

// ParseHex parses "#rrggbb", "rrggbb", "#rgb" or "rgb" into an RGB colour.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q: expected 3 or 6 hex digits", s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return RGB{
		R: float64((v>>16)&0xff) / 255.0,
		G: float64((v>>8)&0xff) / 255.0,
		B: float64(v&0xff) / 255.0,
	}, nil
}
