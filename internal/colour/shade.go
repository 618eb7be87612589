package colour

import (
	"fmt"
	"math"
)

// ShadeConfig controls how ranks are spread over the lightness range
// and how saturation is bent near the ends of it.
type ShadeConfig struct {
	// MinLightness is the lightness given to the last rank.
	MinLightness float64 `yaml:"min_lightness" json:"min_lightness"`
	// MaxLightness is the lightness given to rank 0.
	MaxLightness float64 `yaml:"max_lightness" json:"max_lightness"`

	// Above PastelThreshold saturation is compressed towards a pastel tint.
	PastelThreshold float64 `yaml:"pastel_threshold" json:"pastel_threshold"`
	PastelFloor     float64 `yaml:"pastel_floor" json:"pastel_floor"`
	PastelSlope     float64 `yaml:"pastel_slope" json:"pastel_slope"`

	// Below DeepThreshold saturation is multiplied by DeepBoost, capped at 1.
	DeepThreshold float64 `yaml:"deep_threshold" json:"deep_threshold"`
	DeepBoost     float64 `yaml:"deep_boost" json:"deep_boost"`
}

// DefaultShadeConfig returns the stock palette parameters.
func DefaultShadeConfig() ShadeConfig {
	return ShadeConfig{
		MinLightness:    0.10,
		MaxLightness:    0.95,
		PastelThreshold: 0.85,
		PastelFloor:     0.2,
		PastelSlope:     0.1,
		DeepThreshold:   0.25,
		DeepBoost:       1.1,
	}
}

// Validate checks that the configuration describes a usable lightness ladder.
func (c ShadeConfig) Validate() error {
	bounds := []struct {
		name string
		v    float64
	}{
		{"min_lightness", c.MinLightness},
		{"max_lightness", c.MaxLightness},
		{"pastel_threshold", c.PastelThreshold},
		{"deep_threshold", c.DeepThreshold},
	}
	for _, b := range bounds {
		if b.v < 0 || b.v > 1 || math.IsNaN(b.v) {
			return fmt.Errorf("%s must be within [0, 1], got %v", b.name, b.v)
		}
	}
	if c.MinLightness > c.MaxLightness {
		return fmt.Errorf("min_lightness (%v) must not exceed max_lightness (%v)", c.MinLightness, c.MaxLightness)
	}
	if c.DeepBoost < 0 || c.PastelFloor < 0 {
		return fmt.Errorf("deep_boost and pastel_floor must not be negative")
	}
	return nil
}

// Midpoint returns the lightness given to a lone sample.
func (c ShadeConfig) Midpoint() float64 {
	return c.lightness(0.5)
}

// Lightness returns the output lightness for the rank at index out of n.
// Rank 0 receives MaxLightness and rank n-1 receives MinLightness.
// A single rank sits at the midpoint of the range.
func (c ShadeConfig) Lightness(index, n int) float64 {
	if n <= 1 {
		return c.Midpoint()
	}
	return c.lightness(float64(index) / float64(n-1))
}

func (c ShadeConfig) lightness(t float64) float64 {
	return c.MaxLightness - t*(c.MaxLightness-c.MinLightness)
}

// Saturation returns the saturation to pair with lightness l for a base saturation.
func (c ShadeConfig) Saturation(base, l float64) float64 {
	switch {
	case l > c.PastelThreshold:
		return base * (c.PastelFloor + (c.PastelThreshold-l)*c.PastelSlope)
	case l < c.DeepThreshold:
		return math.Min(1, base*c.DeepBoost)
	default:
		return base
	}
}

// ShadeAt returns the shade of base for the rank at index out of n.
func (c ShadeConfig) ShadeAt(base HSL, index, n int) RGB {
	l := c.Lightness(index, n)
	s := c.Saturation(base.S, l)
	return HSLToRGB(HSL{H: base.H, S: s, L: l}).Clamp()
}

// Shades returns n shades of base, one per rank, index aligned with the ranks.
// Returns nil when n is zero.
func (c ShadeConfig) Shades(base RGB, n int) []RGB {
	if n <= 0 {
		return nil
	}
	hsl := RGBToHSL(base)
	out := make([]RGB, n)
	for i := range out {
		out[i] = c.ShadeAt(hsl, i, n)
	}
	return out
}
