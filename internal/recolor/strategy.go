package recolor

import (
	"fmt"
	"strings"
)

// Strategy selects how a Recolorer maps the selection onto the base colour.
type Strategy int

const (
	// Shaded ranks nodes by luminance and spreads them over a lightness ladder.
	Shaded Strategy = iota
	// Flat paints every node with the base colour.
	Flat
)

// String returns the strategy name as used on the command line.
func (s Strategy) String() string {
	switch s {
	case Flat:
		return "flat"
	case Shaded:
		return "shaded"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Strategies returns every valid strategy.
func Strategies() []Strategy {
	return []Strategy{Shaded, Flat}
}

// ParseStrategy parses a strategy name (case insensitive).
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies() {
		if strings.EqualFold(strings.TrimSpace(name), s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy: %s (valid strategies: shaded, flat)", name)
}

// Set implements pflag.Value.
func (s *Strategy) Set(name string) error {
	v, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Type implements pflag.Value.
func (s *Strategy) Type() string {
	return "strategy"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
