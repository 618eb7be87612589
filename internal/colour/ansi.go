package colour

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

const defaultSwatchWidth = 8

var (
	black = RGB{}
	white = RGB{R: 1, G: 1, B: 1}
)

// Swatcher renders colour blocks for terminal output.
// Colours are degraded to whatever the profile supports; the Ascii profile
// renders no blocks at all.
type Swatcher struct {
	profile termenv.Profile
}

// NewSwatcher creates a Swatcher for the given terminal colour profile.
func NewSwatcher(profile termenv.Profile) *Swatcher {
	return &Swatcher{profile: profile}
}

// Enabled reports whether swatches produce any visible output.
func (s *Swatcher) Enabled() bool {
	return s.profile != termenv.Ascii
}

// Swatch returns a solid block of the colour, width characters wide.
func (s *Swatcher) Swatch(c RGB, width int) string {
	if !s.Enabled() {
		return ""
	}
	if width <= 0 {
		width = defaultSwatchWidth
	}
	return s.profile.String(strings.Repeat(" ", width)).
		Background(s.profile.Color(c.Hex())).
		String()
}

// SwatchWithText returns a block of the colour with centred text drawn in
// whichever of black or white contrasts more with it.
func (s *Swatcher) SwatchWithText(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultSwatchWidth
	}
	if len(text) > width {
		text = text[:width]
	} else if len(text) < width {
		pad := (width - len(text)) / 2
		text = strings.Repeat(" ", pad) + text + strings.Repeat(" ", width-len(text)-pad)
	}
	if !s.Enabled() {
		return text
	}

	fg := white
	if ContrastRatio(c, black) > ContrastRatio(c, white) {
		fg = black
	}
	return s.profile.String(text).
		Foreground(s.profile.Color(fg.Hex())).
		Background(s.profile.Color(c.Hex())).
		String()
}

// FormatWithLabel formats a colour with a label, a swatch and its hex code.
func (s *Swatcher) FormatWithLabel(c RGB, label string, width int) string {
	if !s.Enabled() {
		return fmt.Sprintf("%-20s %s", label, c.Hex())
	}
	return fmt.Sprintf("%s  %-20s %s", s.Swatch(c, width), label, c.Hex())
}
