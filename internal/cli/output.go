package cli

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jmylchreest/monotint/internal/colour"
)

// fdWriter is satisfied by *os.File.
type fdWriter interface {
	Fd() uintptr
}

// swatcher returns a Swatcher for w according to the --colour mode.
// In auto mode swatches are only drawn when w is a terminal.
func (o *rootOptions) swatcher(w io.Writer) (*colour.Swatcher, error) {
	switch o.colourMode {
	case "never":
		return colour.NewSwatcher(termenv.Ascii), nil
	case "always":
		return colour.NewSwatcher(termenv.TrueColor), nil
	case "auto", "":
		f, ok := w.(fdWriter)
		if !ok || !term.IsTerminal(int(f.Fd())) {
			return colour.NewSwatcher(termenv.Ascii), nil
		}
		return colour.NewSwatcher(termenv.NewOutput(w).EnvColorProfile()), nil
	default:
		return nil, fmt.Errorf("invalid colour mode: %s (valid: auto, always, never)", o.colourMode)
	}
}
