// monotint - recolour design documents into shades of one hue
//
// monotint ranks the solid fills and strokes of a design document by
// luminance and rewrites them as a monochromatic palette.
package main

import (
	"os"

	"github.com/jmylchreest/monotint/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
