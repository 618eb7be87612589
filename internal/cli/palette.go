package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/monotint/internal/colour"
)

type paletteOptions struct {
	palette paletteFlags
	count   int
	format  string
}

func newPaletteCmd(ro *rootOptions) *cobra.Command {
	opts := &paletteOptions{}

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Show the shade ladder for a base colour",
		Long: `Show the shades the shaded strategy would hand out to a selection of n objects.

Rank 0 is the darkest original object and receives the lightest shade.

Examples:
  # Five shades of the default base colour
  monotint palette

  # Twelve shades of a custom colour as JSON
  monotint palette -n 12 --base "#7d2ac7" --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPalette(cmd, ro, opts)
		},
	}

	opts.palette.register(cmd)
	cmd.Flags().IntVarP(&opts.count, "count", "n", 5, "number of shades (1-256)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "hex", "output format (hex, rgb, json)")

	return cmd
}

type shadeJSON struct {
	Rank       int        `json:"rank"`
	Hex        string     `json:"hex"`
	RGB        colour.RGB `json:"rgb"`
	Lightness  float64    `json:"lightness"`
	Saturation float64    `json:"saturation"`
}

// runPalette executes the palette command.
func runPalette(cmd *cobra.Command, ro *rootOptions, opts *paletteOptions) error {
	if opts.count < 1 || opts.count > 256 {
		return fmt.Errorf("count must be between 1 and 256, got %d", opts.count)
	}

	logger := ro.logger(cmd.ErrOrStderr())
	cfg, err := ro.settings(cmd, &opts.palette)
	if err != nil {
		return err
	}
	rc, err := recolorConfig(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	base := colour.RGBToHSL(rc.Base)
	shades := rc.Shades.Shades(rc.Base, opts.count)
	w := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		out := make([]shadeJSON, len(shades))
		for i, c := range shades {
			l := rc.Shades.Lightness(i, len(shades))
			out[i] = shadeJSON{
				Rank:       i,
				Hex:        c.Hex(),
				RGB:        c,
				Lightness:  l,
				Saturation: rc.Shades.Saturation(base.S, l),
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "hex", "rgb":
		sw, err := ro.swatcher(w)
		if err != nil {
			return err
		}
		for i, c := range shades {
			value := c.Hex()
			if opts.format == "rgb" {
				value = c.String()
			}
			label := "rank " + strconv.Itoa(i)
			if sw.Enabled() {
				fmt.Fprintf(w, "%s  %-8s %s\n", sw.SwatchWithText(c, c.Hex(), 9), label, value)
			} else {
				fmt.Fprintln(w, value)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: hex, rgb, json)", opts.format)
	}
}
