// Package cli provides the command-line interface for monotint.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	goimage "image"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/monotint/internal/colour"
	"github.com/jmylchreest/monotint/internal/config"
	"github.com/jmylchreest/monotint/internal/image"
	"github.com/jmylchreest/monotint/internal/recolor"
	"github.com/jmylchreest/monotint/internal/version"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	verbose    bool
	quiet      bool
	configPath string
	colourMode string
}

// NewRootCmd builds the monotint command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "monotint",
		Short: "Recolour design documents into shades of one hue",
		Long: `monotint rewrites the solid fills and strokes of a design document as a
monochromatic palette built from a single base colour.

The shaded strategy ranks every object by perceptual luminance and spreads
the ranks over a lightness ladder, so objects that were distinguishable
before stay distinguishable afterwards. The flat strategy simply paints
everything with the base colour.`,
		Version:       version.GetInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&opts.colourMode, "colour", "auto", "colour swatches in output (auto, always, never)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRecolorCmd(opts))
	rootCmd.AddCommand(newPaletteCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(version.GetInfo())
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print build information as JSON")
	return cmd
}

// logger returns the command logger: debug when verbose, silent when quiet.
func (o *rootOptions) logger(w io.Writer) hclog.Logger {
	if o.quiet {
		return hclog.New(&hclog.LoggerOptions{
			Name:   "monotint",
			Output: io.Discard,
			Level:  hclog.Off,
		})
	}
	level := hclog.Warn
	if o.verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "monotint",
		Output: w,
		Level:  level,
	})
}

// notifier prints status messages unless quiet.
func (o *rootOptions) notifier(w io.Writer) recolor.Notifier {
	return recolor.NotifierFunc(func(msg string) {
		if !o.quiet {
			fmt.Fprintln(w, msg)
		}
	})
}

// paletteFlags are the colour flags shared by recolour, palette and serve.
type paletteFlags struct {
	base      string
	baseImage string
}

func (p *paletteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.base, "base", "b", "", "base colour as hex (default: #2a7dc7 or config)")
	cmd.Flags().StringVar(&p.baseImage, "base-image", "", "derive the base colour from the dominant hue of an image file or http(s) URL")
}

// settings loads the config file and environment, then applies flags that
// were set explicitly on cmd.
func (o *rootOptions) settings(cmd *cobra.Command, pf *paletteFlags) (config.Config, error) {
	b := config.NewBuilder().WithEnv()
	if o.configPath != "" {
		b = b.WithFile(o.configPath)
	} else {
		b = b.WithDefaultFile()
	}
	cfg, err := b.Build()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	if pf != nil {
		if cmd.Flags().Changed("base") {
			cfg.Base = pf.base
			cfg.BaseImage = ""
		}
		if cmd.Flags().Changed("base-image") {
			cfg.BaseImage = pf.baseImage
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// recolorConfig resolves settings into a recolor.Config, loading the base
// image when one is configured. Remote images are downloaded into the user cache first.
func recolorConfig(ctx context.Context, cfg config.Config, logger hclog.Logger) (recolor.Config, error) {
	if cfg.BaseImage != "" {
		var (
			img goimage.Image
			err error
		)
		if image.IsRemote(cfg.BaseImage) {
			logger.Debug("fetching base image", "url", cfg.BaseImage)
			img, err = image.NewRemoteLoader("").Load(ctx, cfg.BaseImage)
		} else {
			img, err = image.NewFileLoader().Load(cfg.BaseImage)
		}
		if err != nil {
			return recolor.Config{}, fmt.Errorf("failed to load base image: %w", err)
		}
		base, err := image.DominantColour(img)
		if err != nil {
			return recolor.Config{}, fmt.Errorf("failed to derive base colour: %w", err)
		}
		logger.Debug("derived base colour from image", "image", cfg.BaseImage, "base", base.Hex())
		cfg.Base = base.Hex()
	}

	rc, err := cfg.RecolorConfig()
	if err != nil {
		return recolor.Config{}, err
	}
	hsl := colour.RGBToHSL(rc.Base)
	logger.Debug("base colour", "hex", rc.Base.Hex(), "hue", hsl.H, "saturation", hsl.S, "lightness", hsl.L)
	return rc, nil
}
