package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/monotint/internal/colour"
	"github.com/jmylchreest/monotint/internal/recolor"
	"github.com/jmylchreest/monotint/internal/scene"
	"github.com/jmylchreest/monotint/internal/security"
)

type recolorOptions struct {
	palette  paletteFlags
	strategy recolor.Strategy
	selectID []string
	all      bool
	output   string
	inPlace  bool
	dryRun   bool
	report   string
}

func newRecolorCmd(ro *rootOptions) *cobra.Command {
	opts := &recolorOptions{}

	cmd := &cobra.Command{
		Use:   "recolor <document>",
		Short: "Recolour a design document",
		Long: `Recolour the selected objects of a design document into shades of the base colour.

The document is a JSON tree of nodes with optional "fills", "strokes" and
"children". Gzip, xz and bzip2 compressed documents are read transparently,
and the output is compressed according to its extension.

Only solid paints are changed. Gradients, images and patterns are left as they are.

Examples:
  # Shade the document's stored selection and print the result
  monotint recolor design.json

  # Shade two frames and write the result to a new file
  monotint recolor --select 1:2,1:7 -o shaded.json design.json

  # Paint everything with a flat colour, in place
  monotint recolor --all --strategy flat --base "#c72a7d" --in-place design.json.xz

  # Take the base colour from a wallpaper and show what would change
  monotint recolor --all --base-image wallpaper.webp --dry-run design.json`,
		Aliases: []string{"recolour"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecolor(cmd, ro, opts, args[0])
		},
	}

	opts.palette.register(cmd)
	cmd.Flags().VarP(&opts.strategy, "strategy", "s", "recolour strategy (shaded, flat)")
	cmd.Flags().StringSliceVar(&opts.selectID, "select", nil, "node ids to recolour (default: the document's selection)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "recolour the whole document")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.inPlace, "in-place", false, "overwrite the input document")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report changes without writing the document")
	cmd.Flags().StringVar(&opts.report, "report", "auto", "report format (auto, table, json, none)")
	cmd.MarkFlagsMutuallyExclusive("select", "all")
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")

	return cmd
}

// runRecolor executes the recolor command.
func runRecolor(cmd *cobra.Command, ro *rootOptions, opts *recolorOptions, path string) error {
	logger := ro.logger(cmd.ErrOrStderr())

	if err := security.ValidateDocumentPath(path); err != nil {
		return fmt.Errorf("invalid document path: %w", err)
	}

	cfg, err := ro.settings(cmd, &opts.palette)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("strategy") {
		opts.strategy = cfg.Strategy
	}
	rc, err := recolorConfig(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	logger.Debug("loading document", "path", path)
	doc, err := scene.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	selection, err := selectRoots(doc, opts)
	if err != nil {
		return err
	}
	logger.Debug("selection", "roots", len(selection))

	r := recolor.New(rc,
		recolor.WithLogger(logger.Named("recolor")),
		recolor.WithNotifier(ro.notifier(cmd.ErrOrStderr())),
	)
	res := r.Run(opts.strategy, selection)

	toStdout := opts.output == "" && !opts.inPlace
	if err := writeReport(cmd, ro, opts.report, toStdout && !opts.dryRun, res); err != nil {
		return err
	}

	if opts.dryRun || res.Count == 0 {
		return nil
	}

	switch {
	case opts.inPlace:
		opts.output = path
		fallthrough
	case opts.output != "":
		logger.Debug("writing document", "path", opts.output)
		if err := doc.Save(opts.output); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
	default:
		if err := doc.Encode(cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return nil
}

// selectRoots applies --select / --all, falling back to the stored selection.
func selectRoots(doc *scene.Document, opts *recolorOptions) ([]scene.Node, error) {
	switch {
	case opts.all:
		return []scene.Node{doc.Root}, nil
	case len(opts.selectID) > 0:
		nodes, err := doc.SelectByID(opts.selectID)
		if err != nil {
			return nil, fmt.Errorf("invalid selection: %w", err)
		}
		return nodes, nil
	default:
		return doc.Selection(), nil
	}
}

// writeReport prints the per-node assignments. In auto mode the table goes
// to stdout unless stdout carries the document, in which case nothing is printed.
func writeReport(cmd *cobra.Command, ro *rootOptions, format string, stdoutBusy bool, res recolor.Result) error {
	if format == "auto" {
		if stdoutBusy || ro.quiet {
			return nil
		}
		format = "table"
	}

	w := cmd.OutOrStdout()
	switch format {
	case "none":
		return nil
	case "json":
		if stdoutBusy {
			w = cmd.ErrOrStderr()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "table":
		if stdoutBusy {
			w = cmd.ErrOrStderr()
		}
		if len(res.Assignments) == 0 {
			return nil
		}
		sw, err := ro.swatcher(w)
		if err != nil {
			return err
		}
		fmt.Fprint(w, assignmentTable(res.Assignments, sw).Render())
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s (supported: auto, table, json, none)", format)
	}
}

func assignmentTable(assignments []recolor.Assignment, sw *colour.Swatcher) *Table {
	t := NewTable([]string{"RANK", "NODE", "NAME", "SLOTS", "FROM", "TO"})
	for _, a := range assignments {
		slots := ""
		if a.Fill {
			slots = "fill"
		}
		if a.Stroke {
			if slots != "" {
				slots += "+"
			}
			slots += "stroke"
		}
		t.AddRow([]string{
			strconv.Itoa(a.Rank),
			a.NodeID,
			a.NodeName,
			slots,
			swatchCell(sw, a.From),
			swatchCell(sw, a.To),
		})
	}
	return t
}

func swatchCell(sw *colour.Swatcher, c colour.RGB) string {
	if !sw.Enabled() {
		return c.Hex()
	}
	return sw.Swatch(c, 2) + " " + c.Hex()
}
