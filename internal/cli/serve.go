package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/monotint/internal/dispatch"
	"github.com/jmylchreest/monotint/internal/scene"
	"github.com/jmylchreest/monotint/internal/security"
)

type serveOptions struct {
	palette paletteFlags
	save    bool
	output  string
}

func newServeCmd(ro *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve <document>",
		Short: "Handle recolour requests as JSON lines on stdin",
		Long: `Load a document and answer recolour requests read from stdin, one JSON
object per line. Events are written to stdout, one JSON object per line.

Requests:
  {"type": "recolor"}                      flat recolour of the stored selection
  {"type": "recolor-shaded", "ids": [..]}  shaded recolour of the given nodes
  {"type": "preview", "count": 5}          shade ladder without changes
  {"type": "resize", "height": 200}        acknowledged, no effect
  {"type": "cancel"}                       end the session

With --save the document is written back after every successful recolour.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ro, opts, args[0])
		},
	}

	opts.palette.register(cmd)
	cmd.Flags().BoolVar(&opts.save, "save", false, "write the document back after each recolour")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "where --save writes (default: the input document)")

	return cmd
}

// runServe executes the serve command.
func runServe(cmd *cobra.Command, ro *rootOptions, opts *serveOptions, path string) error {
	logger := ro.logger(cmd.ErrOrStderr())

	if err := security.ValidateDocumentPath(path); err != nil {
		return fmt.Errorf("invalid document path: %w", err)
	}
	cfg, err := ro.settings(cmd, &opts.palette)
	if err != nil {
		return err
	}
	rc, err := recolorConfig(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	doc, err := scene.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	dopts := []dispatch.Option{
		dispatch.WithLogger(logger.Named("dispatch")),
		dispatch.WithResolver(doc.SelectByID),
	}
	if opts.save {
		out := opts.output
		if out == "" {
			out = path
		}
		dopts = append(dopts, dispatch.WithAfterWrite(func() error {
			logger.Debug("saving document", "path", out)
			return doc.Save(out)
		}))
	}

	logger.Info("serving", "document", path, "nodes", countNodes(doc))
	d := dispatch.New(rc, doc, dopts...)
	return d.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}

func countNodes(doc *scene.Document) int {
	n := 0
	if doc.Root == nil {
		return 0
	}
	scene.Walk(doc.Root, func(scene.Node) bool {
		n++
		return true
	})
	return n
}
