package recolor

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/monotint/internal/colour"
	"github.com/jmylchreest/monotint/internal/scene"
)

// Config is the immutable input of a Recolorer.
type Config struct {
	Base   colour.RGB
	Shades colour.ShadeConfig
}

// DefaultConfig returns the stock base colour with the stock shade ladder.
func DefaultConfig() Config {
	return Config{
		Base:   colour.DefaultBase,
		Shades: colour.DefaultShadeConfig(),
	}
}

// Validate checks the shade parameters.
func (c Config) Validate() error {
	if err := c.Shades.Validate(); err != nil {
		return fmt.Errorf("invalid shade config: %w", err)
	}
	return nil
}

// Assignment records the colour written to one node.
type Assignment struct {
	NodeID   string     `json:"id"`
	NodeName string     `json:"name,omitempty"`
	Rank     int        `json:"rank"`
	From     colour.RGB `json:"from"`
	To       colour.RGB `json:"to"`
	Fill     bool       `json:"fill"`
	Stroke   bool       `json:"stroke"`
}

// Result is the outcome of a recolour run.
type Result struct {
	Strategy    string       `json:"strategy"`
	Status      Status       `json:"status"`
	Count       int          `json:"count"`
	Message     string       `json:"message"`
	Assignments []Assignment `json:"assignments,omitempty"`
}

// Err returns the sentinel error for a run that recoloured nothing.
func (r Result) Err() error {
	return r.Status.Err()
}

// Option configures a Recolorer.
type Option func(*Recolorer)

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(r *Recolorer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithNotifier sets where status messages go.
func WithNotifier(n Notifier) Option {
	return func(r *Recolorer) {
		if n != nil {
			r.notifier = n
		}
	}
}

// Recolorer runs recolour strategies over a selection.
// It holds no state between runs and must not be used concurrently on the
// same tree.
type Recolorer struct {
	cfg       Config
	logger    hclog.Logger
	notifier  Notifier
	extractor *Extractor
}

// New creates a Recolorer.
func New(cfg Config, opts ...Option) *Recolorer {
	r := &Recolorer{
		cfg:      cfg,
		logger:   hclog.NewNullLogger(),
		notifier: discardNotifier{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.extractor = NewExtractor(r.logger.Named("extract"))
	return r
}

// Config returns the configuration the Recolorer was built with.
func (r *Recolorer) Config() Config {
	return r.cfg
}

// Run applies the strategy to the selection.
func (r *Recolorer) Run(s Strategy, selection []scene.Node) Result {
	switch s {
	case Flat:
		return r.RunFlat(selection)
	default:
		return r.RunShaded(selection)
	}
}

// RunShaded ranks the colourable nodes in the selection by luminance and
// gives each one a shade of the base colour. Rank 0, the darkest original,
// receives the lightest shade.
func (r *Recolorer) RunShaded(selection []scene.Node) Result {
	samples, res, ok := r.collect(Shaded, selection)
	if !ok {
		return res
	}

	// Stable so equal luminances keep discovery order between runs.
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Luminance < samples[j].Luminance
	})

	shades := r.cfg.Shades.Shades(r.cfg.Base, len(samples))
	res.Assignments = make([]Assignment, 0, len(samples))
	for i, s := range samples {
		write(s, shades[i])
		r.logger.Debug("recoloured node", "node", s.Node.ID(), "rank", i,
			"luminance", s.Luminance, "from", s.Original.Hex(), "to", shades[i].Hex())
		res.Assignments = append(res.Assignments, newAssignment(s, i, shades[i]))
	}

	return r.finish(res, len(samples))
}

// RunFlat writes the unmodified base colour to every solid fill and stroke
// in the selection.
func (r *Recolorer) RunFlat(selection []scene.Node) Result {
	samples, res, ok := r.collect(Flat, selection)
	if !ok {
		return res
	}

	base := r.cfg.Base.Clamp()
	res.Assignments = make([]Assignment, 0, len(samples))
	for i, s := range samples {
		write(s, base)
		r.logger.Debug("recoloured node", "node", s.Node.ID(), "from", s.Original.Hex(), "to", base.Hex())
		res.Assignments = append(res.Assignments, newAssignment(s, i, base))
	}

	return r.finish(res, len(samples))
}

// collect extracts samples and handles the two soft-failure outcomes.
// ok is false when the caller should return res as is.
func (r *Recolorer) collect(s Strategy, selection []scene.Node) ([]Sample, Result, bool) {
	res := Result{Strategy: s.String()}
	if len(selection) == 0 {
		return nil, r.report(res, StatusEmptySelection, 0), false
	}

	samples := r.extractor.ExtractAll(selection)
	r.logger.Debug("extracted samples", "strategy", s, "roots", len(selection), "samples", len(samples))
	if len(samples) == 0 {
		return nil, r.report(res, StatusNoColorableObjects, 0), false
	}
	return samples, res, true
}

func (r *Recolorer) finish(res Result, count int) Result {
	return r.report(res, StatusOK, count)
}

// report stamps the outcome on res and sends exactly one notification.
func (r *Recolorer) report(res Result, status Status, count int) Result {
	res.Status = status
	res.Count = count
	res.Message = status.Message(count)
	if status != StatusOK {
		r.logger.Info("nothing recoloured", "strategy", res.Strategy, "status", status)
	}
	r.notifier.Notify(res.Message)
	return res
}

// write replaces the sampled slots with a single solid paint of c.
func write(s Sample, c colour.RGB) {
	if s.HasFill {
		*s.Node.Fills() = scene.Slot{scene.Solid(c)}
	}
	if s.HasStroke {
		*s.Node.Strokes() = scene.Slot{scene.Solid(c)}
	}
}

func newAssignment(s Sample, rank int, to colour.RGB) Assignment {
	return Assignment{
		NodeID:   s.Node.ID(),
		NodeName: s.Node.Name(),
		Rank:     rank,
		From:     s.Original,
		To:       to.Clamp(),
		Fill:     s.HasFill,
		Stroke:   s.HasStroke,
	}
}
