// Package recolor rewrites the paint of document nodes into shades of one base colour.
package recolor

import (
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/monotint/internal/colour"
	"github.com/jmylchreest/monotint/internal/scene"
)

// Sample is one colourable node found during extraction.
type Sample struct {
	Node scene.Paintable
	// Original is the colour the luminance was taken from: the fill when
	// the node has one, otherwise the stroke.
	Original  colour.RGB
	Luminance float64
	HasFill   bool
	HasStroke bool
}

// slotState classifies the first entry of a paint slot.
type slotState int

const (
	slotAbsent slotState = iota
	slotSolid
	slotMalformed
)

// solidColour returns the colour of the slot's first entry when it is solid.
func solidColour(slot *scene.Slot) (colour.RGB, slotState) {
	if slot == nil {
		return colour.RGB{}, slotAbsent
	}
	first, ok := slot.First()
	if !ok || !first.IsSolid() {
		return colour.RGB{}, slotAbsent
	}
	if first.Color == nil {
		return colour.RGB{}, slotMalformed
	}
	return *first.Color, slotSolid
}

// Extractor walks node trees and collects samples.
type Extractor struct {
	logger hclog.Logger
}

// NewExtractor creates an Extractor. A nil logger discards output.
func NewExtractor(logger hclog.Logger) *Extractor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Extractor{logger: logger}
}

// Sample returns the sample for a single node, without looking at its children.
// Fill takes precedence over stroke for the luminance; both flags are set
// whenever the corresponding slot starts with a solid colour.
func (e *Extractor) Sample(n scene.Node) (Sample, bool) {
	p, ok := n.(scene.Paintable)
	if !ok {
		return Sample{}, false
	}

	fill, fillState := solidColour(p.Fills())
	stroke, strokeState := solidColour(p.Strokes())
	if fillState == slotMalformed {
		e.logger.Debug("skipping solid fill without colour", "node", n.ID())
	}
	if strokeState == slotMalformed {
		e.logger.Debug("skipping solid stroke without colour", "node", n.ID())
	}

	s := Sample{
		Node:      p,
		HasFill:   fillState == slotSolid,
		HasStroke: strokeState == slotSolid,
	}
	switch {
	case s.HasFill:
		s.Original = fill
	case s.HasStroke:
		s.Original = stroke
	default:
		return Sample{}, false
	}
	s.Luminance = colour.Luminance(s.Original)
	return s, true
}

// Extract appends a sample for every colourable node under root, root
// included, to samples and returns the extended slice. Nodes are visited
// depth first with children in document order.
func (e *Extractor) Extract(root scene.Node, samples []Sample) []Sample {
	return e.extract(root, samples, make(map[scene.Node]struct{}))
}

// ExtractAll runs Extract over every root in order. A node reachable from
// more than one root is sampled once, at its first visit.
func (e *Extractor) ExtractAll(roots []scene.Node) []Sample {
	var samples []Sample
	seen := make(map[scene.Node]struct{})
	for _, r := range roots {
		samples = e.extract(r, samples, seen)
	}
	return samples
}

func (e *Extractor) extract(root scene.Node, samples []Sample, seen map[scene.Node]struct{}) []Sample {
	scene.Walk(root, func(n scene.Node) bool {
		if _, dup := seen[n]; dup {
			e.logger.Trace("node already sampled", "node", n.ID())
			return false
		}
		seen[n] = struct{}{}
		if s, ok := e.Sample(n); ok {
			e.logger.Trace("sampled node", "node", n.ID(), "luminance", s.Luminance,
				"fill", s.HasFill, "stroke", s.HasStroke)
			samples = append(samples, s)
		}
		return true
	})
	return samples
}
