package app

import (
	"github.com/google/uuid"

	"numcmc/adapters/stats/engine"
	"numcmc/domain/constraint"
	"numcmc/domain/histogram"
	"numcmc/domain/prior"
	"numcmc/internal/errors"
)

// AxisSpec declares one plot axis: either explicit bin edges, or a bin count
// over [Min, Max].
type AxisSpec struct {
	Variable string
	Bins     int
	Min, Max float64
	Edges    []float64
}

func (a AxisSpec) edges() ([]float64, error) {
	if len(a.Edges) > 0 {
		return a.Edges, nil
	}
	if a.Bins <= 0 || !(a.Max > a.Min) {
		return nil, errors.InvalidInput("axis needs explicit edges or bins > 0 with max > min")
	}
	return histogram.LinearEdges(a.Bins, a.Min, a.Max), nil
}

// PlotRequest declares a plot to add to the stack.
type PlotRequest struct {
	Name string
	Axes []AxisSpec

	// PriorOverrides replaces the chain's original prior for at most one
	// physical variable. More than one override is a dimensionality error.
	PriorOverrides []prior.Spec

	// SeparateOrderings requests independent histograms per mass ordering.
	SeparateOrderings bool

	// Constraints attaches extra constraints beyond the chain's auto-apply
	// set.
	Constraints []*constraint.Spec
}

// Plot owns one histogram's full lifecycle: created empty, filled across
// streamed batches, normalized into a density, then queried for credible
// regions. Each plot exclusively owns its accumulator.
type Plot struct {
	ID        uuid.UUID
	Name      string
	Variables []string

	hist *histogram.Histogram
	plan *engine.WeightPlan

	density *histogram.Density
	regions []histogram.CredibleRegion
	levels  []float64
}

// Density returns the normalized density, nil before finalization.
func (p *Plot) Density() *histogram.Density { return p.density }

// Regions returns the credible regions built by MakeIntervals.
func (p *Plot) Regions() []histogram.CredibleRegion { return p.regions }

// Histogram exposes the raw accumulator, mainly for diagnostics.
func (p *Plot) Histogram() *histogram.Histogram { return p.hist }
