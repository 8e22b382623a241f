// Package app orchestrates plot lifecycles over a sample source: plot
// registration, batched (optionally sharded) histogram fills, density
// finalization and credible-interval construction.
package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"numcmc/adapters/stats/engine"
	"numcmc/domain/chain"
	"numcmc/domain/histogram"
	"numcmc/internal"
	"numcmc/internal/errors"
	"numcmc/ports"
)

// DefaultBatchSize bounds the rows drawn per batch from the source. It
// controls memory only; fill results are batch-size independent.
const DefaultBatchSize = 100000

// PlotStack owns a set of plots over one chain and sequences their fills.
type PlotStack struct {
	source   ports.SampleSource
	registry *chain.Registry
	meta     ports.ChainMeta

	batchSize int
	shards    int
	log       *internal.Logger

	plots  []*Plot
	filled bool
}

// Option configures a PlotStack.
type Option func(*PlotStack)

// WithBatchSize overrides the default streaming batch size.
func WithBatchSize(n int) Option {
	return func(s *PlotStack) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithShards enables sharded fills: each batch is split row-wise across n
// goroutines filling per-shard accumulators that are merged bin-wise, which
// the fill associativity invariant makes exact.
func WithShards(n int) Option {
	return func(s *PlotStack) {
		if n > 0 {
			s.shards = n
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *internal.Logger) Option {
	return func(s *PlotStack) { s.log = l }
}

// NewPlotStack binds a stack to a chain source, loading the chain's prior and
// constraint metadata up front.
func NewPlotStack(ctx context.Context, source ports.SampleSource, registry *chain.Registry, opts ...Option) (*PlotStack, error) {
	if source == nil {
		return nil, errors.InvalidInput("sample source is required")
	}
	if registry == nil {
		registry = chain.NewRegistry()
	}
	meta, err := source.Meta(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading chain metadata")
	}
	s := &PlotStack{
		source:    source,
		registry:  registry,
		meta:      meta,
		batchSize: DefaultBatchSize,
		shards:    1,
		log:       internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Meta returns the chain metadata the stack was loaded with.
func (s *PlotStack) Meta() ports.ChainMeta { return s.meta }

// Registry returns the stack's variable registry.
func (s *PlotStack) Registry() *chain.Registry { return s.registry }

// Plots returns the registered plots.
func (s *PlotStack) Plots() []*Plot { return s.plots }

// PlotByID looks up a plot by its identifier.
func (s *PlotStack) PlotByID(id uuid.UUID) (*Plot, bool) {
	for _, p := range s.plots {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// AddPlot validates and registers a plot. Prior overrides are limited to one
// variable; overriding two or more fails with the dimensionality error even
// on a 2-D plot.
func (s *PlotStack) AddPlot(req PlotRequest) (*Plot, error) {
	if s.filled {
		return nil, errors.InvalidInput("cannot add plots after the stack was filled")
	}
	if len(req.Axes) == 0 || len(req.Axes) > 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("plots support 1 or 2 variables, got %d", len(req.Axes)))
	}

	variables := make([]string, len(req.Axes))
	edgeSets := make([][]float64, len(req.Axes))
	for i, axis := range req.Axes {
		if !s.registry.Has(axis.Variable) {
			return nil, errors.InvalidInput(fmt.Sprintf("variable %q is not defined for this chain", axis.Variable))
		}
		edges, err := axis.edges()
		if err != nil {
			return nil, errors.Wrapf(err, "axis %q", axis.Variable)
		}
		variables[i] = axis.Variable
		edgeSets[i] = edges
	}

	plan, err := s.buildWeightPlan(req, variables)
	if err != nil {
		return nil, err
	}

	var hist *histogram.Histogram
	if len(edgeSets) == 1 {
		hist, err = histogram.New1D(edgeSets[0], req.SeparateOrderings)
	} else {
		hist, err = histogram.New2D(edgeSets[0], edgeSets[1], req.SeparateOrderings)
	}
	if err != nil {
		return nil, errors.Wrap(err, "building histogram")
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%v", variables)
	}
	plot := &Plot{
		ID:        uuid.New(),
		Name:      name,
		Variables: variables,
		hist:      hist,
		plan:      plan,
	}
	s.plots = append(s.plots, plot)
	s.log.Debug("added plot %s over %v", plot.ID, variables)
	return plot, nil
}

func (s *PlotStack) buildWeightPlan(req PlotRequest, variables []string) (*engine.WeightPlan, error) {
	var reweighter *engine.Reweighter
	switch len(req.PriorOverrides) {
	case 0:
	case 1:
		override := req.PriorOverrides[0]
		original, ok := s.meta.Priors[override.Variable]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("chain declares no original prior for %q", override.Variable))
		}
		rw, err := engine.NewReweighter(original, override)
		if err != nil {
			return nil, err
		}
		reweighter = rw
	default:
		return nil, errors.Wrapf(engine.ErrDimensionality,
			"%d prior overrides requested", len(req.PriorOverrides))
	}

	specs := req.Constraints
	for _, c := range s.meta.Constraints {
		if c.AutoApply && c.Covers(variables) {
			specs = append(specs, c)
		}
	}
	return engine.NewWeightPlan(reweighter, specs), nil
}

// FillPlots streams the chain through every registered plot. A structural
// error in any plot aborts the fill; malformed rows within a batch are
// skipped by the accumulator. Fill may be called once per stack.
func (s *PlotStack) FillPlots(ctx context.Context, maxSteps int64) error {
	if s.filled {
		return errors.InvalidInput("stack was already filled")
	}
	if len(s.plots) == 0 {
		return errors.InvalidInput("no plots registered")
	}

	batches := 0
	err := s.source.ForEachBatch(ctx, s.batchSize, maxSteps, func(b *chain.Batch) error {
		batches++
		return s.fillBatch(ctx, b)
	})
	if err != nil {
		return errors.Wrap(err, "filling plots")
	}
	s.filled = true
	s.log.Info("filled %d plots from %d batches", len(s.plots), batches)
	return nil
}

// fillBatch routes one column batch through every plot. Plots fill
// concurrently; each accumulator is touched by exactly one goroutine.
func (s *PlotStack) fillBatch(ctx context.Context, b *chain.Batch) error {
	// Materialize every plotted column once, before fanning out, so the
	// batch is read-only inside the group.
	for _, p := range s.plots {
		names := append(append([]string{}, p.Variables...), p.plan.Variables()...)
		for _, name := range names {
			if _, err := b.Column(name, s.registry); err != nil {
				return err
			}
		}
	}

	g, _ := errgroup.WithContext(ctx)
	for _, p := range s.plots {
		g.Go(func() error {
			return s.fillPlot(b, p)
		})
	}
	return g.Wait()
}

func (s *PlotStack) fillPlot(b *chain.Batch, p *Plot) error {
	coords := make([][]float64, len(p.Variables))
	for i, name := range p.Variables {
		col, err := b.Column(name, s.registry)
		if err != nil {
			return err
		}
		coords[i] = col
	}

	weights, err := p.plan.ComputeBatch(b, s.registry)
	if err != nil {
		return err
	}

	var orderings []chain.Ordering
	if p.hist.Separate() {
		orderings = b.Orderings()
	}

	if s.shards <= 1 || b.Len() < s.shards*1024 {
		return p.hist.Fill(coords, orderings, weights)
	}
	return fillSharded(p.hist, coords, orderings, weights, s.shards)
}

// fillSharded splits rows across shard histograms and merges them bin-wise.
func fillSharded(h *histogram.Histogram, coords [][]float64, orderings []chain.Ordering, weights []float64, shards int) error {
	n := len(weights)
	per := (n + shards - 1) / shards
	clones := make([]*histogram.Histogram, 0, shards)
	var g errgroup.Group
	for lo := 0; lo < n; lo += per {
		hi := lo + per
		if hi > n {
			hi = n
		}
		clone := h.Clone()
		clones = append(clones, clone)
		g.Go(func() error {
			sub := make([][]float64, len(coords))
			for i, c := range coords {
				sub[i] = c[lo:hi]
			}
			var ords []chain.Ordering
			if orderings != nil {
				ords = orderings[lo:hi]
			}
			return clone.Fill(sub, ords, weights[lo:hi])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, clone := range clones {
		if err := h.Merge(clone); err != nil {
			return err
		}
	}
	return nil
}

// MakeIntervals normalizes every plot and builds HPD credible regions at the
// given levels.
func (s *PlotStack) MakeIntervals(levels []float64) error {
	for _, p := range s.plots {
		density, err := p.hist.Normalize()
		if err != nil {
			return errors.Wrapf(err, "plot %s", p.Name)
		}
		regions, err := density.CredibleRegions(levels)
		if err != nil {
			return errors.Wrapf(err, "plot %s", p.Name)
		}
		p.density = density
		p.regions = regions
		p.levels = append([]float64{}, levels...)
		for _, r := range regions {
			if r.Saturated {
				s.log.Warn("plot %s: level %.4f unreachable (mass %.4f), region covers all in-range bins",
					p.Name, r.Level, r.Mass)
			}
		}
	}
	return nil
}

// Results packages the finalized plots for exporters.
func (s *PlotStack) Results() []ports.PlotResult {
	out := make([]ports.PlotResult, 0, len(s.plots))
	for _, p := range s.plots {
		if p.density == nil {
			continue
		}
		out = append(out, ports.PlotResult{
			Name:      p.Name,
			Variables: p.Variables,
			Density:   p.density,
			Regions:   p.regions,
			Citation:  s.meta.Citation,
		})
	}
	return out
}
