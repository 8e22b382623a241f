// Package engine computes per-sample importance weights: the prior-ratio
// reweight for a single overridden variable, multiplied by any external
// constraint densities in scope for the sample's mass ordering.
package engine

import (
	"numcmc/domain/chain"
	"numcmc/domain/constraint"
	"numcmc/domain/prior"
	"numcmc/internal/errors"
)

// ErrDegeneratePrior is returned when the original prior's density vanishes
// at a sample: the importance ratio is undefined there, and failing beats
// silently producing infinity.
var ErrDegeneratePrior = errors.New(errors.CodeDegeneratePrior, "original prior density is zero")

// ErrDimensionality is returned for prior replacements spanning more than one
// variable; reweighting is supported per single physical variable only.
var ErrDimensionality = errors.New(errors.CodeDimensionality, "prior replacement supports exactly one variable")

// Reweighter computes weight(x) = density_new(x) / density_old(x) for one
// variable. Pure and side-effect-free; one instance per plot that overrides
// a prior.
type Reweighter struct {
	original    prior.Spec
	replacement prior.Spec
	identity    bool
}

// NewReweighter pairs a chain's original prior with a requested replacement.
// Both specs must target the same physical variable.
func NewReweighter(original, replacement prior.Spec) (*Reweighter, error) {
	if original.Variable != replacement.Variable {
		return nil, errors.Wrapf(ErrDimensionality,
			"original prior targets %q, replacement targets %q", original.Variable, replacement.Variable)
	}
	if original.Transform.Degenerate() {
		return nil, errors.Wrapf(ErrDegeneratePrior,
			"transform %s has zero Jacobian everywhere", original.Transform)
	}
	return &Reweighter{
		original:    original,
		replacement: replacement,
		identity:    original.Equal(replacement),
	}, nil
}

// Variable returns the reweighted variable's name.
func (r *Reweighter) Variable() string { return r.original.Variable }

// Weight returns the importance weight for one sample value.
func (r *Reweighter) Weight(x float64) (float64, error) {
	if r.identity {
		return 1, nil
	}
	old := r.original.Density(x)
	if old == 0 {
		return 0, errors.Wrapf(ErrDegeneratePrior, "at %s = %g", r.original.Variable, x)
	}
	return r.replacement.Density(x) / old, nil
}

// Weights computes importance weights for a column of sample values.
func (r *Reweighter) Weights(xs []float64) ([]float64, error) {
	out := make([]float64, len(xs))
	if r.identity {
		for i := range out {
			out[i] = 1
		}
		return out, nil
	}
	for i, x := range xs {
		w, err := r.Weight(x)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// WeightPlan is a plot's full per-sample weight computation: an optional
// reweighter plus the constraints attached to the plot. Constraint factors
// apply only to samples whose mass ordering falls in the constraint's scope.
type WeightPlan struct {
	reweighter  *Reweighter
	constraints []*constraint.Spec
}

// NewWeightPlan assembles a plan. reweighter may be nil (no prior override);
// the default per-sample weight is then 1 before constraints.
func NewWeightPlan(reweighter *Reweighter, constraints []*constraint.Spec) *WeightPlan {
	return &WeightPlan{reweighter: reweighter, constraints: constraints}
}

// Trivial reports whether every weight is 1, letting fill skip the
// computation entirely.
func (p *WeightPlan) Trivial() bool {
	return (p.reweighter == nil || p.reweighter.identity) && len(p.constraints) == 0
}

// Variables lists every column the plan reads, so callers can materialize
// derived columns before sharing a batch across goroutines.
func (p *WeightPlan) Variables() []string {
	var names []string
	if p.reweighter != nil {
		names = append(names, p.reweighter.Variable())
	}
	for _, c := range p.constraints {
		names = append(names, c.Variables...)
	}
	return names
}

// ComputeBatch evaluates the per-row weights for one column batch. Derived
// coordinates needed by constraints are materialized through the registry.
func (p *WeightPlan) ComputeBatch(b *chain.Batch, reg *chain.Registry) ([]float64, error) {
	n := b.Len()
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}

	if p.reweighter != nil && !p.reweighter.identity {
		col, err := b.Column(p.reweighter.Variable(), reg)
		if err != nil {
			return nil, err
		}
		for i, x := range col {
			w, err := p.reweighter.Weight(x)
			if err != nil {
				return nil, err
			}
			weights[i] *= w
		}
	}

	if len(p.constraints) == 0 {
		return weights, nil
	}
	orderings := b.Orderings()
	coords := make([]float64, 2)
	for _, c := range p.constraints {
		cols := make([][]float64, len(c.Variables))
		for k, name := range c.Variables {
			col, err := b.Column(name, reg)
			if err != nil {
				return nil, err
			}
			cols[k] = col
		}
		for i := 0; i < n; i++ {
			if !c.Scope.Applies(orderings[i]) {
				continue
			}
			pt := coords[:len(cols)]
			for k, col := range cols {
				pt[k] = col[i]
			}
			weights[i] *= c.Density(pt)
		}
	}
	return weights, nil
}
