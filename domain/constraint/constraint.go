// Package constraint carries externally supplied density constraints that
// multiply into sample weights: 1-D or 2-D tabulated grids (as extracted from
// experiment release files) or parametric functions, each scoped to a mass
// ordering. Grid lookups interpolate linearly and evaluate to 0 outside the
// grid, matching the release tooling this data comes from.
package constraint

import (
	"fmt"
	"sort"

	"numcmc/domain/chain"
)

// Scope restricts a constraint to one mass ordering, or applies it to both.
type Scope int

const (
	BothOrderings Scope = iota
	NormalOnly
	InvertedOnly
)

func (s Scope) String() string {
	switch s {
	case NormalOnly:
		return "NO"
	case InvertedOnly:
		return "IO"
	}
	return "both"
}

// Applies reports whether the scope covers the given ordering.
func (s Scope) Applies(o chain.Ordering) bool {
	switch s {
	case NormalOnly:
		return o == chain.NormalOrdering
	case InvertedOnly:
		return o == chain.InvertedOrdering
	}
	return true
}

// DensityFunc is a parametric constraint density over one or two coordinates.
type DensityFunc func(coords []float64) float64

// Spec is an external constraint: a density over one or two named variables,
// an applicability scope, and whether it attaches automatically to any plot
// over its variables. Specs are read-only once built.
type Spec struct {
	Name      string
	Variables []string
	Scope     Scope
	AutoApply bool

	grid *grid
	fn   DensityFunc
}

// NewParametric builds a constraint from a density function.
func NewParametric(name string, variables []string, scope Scope, autoApply bool, fn DensityFunc) (*Spec, error) {
	if err := checkDims(variables); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("constraint %q: density function must not be nil", name)
	}
	return &Spec{Name: name, Variables: variables, Scope: scope, AutoApply: autoApply, fn: fn}, nil
}

// NewGrid builds a constraint from tabulated values. points holds one
// strictly increasing coordinate slice per variable; values is row-major over
// the first axis and must have len(points[0])*len(points[1]) entries (or
// len(points[0]) in 1-D).
func NewGrid(name string, variables []string, scope Scope, autoApply bool, points [][]float64, values []float64) (*Spec, error) {
	if err := checkDims(variables); err != nil {
		return nil, err
	}
	if len(points) != len(variables) {
		return nil, fmt.Errorf("constraint %q: %d coordinate axes for %d variables", name, len(points), len(variables))
	}
	want := 1
	for i, axis := range points {
		if len(axis) < 2 {
			return nil, fmt.Errorf("constraint %q: axis %d needs at least 2 points", name, i)
		}
		if !sort.Float64sAreSorted(axis) {
			return nil, fmt.Errorf("constraint %q: axis %d is not increasing", name, i)
		}
		want *= len(axis)
	}
	if len(values) != want {
		return nil, fmt.Errorf("constraint %q: %d values for a %d-point grid", name, len(values), want)
	}
	return &Spec{
		Name:      name,
		Variables: variables,
		Scope:     scope,
		AutoApply: autoApply,
		grid:      &grid{points: points, values: values},
	}, nil
}

func checkDims(variables []string) error {
	if len(variables) == 0 || len(variables) > 2 {
		return fmt.Errorf("constraints support 1 or 2 variables, got %d", len(variables))
	}
	return nil
}

// Density evaluates the constraint at the given coordinates, one per
// constrained variable in declaration order.
func (s *Spec) Density(coords []float64) float64 {
	if len(coords) != len(s.Variables) {
		return 0
	}
	if s.fn != nil {
		return s.fn(coords)
	}
	return s.grid.at(coords)
}

// Covers reports whether the constraint's variables are all among names, so
// auto-apply can decide which plots it attaches to.
func (s *Spec) Covers(names []string) bool {
	for _, v := range s.Variables {
		found := false
		for _, n := range names {
			if n == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// grid is the tabulated form. Lookups are multilinear with fill value 0
// outside the tabulated range.
type grid struct {
	points [][]float64
	values []float64
}

func (g *grid) at(coords []float64) float64 {
	if len(g.points) == 1 {
		return g.interp1d(coords[0])
	}
	return g.interp2d(coords[0], coords[1])
}

// segment locates the cell containing x on an axis and the interpolation
// fraction within it. ok is false outside the axis range.
func segment(axis []float64, x float64) (i int, frac float64, ok bool) {
	if x < axis[0] || x > axis[len(axis)-1] {
		return 0, 0, false
	}
	i = sort.SearchFloat64s(axis, x)
	if i > 0 {
		i--
	}
	if i == len(axis)-1 {
		i--
	}
	frac = (x - axis[i]) / (axis[i+1] - axis[i])
	return i, frac, true
}

func (g *grid) interp1d(x float64) float64 {
	axis := g.points[0]
	i, t, ok := segment(axis, x)
	if !ok {
		return 0
	}
	return g.values[i]*(1-t) + g.values[i+1]*t
}

func (g *grid) interp2d(x, y float64) float64 {
	ax, ay := g.points[0], g.points[1]
	i, tx, ok := segment(ax, x)
	if !ok {
		return 0
	}
	j, ty, ok := segment(ay, y)
	if !ok {
		return 0
	}
	ny := len(ay)
	v00 := g.values[i*ny+j]
	v01 := g.values[i*ny+j+1]
	v10 := g.values[(i+1)*ny+j]
	v11 := g.values[(i+1)*ny+j+1]
	return v00*(1-tx)*(1-ty) + v10*tx*(1-ty) + v01*(1-tx)*ty + v11*tx*ty
}
