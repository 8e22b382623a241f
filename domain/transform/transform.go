// Package transform holds the closed catalog of coordinate transforms under
// which priors on oscillation parameters may be declared. Each entry carries
// the forward map y = f(x) and the analytic |dy/dx| needed for Jacobian
// reweighting; the catalog is fixed, so unknown tags fail at parse time.
package transform

import (
	"math"

	"numcmc/internal/errors"
)

// Kind enumerates the supported transforms.
type Kind int

const (
	Identity Kind = iota // x
	Sin                  // sin(x)
	Sin2                 // sin^2(x)
	Cos                  // cos(x)
	Cos2                 // cos^2(x)
	Cos4                 // cos^4(x)
	Double               // 2x
	SinDouble            // sin(2x)
	Sin2Double           // sin^2(2x)
	CosDouble            // cos(2x)
	Cos2Double           // cos^2(2x)
	Cos4Double           // cos^4(2x)
	ExpNegI              // exp(-ix), unit-circle embedding of a cyclic angle
	ExpPosI              // exp(ix)
	AbsI                 // |exp(ix)|, degenerate constant placeholder
)

var tags = map[string]Kind{
	"x":         Identity,
	"sin(x)":    Sin,
	"sin^2(x)":  Sin2,
	"cos(x)":    Cos,
	"cos^2(x)":  Cos2,
	"cos^4(x)":  Cos4,
	"2x":        Double,
	"sin(2x)":   SinDouble,
	"sin^2(2x)": Sin2Double,
	"cos(2x)":   CosDouble,
	"cos^2(2x)": Cos2Double,
	"cos^4(2x)": Cos4Double,
	"exp(-ix)":  ExpNegI,
	"exp(ix)":   ExpPosI,
	"abs(ix)":   AbsI,
}

var names = func() map[Kind]string {
	m := make(map[Kind]string, len(tags))
	for tag, k := range tags {
		m[k] = tag
	}
	return m
}()

// Parse resolves a metadata tag to a catalog entry.
func Parse(tag string) (Kind, error) {
	k, ok := tags[tag]
	if !ok {
		return 0, errors.Wrapf(ErrUnsupported, "transform tag %q", tag)
	}
	return k, nil
}

// ErrUnsupported is returned for tags outside the catalog.
var ErrUnsupported = errors.New(errors.CodeUnsupportedTransform, "unsupported transform")

func (k Kind) String() string {
	if tag, ok := names[k]; ok {
		return tag
	}
	return "unknown"
}

// Apply returns the transformed coordinate y = f(x).
//
// The exp(±ix) entries embed a cyclic angle on the unit circle; their
// transformed coordinate for density purposes is the angle itself, so priors
// declared "uniform in exp(-ix)" reduce to uniform in x. abs(ix) is the
// modulus of that embedding, identically 1.
func (k Kind) Apply(x float64) float64 {
	switch k {
	case Identity:
		return x
	case Sin:
		return math.Sin(x)
	case Sin2:
		s := math.Sin(x)
		return s * s
	case Cos:
		return math.Cos(x)
	case Cos2:
		c := math.Cos(x)
		return c * c
	case Cos4:
		c := math.Cos(x)
		return c * c * c * c
	case Double:
		return 2 * x
	case SinDouble:
		return math.Sin(2 * x)
	case Sin2Double:
		s := math.Sin(2 * x)
		return s * s
	case CosDouble:
		return math.Cos(2 * x)
	case Cos2Double:
		c := math.Cos(2 * x)
		return c * c
	case Cos4Double:
		c := math.Cos(2 * x)
		return c * c * c * c
	case ExpNegI, ExpPosI:
		return x
	case AbsI:
		return 1
	}
	return math.NaN()
}

// Jacobian returns |dy/dx| at x, in closed form.
func (k Kind) Jacobian(x float64) float64 {
	switch k {
	case Identity:
		return 1
	case Sin:
		return math.Abs(math.Cos(x))
	case Sin2:
		// d/dx sin^2(x) = sin(2x)
		return math.Abs(math.Sin(2 * x))
	case Cos:
		return math.Abs(math.Sin(x))
	case Cos2:
		return math.Abs(math.Sin(2 * x))
	case Cos4:
		c := math.Cos(x)
		return math.Abs(4 * c * c * c * math.Sin(x))
	case Double:
		return 2
	case SinDouble:
		return math.Abs(2 * math.Cos(2*x))
	case Sin2Double:
		return math.Abs(2 * math.Sin(4*x))
	case CosDouble:
		return math.Abs(2 * math.Sin(2*x))
	case Cos2Double:
		return math.Abs(2 * math.Sin(4*x))
	case Cos4Double:
		c := math.Cos(2 * x)
		return math.Abs(8 * c * c * c * math.Sin(2*x))
	case ExpNegI, ExpPosI:
		return 1
	case AbsI:
		return 0
	}
	return math.NaN()
}

// Degenerate reports whether the transform has an identically zero Jacobian
// and therefore cannot anchor a reweight denominator.
func (k Kind) Degenerate() bool {
	return k == AbsI
}
