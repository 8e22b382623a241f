// Package prior models the prior families a chain's parameters were sampled
// under, and the replacement priors users may request at plot time. A prior
// is a density over a transformed coordinate y = f(x); evaluating it at the
// physical value x folds in the transform's Jacobian so densities from
// different coordinates are directly comparable.
package prior

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"numcmc/domain/transform"
	"numcmc/internal/errors"
)

// Family enumerates the supported prior families.
type Family int

const (
	Uniform Family = iota
	Gaussian
	BimodalGaussian
	Step
)

var familyNames = map[Family]string{
	Uniform:         "Uniform",
	Gaussian:        "Gaussian",
	BimodalGaussian: "BimodalGaussian",
	Step:            "Step",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "unknown"
}

// ErrInvalidParameters is returned for malformed family arguments, detected
// eagerly at construction rather than at evaluation.
var ErrInvalidParameters = errors.New(errors.CodeInvalidPriorParameters, "invalid prior parameters")

// Spec binds a prior family to a variable and the transform under which the
// family is defined. One Spec exists per physical variable per chain;
// replacements may be supplied at plot creation for a single variable.
type Spec struct {
	Variable  string
	Family    Family
	Transform transform.Kind

	// Gaussian / BimodalGaussian parameters. The second mode and the bias
	// fraction are only meaningful for BimodalGaussian and Step.
	mode1 distuv.Normal
	mode2 distuv.Normal

	// bias is the Step / BimodalGaussian bias fraction, normalized to [0,1].
	bias     float64
	boundary float64
}

// NewUniform declares a prior flat in the transformed coordinate.
func NewUniform(variable string, t transform.Kind) Spec {
	return Spec{Variable: variable, Family: Uniform, Transform: t}
}

// NewGaussian declares a Gaussian prior on the transformed coordinate.
func NewGaussian(variable string, t transform.Kind, mean, sigma float64) (Spec, error) {
	if sigma <= 0 {
		return Spec{}, errors.Wrapf(ErrInvalidParameters, "gaussian sigma must be > 0, got %g", sigma)
	}
	return Spec{
		Variable:  variable,
		Family:    Gaussian,
		Transform: t,
		mode1:     distuv.Normal{Mu: mean, Sigma: sigma},
	}, nil
}

// NewBimodalGaussian declares a two-mode Gaussian mixture prior. The bias
// fraction is the percentage of mass in the first mode, default 50.
func NewBimodalGaussian(variable string, t transform.Kind, mean1, sigma1, mean2, sigma2, biasPct float64) (Spec, error) {
	if sigma1 <= 0 || sigma2 <= 0 {
		return Spec{}, errors.Wrapf(ErrInvalidParameters, "bimodal sigmas must be > 0, got %g and %g", sigma1, sigma2)
	}
	if biasPct < 0 || biasPct > 100 {
		return Spec{}, errors.Wrapf(ErrInvalidParameters, "bias fraction must be in [0,100], got %g", biasPct)
	}
	return Spec{
		Variable:  variable,
		Family:    BimodalGaussian,
		Transform: t,
		mode1:     distuv.Normal{Mu: mean1, Sigma: sigma1},
		mode2:     distuv.Normal{Mu: mean2, Sigma: sigma2},
		bias:      biasPct / 100,
	}, nil
}

// NewStep declares a biased step prior: mass fraction bias% below the
// boundary in the transformed coordinate, the remainder above. The boundary
// defaults to 0.
func NewStep(variable string, t transform.Kind, biasPct, boundary float64) (Spec, error) {
	if biasPct < 0 || biasPct > 100 {
		return Spec{}, errors.Wrapf(ErrInvalidParameters, "bias fraction must be in [0,100], got %g", biasPct)
	}
	return Spec{
		Variable:  variable,
		Family:    Step,
		Transform: t,
		bias:      biasPct / 100,
		boundary:  boundary,
	}, nil
}

// Density evaluates the unnormalized prior density at the physical value x:
// the family's density at y = f(x) times |dy/dx|.
func (s Spec) Density(x float64) float64 {
	jac := s.Transform.Jacobian(x)
	if jac == 0 {
		return 0
	}
	y := s.Transform.Apply(x)
	switch s.Family {
	case Uniform:
		return jac
	case Gaussian:
		return jac * s.mode1.Prob(y)
	case BimodalGaussian:
		return jac * (s.bias*s.mode1.Prob(y) + (1-s.bias)*s.mode2.Prob(y))
	case Step:
		if y < s.boundary {
			return jac * s.bias
		}
		return jac * (1 - s.bias)
	}
	return 0
}

// Equal reports whether two specs describe the same prior on the same
// variable. Equal specs reweight to unit weights by construction.
func (s Spec) Equal(o Spec) bool {
	return s.Variable == o.Variable &&
		s.Family == o.Family &&
		s.Transform == o.Transform &&
		s.mode1 == o.mode1 &&
		s.mode2 == o.mode2 &&
		s.bias == o.bias &&
		s.boundary == o.boundary
}

func (s Spec) String() string {
	return fmt.Sprintf("%s:%s on %s", s.Family, s.Transform, s.Variable)
}

// ParseTag parses the "Family:transform" metadata format chains declare their
// priors in, e.g. "Uniform:sin^2(x)". Parametric families append their
// arguments after the transform: "Gaussian:x:0.5:0.1",
// "BimodalGaussian:x:m1:s1:m2:s2[:bias]", "Step:x:bias[:boundary]".
func ParseTag(variable, tag string) (Spec, error) {
	parts := strings.Split(tag, ":")
	if len(parts) < 2 {
		return Spec{}, errors.Wrapf(ErrInvalidParameters, "prior tag %q must be Family:transform", tag)
	}
	t, err := transform.Parse(parts[1])
	if err != nil {
		return Spec{}, err
	}
	args, err := parseArgs(parts[2:])
	if err != nil {
		return Spec{}, errors.Wrapf(ErrInvalidParameters, "prior tag %q", tag)
	}
	switch parts[0] {
	case "Uniform":
		if len(args) != 0 {
			return Spec{}, errors.Wrapf(ErrInvalidParameters, "Uniform takes no parameters, got %d", len(args))
		}
		return NewUniform(variable, t), nil
	case "Gaussian":
		if len(args) != 2 {
			return Spec{}, errors.Wrapf(ErrInvalidParameters, "Gaussian needs mean and sigma, got %d parameters", len(args))
		}
		return NewGaussian(variable, t, args[0], args[1])
	case "BimodalGaussian":
		switch len(args) {
		case 4:
			return NewBimodalGaussian(variable, t, args[0], args[1], args[2], args[3], 50)
		case 5:
			return NewBimodalGaussian(variable, t, args[0], args[1], args[2], args[3], args[4])
		default:
			return Spec{}, errors.Wrapf(ErrInvalidParameters, "BimodalGaussian needs two mean/sigma pairs plus optional bias, got %d parameters", len(args))
		}
	case "Step":
		switch len(args) {
		case 1:
			return NewStep(variable, t, args[0], 0)
		case 2:
			return NewStep(variable, t, args[0], args[1])
		default:
			return Spec{}, errors.Wrapf(ErrInvalidParameters, "Step needs bias plus optional boundary, got %d parameters", len(args))
		}
	}
	return Spec{}, errors.Wrapf(ErrInvalidParameters, "unknown prior family %q", parts[0])
}

func parseArgs(parts []string) ([]float64, error) {
	args := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q is not numeric", p)
		}
		args[i] = v
	}
	return args, nil
}
