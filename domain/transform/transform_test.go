package transform

import (
	"errors"
	"math"
	"testing"

	apperrors "numcmc/internal/errors"
)

func TestParse_KnownTags(t *testing.T) {
	cases := map[string]Kind{
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
	for tag, want := range cases {
		got, err := Parse(tag)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tag, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", tag, got, want)
		}
		if got.String() != tag {
			t.Errorf("Kind %v round-trips to %q, want %q", got, got.String(), tag)
		}
	}
}

func TestParse_UnknownTag(t *testing.T) {
	_, err := Parse("tan(x)")
	if err == nil {
		t.Fatal("expected error for unlisted transform")
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if apperrors.GetCode(err) != apperrors.CodeUnsupportedTransform {
		t.Errorf("expected code %s, got %s", apperrors.CodeUnsupportedTransform, apperrors.GetCode(err))
	}
}

// Jacobians must match the numeric derivative of Apply everywhere the
// forward map is smooth.
func TestJacobian_MatchesNumericDerivative(t *testing.T) {
	kinds := []Kind{Identity, Sin, Sin2, Cos, Cos2, Cos4, Double, SinDouble, Sin2Double, CosDouble, Cos2Double, Cos4Double}
	const h = 1e-6
	for _, k := range kinds {
		for x := 0.05; x < 1.5; x += 0.07 {
			numeric := math.Abs((k.Apply(x+h) - k.Apply(x-h)) / (2 * h))
			analytic := k.Jacobian(x)
			if math.Abs(numeric-analytic) > 1e-5*(1+analytic) {
				t.Errorf("%v: Jacobian(%g) = %g, numeric %g", k, x, analytic, numeric)
			}
		}
	}
}

func TestJacobian_Sin2IsSinOfDoubleAngle(t *testing.T) {
	for x := 0.0; x <= math.Pi/2; x += 0.01 {
		want := math.Abs(math.Sin(2 * x))
		got := Sin2.Jacobian(x)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("Sin2.Jacobian(%g) = %g, want %g", x, got, want)
		}
	}
}

func TestUnitCircleTags(t *testing.T) {
	if ExpNegI.Apply(1.3) != 1.3 || ExpNegI.Jacobian(1.3) != 1 {
		t.Error("exp(-ix) should preserve the angle with unit Jacobian")
	}
	if ExpPosI.Apply(-0.4) != -0.4 || ExpPosI.Jacobian(-0.4) != 1 {
		t.Error("exp(ix) should preserve the angle with unit Jacobian")
	}
	if AbsI.Apply(2.2) != 1 || AbsI.Jacobian(2.2) != 0 {
		t.Error("abs(ix) should be constant with zero Jacobian")
	}
	if !AbsI.Degenerate() {
		t.Error("abs(ix) should report as degenerate")
	}
	if Sin2.Degenerate() {
		t.Error("sin^2(x) should not report as degenerate")
	}
}
