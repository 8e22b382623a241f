package constraint

import (
	"math"
	"testing"

	"numcmc/domain/chain"
)

func TestScope_Applies(t *testing.T) {
	if !BothOrderings.Applies(chain.NormalOrdering) || !BothOrderings.Applies(chain.InvertedOrdering) {
		t.Error("BothOrderings should cover both labels")
	}
	if !NormalOnly.Applies(chain.NormalOrdering) || NormalOnly.Applies(chain.InvertedOrdering) {
		t.Error("NormalOnly misclassifies")
	}
	if InvertedOnly.Applies(chain.NormalOrdering) || !InvertedOnly.Applies(chain.InvertedOrdering) {
		t.Error("InvertedOnly misclassifies")
	}
}

func TestNewGrid_Validation(t *testing.T) {
	if _, err := NewGrid("c", []string{"a", "b", "c"}, BothOrderings, false, nil, nil); err == nil {
		t.Error("3 variables should be rejected")
	}
	if _, err := NewGrid("c", []string{"a"}, BothOrderings, false, [][]float64{{0, 1}}, []float64{1}); err == nil {
		t.Error("value count mismatch should be rejected")
	}
	if _, err := NewGrid("c", []string{"a"}, BothOrderings, false, [][]float64{{1, 0}}, []float64{1, 2}); err == nil {
		t.Error("non-increasing axis should be rejected")
	}
}

func TestGrid1D_Interpolation(t *testing.T) {
	spec, err := NewGrid("c", []string{"Theta23"}, BothOrderings, true,
		[][]float64{{0, 1, 2}}, []float64{0, 10, 0})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct{ x, want float64 }{
		{0, 0}, {0.5, 5}, {1, 10}, {1.5, 5}, {2, 0},
		{-0.1, 0}, {2.1, 0}, // outside the grid evaluates to 0
	}
	for _, c := range cases {
		if got := spec.Density([]float64{c.x}); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Density(%g) = %g, want %g", c.x, got, c.want)
		}
	}
}

func TestGrid2D_Bilinear(t *testing.T) {
	// Values laid out row-major over x: f(x,y) = x + y on the corners.
	spec, err := NewGrid("c", []string{"a", "b"}, BothOrderings, false,
		[][]float64{{0, 1}, {0, 1}}, []float64{0, 1, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct{ x, y, want float64 }{
		{0, 0, 0}, {1, 1, 2}, {0.5, 0.5, 1}, {0.25, 0.75, 1},
		{1.5, 0.5, 0},
	}
	for _, c := range cases {
		if got := spec.Density([]float64{c.x, c.y}); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Density(%g, %g) = %g, want %g", c.x, c.y, got, c.want)
		}
	}
}

func TestParametric(t *testing.T) {
	spec, err := NewParametric("c", []string{"DeltaCP"}, NormalOnly, false, func(coords []float64) float64 {
		return 1 + math.Cos(coords[0])
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := spec.Density([]float64{0}); math.Abs(got-2) > 1e-12 {
		t.Errorf("got %g, want 2", got)
	}
	if _, err := NewParametric("c", []string{"DeltaCP"}, NormalOnly, false, nil); err == nil {
		t.Error("nil density function should be rejected")
	}
}

func TestCovers(t *testing.T) {
	spec, err := NewGrid("c", []string{"Theta23", "Deltam2_32"}, BothOrderings, true,
		[][]float64{{0, 1}, {0, 1}}, []float64{1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if !spec.Covers([]string{"Deltam2_32", "Theta23"}) {
		t.Error("should cover a plot over both variables")
	}
	if spec.Covers([]string{"Theta23"}) {
		t.Error("should not cover a plot missing one variable")
	}
}
