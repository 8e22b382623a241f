package histogram

import (
	"errors"
	"math"
	"testing"

	"numcmc/domain/chain"
	apperrors "numcmc/internal/errors"
)

func TestNormalize_UnitIntegral(t *testing.T) {
	h, _ := New1D([]float64{0, 0.5, 2, 3}, false)
	xs := []float64{0.2, 0.7, 0.7, 2.5}
	ws := []float64{1, 2, 3, 4}
	if err := h.Fill([][]float64{xs}, nil, ws); err != nil {
		t.Fatal(err)
	}
	d, err := h.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Integral(Combined); math.Abs(got-1) > 1e-12 {
		t.Errorf("integral: got %g, want 1", got)
	}
	// Uneven bin widths: density is weight / (total * width).
	want := 1.0 / (10 * 0.5)
	if got := d.Values(Combined)[0]; math.Abs(got-want) > 1e-12 {
		t.Errorf("bin 0 density: got %g, want %g", got, want)
	}
}

func TestNormalize_PerOrdering(t *testing.T) {
	h, _ := New1D(LinearEdges(4, 0, 1), true)
	xs := []float64{0.1, 0.3, 0.6}
	ords := []chain.Ordering{chain.NormalOrdering, chain.NormalOrdering, chain.InvertedOrdering}
	if err := h.Fill([][]float64{xs}, ords, []float64{1, 1, 5}); err != nil {
		t.Fatal(err)
	}
	d, err := h.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	// Each ordering normalizes against its own total, not the grand total.
	for _, p := range []Part{PartNO, PartIO} {
		if got := d.Integral(p); math.Abs(got-1) > 1e-12 {
			t.Errorf("%s integral: got %g, want 1", p, got)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	h, _ := New1D(LinearEdges(4, 0, 1), false)
	_, err := h.Normalize()
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if apperrors.GetCode(err) != apperrors.CodeEmptyHistogram {
		t.Errorf("wrong code: %s", apperrors.GetCode(err))
	}
}

func TestNormalize_EmptyPartition(t *testing.T) {
	h, _ := New1D(LinearEdges(4, 0, 1), true)
	ords := []chain.Ordering{chain.NormalOrdering}
	if err := h.Fill([][]float64{{0.1}}, ords, []float64{1}); err != nil {
		t.Fatal(err)
	}
	// The IO partition saw no weight, the whole normalization fails.
	if _, err := h.Normalize(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty for the empty partition, got %v", err)
	}
}

func TestNormalize_2DAreas(t *testing.T) {
	h, _ := New2D([]float64{0, 1, 3}, []float64{0, 2}, false)
	if err := h.Fill([][]float64{{0.5, 2}, {1, 1}}, nil, []float64{1, 1}); err != nil {
		t.Fatal(err)
	}
	d, err := h.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	areas := d.BinAreas()
	if areas[0] != 2 || areas[1] != 4 {
		t.Fatalf("bin areas: got %v, want [2 4]", areas)
	}
	if got := d.Integral(Combined); math.Abs(got-1) > 1e-12 {
		t.Errorf("2-D integral: got %g, want 1", got)
	}
}
