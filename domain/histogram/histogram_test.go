package histogram

import (
	"math"
	"math/rand"
	"testing"

	"numcmc/domain/chain"
)

func unitWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

func TestNew1D_RejectsBadEdges(t *testing.T) {
	if _, err := New1D([]float64{0}, false); err == nil {
		t.Error("single edge should be rejected")
	}
	if _, err := New1D([]float64{0, 1, 1, 2}, false); err == nil {
		t.Error("non-increasing edges should be rejected")
	}
}

func TestLinearEdges(t *testing.T) {
	edges := LinearEdges(4, 0, 2)
	want := []float64{0, 0.5, 1, 1.5, 2}
	for i := range want {
		if math.Abs(edges[i]-want[i]) > 1e-12 {
			t.Fatalf("edge %d: got %g, want %g", i, edges[i], want[i])
		}
	}
}

func TestFill_BinRouting(t *testing.T) {
	h, err := New1D([]float64{0, 1, 2, 3}, false)
	if err != nil {
		t.Fatal(err)
	}
	xs := []float64{0, 0.5, 1, 2.999, 3, -0.1, 3.1}
	if err := h.Fill([][]float64{xs}, nil, unitWeights(len(xs))); err != nil {
		t.Fatal(err)
	}
	got := h.Weights(Combined)
	// 0 and 0.5 in bin 0; 1 in bin 1; 2.999 and the inclusive upper edge 3
	// in bin 2; two samples out of range.
	want := []float64{2, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bin %d: got %g, want %g", i, got[i], want[i])
		}
	}
	if h.Overflow(Combined) != 2 {
		t.Errorf("overflow: got %g, want 2", h.Overflow(Combined))
	}
	// Conservation: in-range plus out-of-range equals the processed total.
	if h.Total(Combined)+h.Overflow(Combined) != float64(len(xs)) {
		t.Error("weight not conserved across bins and overflow")
	}
}

// The core streaming invariant: any batch split yields identical bins.
func TestFill_BatchAssociativity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 5000
	xs := make([]float64, n)
	ws := make([]float64, n)
	ords := make([]chain.Ordering, n)
	for i := range xs {
		xs[i] = rng.Float64() * 3
		ws[i] = rng.Float64() * 2
		if rng.Intn(2) == 0 {
			ords[i] = chain.InvertedOrdering
		}
	}
	edges := LinearEdges(30, 0, 3)

	whole, _ := New1D(edges, true)
	if err := whole.Fill([][]float64{xs}, ords, ws); err != nil {
		t.Fatal(err)
	}

	for _, batchSize := range []int{1, 7, 100, 4999, 5000} {
		split, _ := New1D(edges, true)
		for lo := 0; lo < n; lo += batchSize {
			hi := lo + batchSize
			if hi > n {
				hi = n
			}
			if err := split.Fill([][]float64{xs[lo:hi]}, ords[lo:hi], ws[lo:hi]); err != nil {
				t.Fatal(err)
			}
		}
		for _, p := range []Part{PartNO, PartIO} {
			a, b := whole.Weights(p), split.Weights(p)
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("batch size %d, %s bin %d: %g != %g", batchSize, p, i, a[i], b[i])
				}
			}
			if whole.Overflow(p) != split.Overflow(p) {
				t.Fatalf("batch size %d: overflow differs", batchSize)
			}
		}
	}
}

func TestFill_OrderingSeparation(t *testing.T) {
	h, err := New1D(LinearEdges(10, 0, 1), true)
	if err != nil {
		t.Fatal(err)
	}
	xs := []float64{0.1, 0.2, 0.3, 0.4}
	ords := []chain.Ordering{chain.NormalOrdering, chain.InvertedOrdering, chain.NormalOrdering, chain.InvertedOrdering}
	if err := h.Fill([][]float64{xs}, ords, unitWeights(4)); err != nil {
		t.Fatal(err)
	}
	if h.Total(PartNO) != 2 || h.Total(PartIO) != 2 {
		t.Errorf("expected 2 per ordering, got NO=%g IO=%g", h.Total(PartNO), h.Total(PartIO))
	}
}

func TestFill_SkipsNonFiniteRows(t *testing.T) {
	h, _ := New1D(LinearEdges(4, 0, 1), false)
	xs := []float64{0.1, math.NaN(), 0.3}
	ws := []float64{1, 1, math.Inf(1)}
	if err := h.Fill([][]float64{xs}, nil, ws); err != nil {
		t.Fatal(err)
	}
	if h.Total(Combined) != 1 {
		t.Errorf("expected only the clean row binned, got %g", h.Total(Combined))
	}
	if h.Overflow(Combined) != 0 {
		t.Errorf("malformed rows are dropped, not overflow: got %g", h.Overflow(Combined))
	}
}

func TestMerge(t *testing.T) {
	edges := LinearEdges(5, 0, 1)
	a, _ := New1D(edges, false)
	b, _ := New1D(edges, false)
	if err := a.Fill([][]float64{{0.1, 0.5}}, nil, []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := b.Fill([][]float64{{0.1, 2.0}}, nil, []float64{3, 1}); err != nil {
		t.Fatal(err)
	}
	if err := a.Merge(b); err != nil {
		t.Fatal(err)
	}
	if a.Weights(Combined)[0] != 4 {
		t.Errorf("merged bin 0: got %g, want 4", a.Weights(Combined)[0])
	}
	if a.Overflow(Combined) != 1 {
		t.Errorf("merged overflow: got %g, want 1", a.Overflow(Combined))
	}

	c, _ := New1D(LinearEdges(6, 0, 1), false)
	if err := a.Merge(c); err == nil {
		t.Error("mismatched shapes should not merge")
	}
}

func TestFill2D(t *testing.T) {
	h, err := New2D(LinearEdges(2, 0, 2), LinearEdges(2, 0, 2), false)
	if err != nil {
		t.Fatal(err)
	}
	xs := []float64{0.5, 1.5, 0.5}
	ys := []float64{0.5, 1.5, 1.5}
	if err := h.Fill([][]float64{xs, ys}, nil, unitWeights(3)); err != nil {
		t.Fatal(err)
	}
	w := h.Weights(Combined)
	// Flat layout row-major over x: (0,0)=0, (0,1)=1, (1,0)=2, (1,1)=3.
	if w[0] != 1 || w[1] != 1 || w[3] != 1 || w[2] != 0 {
		t.Errorf("unexpected 2-D routing: %v", w)
	}
}

func TestFill_DimensionMismatch(t *testing.T) {
	h, _ := New1D(LinearEdges(4, 0, 1), false)
	if err := h.Fill([][]float64{{0.1}, {0.2}}, nil, []float64{1}); err == nil {
		t.Error("2 coordinate columns into a 1-D histogram should fail")
	}
	if err := h.Fill([][]float64{{0.1, 0.2}}, nil, []float64{1}); err == nil {
		t.Error("weight/row count mismatch should fail")
	}
}
