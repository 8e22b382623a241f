// Package histogram implements the weighted binning core: a streaming 1-D/2-D
// accumulator with optional mass-ordering partitioning, density
// normalization, and highest-posterior-density credible regions.
//
// Fill is associative and commutative over batch boundaries: any split of the
// same samples into batches produces bin-identical weights, which is what
// makes bounded-memory streaming and sharded fills safe.
package histogram

import (
	"fmt"
	"math"
	"sort"

	"numcmc/domain/chain"
)

// accumulator is one partition's bin weights plus its out-of-range total.
// Out-of-range weight is tracked, never silently lost.
type accumulator struct {
	weights  []float64
	overflow float64
}

func (a *accumulator) total() float64 {
	sum := 0.0
	for _, w := range a.weights {
		sum += w
	}
	return sum
}

// Histogram accumulates weighted samples into fixed, pre-declared bins.
// With ordering separation enabled, two independent weight arrays are kept
// and each sample routes to exactly one by the sign of Deltam2_32.
type Histogram struct {
	edges    [][]float64
	separate bool

	combined accumulator
	byOrd    [2]accumulator
}

// New1D builds a one-dimensional histogram over the given bin edges.
func New1D(edges []float64, separate bool) (*Histogram, error) {
	if err := checkEdges(edges); err != nil {
		return nil, err
	}
	return newHistogram([][]float64{edges}, separate), nil
}

// New2D builds a two-dimensional histogram over the given per-axis bin edges.
func New2D(xEdges, yEdges []float64, separate bool) (*Histogram, error) {
	if err := checkEdges(xEdges); err != nil {
		return nil, err
	}
	if err := checkEdges(yEdges); err != nil {
		return nil, err
	}
	return newHistogram([][]float64{xEdges, yEdges}, separate), nil
}

// LinearEdges returns n+1 equally spaced edges spanning [lo, hi].
func LinearEdges(n int, lo, hi float64) []float64 {
	edges := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		edges[i] = lo + (hi-lo)*float64(i)/float64(n)
	}
	return edges
}

func newHistogram(edges [][]float64, separate bool) *Histogram {
	h := &Histogram{edges: edges, separate: separate}
	n := h.binCount()
	if separate {
		h.byOrd[chain.NormalOrdering] = accumulator{weights: make([]float64, n)}
		h.byOrd[chain.InvertedOrdering] = accumulator{weights: make([]float64, n)}
	} else {
		h.combined = accumulator{weights: make([]float64, n)}
	}
	return h
}

func checkEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("need at least 2 bin edges, got %d", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return fmt.Errorf("bin edges must be strictly increasing, edge[%d]=%g edge[%d]=%g",
				i-1, edges[i-1], i, edges[i])
		}
	}
	return nil
}

// Dims returns the histogram dimensionality, 1 or 2.
func (h *Histogram) Dims() int { return len(h.edges) }

// Edges returns the bin edges for the given axis.
func (h *Histogram) Edges(axis int) []float64 { return h.edges[axis] }

// Separate reports whether the histogram partitions by mass ordering.
func (h *Histogram) Separate() bool { return h.separate }

func (h *Histogram) binCount() int {
	n := 1
	for _, e := range h.edges {
		n *= len(e) - 1
	}
	return n
}

// findBin locates x on an axis. The last bin's upper edge is inclusive, as
// in the release tooling's binning convention.
func findBin(edges []float64, x float64) (int, bool) {
	if x < edges[0] || x > edges[len(edges)-1] {
		return 0, false
	}
	if x == edges[len(edges)-1] {
		return len(edges) - 2, true
	}
	i := sort.SearchFloat64s(edges, x)
	if i > 0 && edges[i] != x {
		i--
	}
	if i > len(edges)-2 {
		i = len(edges) - 2
	}
	return i, true
}

// Fill accumulates one batch of coordinates. coords holds one slice per axis;
// weights and orderings are parallel to the coordinate rows (orderings may be
// nil when the histogram is not separated). Non-finite rows are skipped.
func (h *Histogram) Fill(coords [][]float64, orderings []chain.Ordering, weights []float64) error {
	if len(coords) != h.Dims() {
		return fmt.Errorf("got %d coordinate columns for a %d-D histogram", len(coords), h.Dims())
	}
	n := len(coords[0])
	for _, c := range coords {
		if len(c) != n {
			return fmt.Errorf("ragged coordinate columns: %d vs %d", len(c), n)
		}
	}
	if len(weights) != n {
		return fmt.Errorf("%d weights for %d rows", len(weights), n)
	}
	if h.separate && len(orderings) != n {
		return fmt.Errorf("%d ordering labels for %d rows", len(orderings), n)
	}

	for i := 0; i < n; i++ {
		w := weights[i]
		if math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		if !finiteRow(coords, i) {
			continue
		}
		acc := &h.combined
		if h.separate {
			acc = &h.byOrd[orderings[i]]
		}
		idx, ok := h.flatIndex(coords, i)
		if !ok {
			acc.overflow += w
			continue
		}
		acc.weights[idx] += w
	}
	return nil
}

func finiteRow(coords [][]float64, row int) bool {
	for _, c := range coords {
		if math.IsNaN(c[row]) || math.IsInf(c[row], 0) {
			return false
		}
	}
	return true
}

func (h *Histogram) flatIndex(coords [][]float64, row int) (int, bool) {
	i, ok := findBin(h.edges[0], coords[0][row])
	if !ok {
		return 0, false
	}
	if h.Dims() == 1 {
		return i, true
	}
	j, ok := findBin(h.edges[1], coords[1][row])
	if !ok {
		return 0, false
	}
	return i*(len(h.edges[1])-1) + j, true
}

// Merge adds another histogram's accumulated weights bin-wise. The other
// histogram must share edges and separation; used to combine per-shard fills.
func (h *Histogram) Merge(o *Histogram) error {
	if h.separate != o.separate || h.Dims() != o.Dims() {
		return fmt.Errorf("histogram shapes differ")
	}
	for axis := range h.edges {
		if len(h.edges[axis]) != len(o.edges[axis]) {
			return fmt.Errorf("histogram edges differ on axis %d", axis)
		}
		for i := range h.edges[axis] {
			if h.edges[axis][i] != o.edges[axis][i] {
				return fmt.Errorf("histogram edges differ on axis %d", axis)
			}
		}
	}
	merge := func(dst, src *accumulator) {
		for i, w := range src.weights {
			dst.weights[i] += w
		}
		dst.overflow += src.overflow
	}
	if h.separate {
		merge(&h.byOrd[chain.NormalOrdering], &o.byOrd[chain.NormalOrdering])
		merge(&h.byOrd[chain.InvertedOrdering], &o.byOrd[chain.InvertedOrdering])
	} else {
		merge(&h.combined, &o.combined)
	}
	return nil
}

// Clone returns an empty histogram with the same shape, for shard fills.
func (h *Histogram) Clone() *Histogram {
	edges := make([][]float64, len(h.edges))
	copy(edges, h.edges)
	return newHistogram(edges, h.separate)
}

// Weights returns the accumulated bin weights for a partition. Pass
// (chain.NormalOrdering, false) semantics via Part selectors below.
func (h *Histogram) Weights(p Part) []float64 {
	switch p {
	case PartNO:
		return h.byOrd[chain.NormalOrdering].weights
	case PartIO:
		return h.byOrd[chain.InvertedOrdering].weights
	}
	return h.combined.weights
}

// Overflow returns the out-of-range weight for a partition.
func (h *Histogram) Overflow(p Part) float64 {
	switch p {
	case PartNO:
		return h.byOrd[chain.NormalOrdering].overflow
	case PartIO:
		return h.byOrd[chain.InvertedOrdering].overflow
	}
	return h.combined.overflow
}

// Total returns the in-range accumulated weight for a partition.
func (h *Histogram) Total(p Part) float64 {
	switch p {
	case PartNO:
		return h.byOrd[chain.NormalOrdering].total()
	case PartIO:
		return h.byOrd[chain.InvertedOrdering].total()
	}
	return h.combined.total()
}

// Parts lists the partitions present: Combined, or PartNO and PartIO when
// ordering separation was requested.
func (h *Histogram) Parts() []Part {
	if h.separate {
		return []Part{PartNO, PartIO}
	}
	return []Part{Combined}
}

// Part selects a histogram partition.
type Part int

const (
	Combined Part = iota
	PartNO
	PartIO
)

func (p Part) String() string {
	switch p {
	case PartNO:
		return "NO"
	case PartIO:
		return "IO"
	}
	return "combined"
}

// PartOf maps a mass ordering to its partition selector.
func PartOf(o chain.Ordering) Part {
	if o == chain.InvertedOrdering {
		return PartIO
	}
	return PartNO
}
