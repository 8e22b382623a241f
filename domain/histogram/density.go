package histogram

import (
	"numcmc/internal/errors"
)

// ErrEmpty is returned when normalizing an accumulator with zero total
// weight.
var ErrEmpty = errors.New(errors.CodeEmptyHistogram, "cannot normalize an empty histogram")

// Density is a frozen probability density built from an accumulated
// histogram: bin values divided by (total weight x bin area), so the density
// integrates to 1 per partition. Read-only once built.
type Density struct {
	edges    [][]float64
	areas    []float64
	separate bool

	values map[Part][]float64
}

// Normalize converts the accumulated weights into a Density. Each partition
// is normalized independently against its own in-range total, so a separated
// histogram yields one unit-integral density per mass ordering. The input
// histogram is not mutated and stays fillable.
func (h *Histogram) Normalize() (*Density, error) {
	areas := binAreas(h.edges)
	d := &Density{
		edges:    h.edges,
		areas:    areas,
		separate: h.separate,
		values:   make(map[Part][]float64, 2),
	}
	for _, p := range h.Parts() {
		weights := h.Weights(p)
		total := h.Total(p)
		if total == 0 {
			return nil, errors.Wrapf(ErrEmpty, "partition %s", p)
		}
		values := make([]float64, len(weights))
		for i, w := range weights {
			values[i] = w / (total * areas[i])
		}
		d.values[p] = values
	}
	return d, nil
}

// binAreas returns the per-bin width (1-D) or area (2-D), flattened row-major
// over the first axis.
func binAreas(edges [][]float64) []float64 {
	if len(edges) == 1 {
		areas := make([]float64, len(edges[0])-1)
		for i := range areas {
			areas[i] = edges[0][i+1] - edges[0][i]
		}
		return areas
	}
	nx, ny := len(edges[0])-1, len(edges[1])-1
	areas := make([]float64, nx*ny)
	for i := 0; i < nx; i++ {
		dx := edges[0][i+1] - edges[0][i]
		for j := 0; j < ny; j++ {
			areas[i*ny+j] = dx * (edges[1][j+1] - edges[1][j])
		}
	}
	return areas
}

// Dims returns the density dimensionality.
func (d *Density) Dims() int { return len(d.edges) }

// Edges returns the bin edges for the given axis.
func (d *Density) Edges(axis int) []float64 { return d.edges[axis] }

// Separate reports whether the density is partitioned by mass ordering.
func (d *Density) Separate() bool { return d.separate }

// Parts lists the partitions present.
func (d *Density) Parts() []Part {
	if d.separate {
		return []Part{PartNO, PartIO}
	}
	return []Part{Combined}
}

// Values returns the density values for a partition, flattened row-major.
func (d *Density) Values(p Part) []float64 { return d.values[p] }

// BinAreas returns the per-bin widths/areas, flattened row-major.
func (d *Density) BinAreas() []float64 { return d.areas }

// Integral returns the total probability mass of a partition, 1 within
// floating tolerance by construction.
func (d *Density) Integral(p Part) float64 {
	sum := 0.0
	for i, v := range d.values[p] {
		sum += v * d.areas[i]
	}
	return sum
}
