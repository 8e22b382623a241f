package histogram

import (
	"fmt"
	"sort"
)

// CredibleRegion is the highest-posterior-density region for one requested
// probability level on one density partition: the smallest set of bins whose
// cumulative mass reaches the level. Derived, read-only once built.
type CredibleRegion struct {
	Level     float64
	Part      Part
	Bins      []int   // flat bin indices, sorted ascending
	Threshold float64 // minimum density value inside the region
	Mass      float64 // probability mass actually enclosed
	// Saturated marks a level the binned mass could not reach; the region
	// then covers every in-range bin and is reported, not failed.
	Saturated bool
}

// Contains reports whether a flat bin index lies inside the region.
func (r CredibleRegion) Contains(bin int) bool {
	i := sort.SearchInts(r.Bins, bin)
	return i < len(r.Bins) && r.Bins[i] == bin
}

// CredibleRegions builds HPD regions for each requested level on each
// partition. Levels must lie in (0,1). Bins of exactly equal density are
// included or excluded together, so the region is defined by a density
// threshold rather than by sort order.
func (d *Density) CredibleRegions(levels []float64) ([]CredibleRegion, error) {
	for _, lev := range levels {
		if !(lev > 0 && lev < 1) {
			return nil, fmt.Errorf("credible level must be in (0,1), got %g", lev)
		}
	}
	var regions []CredibleRegion
	for _, p := range d.Parts() {
		for _, lev := range levels {
			regions = append(regions, d.hpd(p, lev))
		}
	}
	return regions, nil
}

// CombinedRegion builds one HPD region at the given level over the union of
// both ordering partitions of a separated density. Each partition's density
// is halved so the union carries unit mass before thresholding.
func (d *Density) CombinedRegion(level float64) (CredibleRegion, error) {
	if !(level > 0 && level < 1) {
		return CredibleRegion{}, fmt.Errorf("credible level must be in (0,1), got %g", level)
	}
	if !d.separate {
		return d.hpd(Combined, level), nil
	}
	no, io := d.values[PartNO], d.values[PartIO]
	joint := make([]float64, len(no)+len(io))
	for i, v := range no {
		joint[i] = v / 2
	}
	for i, v := range io {
		joint[len(no)+i] = v / 2
	}
	areas := append(append([]float64{}, d.areas...), d.areas...)
	r := hpdOver(joint, areas, level)
	r.Part = Combined
	r.Level = level
	return r, nil
}

func (d *Density) hpd(p Part, level float64) CredibleRegion {
	r := hpdOver(d.values[p], d.areas, level)
	r.Part = p
	r.Level = level
	return r
}

// hpdOver is the core accumulation: bins sorted by density descending,
// density-equal bins grouped, groups added until the cumulative mass first
// reaches the level.
func hpdOver(values, areas []float64, level float64) CredibleRegion {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	var (
		bins      []int
		mass      float64
		threshold float64
	)
	for start := 0; start < len(order); {
		// Extend to the whole run of bins with exactly this density.
		v := values[order[start]]
		end := start
		for end < len(order) && values[order[end]] == v {
			end++
		}
		for _, idx := range order[start:end] {
			mass += values[idx] * areas[idx]
			bins = append(bins, idx)
		}
		threshold = v
		if mass >= level {
			sort.Ints(bins)
			return CredibleRegion{Bins: bins, Threshold: threshold, Mass: mass}
		}
		start = end
	}
	// Level unreachable from the binned mass: report everything in range.
	sort.Ints(bins)
	return CredibleRegion{Bins: bins, Threshold: threshold, Mass: mass, Saturated: true}
}
