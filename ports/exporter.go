package ports

import (
	"context"

	"numcmc/domain/histogram"
)

// PlotResult is one finalized plot handed to a report sink: its density and
// any credible regions built on it.
type PlotResult struct {
	Name      string
	Variables []string
	Density   *histogram.Density
	Regions   []histogram.CredibleRegion
	Citation  string
}

// IntervalExporter writes finalized densities and credible regions to an
// external report (spreadsheet, API payload, figure).
type IntervalExporter interface {
	Export(ctx context.Context, results []PlotResult) error
}
