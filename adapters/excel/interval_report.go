// Package excel writes credible-interval report workbooks: one sheet per
// plot with the normalized density and the HPD region membership per bin.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"numcmc/domain/histogram"
	"numcmc/internal/errors"
	"numcmc/ports"
)

// IntervalReportWriter implements ports.IntervalExporter over an xlsx file.
type IntervalReportWriter struct {
	filePath string
}

// NewIntervalReportWriter creates a writer targeting the given path.
func NewIntervalReportWriter(filePath string) *IntervalReportWriter {
	return &IntervalReportWriter{filePath: filePath}
}

// Export writes one sheet per finalized plot plus a summary sheet.
func (w *IntervalReportWriter) Export(ctx context.Context, results []ports.PlotResult) error {
	if len(results) == 0 {
		return errors.InvalidInput("no finalized plots to export")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummary(f, results); err != nil {
		return err
	}
	for i, res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writePlot(f, i, res); err != nil {
			return errors.Wrapf(err, "plot %s", res.Name)
		}
	}
	if err := f.SaveAs(w.filePath); err != nil {
		return errors.Wrap(err, "saving interval report")
	}
	return nil
}

func (w *IntervalReportWriter) writeSummary(f *excelize.File, results []ports.PlotResult) error {
	const sheet = "Sheet1"
	f.SetCellValue(sheet, "A1", "Plot")
	f.SetCellValue(sheet, "B1", "Variables")
	f.SetCellValue(sheet, "C1", "Level")
	f.SetCellValue(sheet, "D1", "Partition")
	f.SetCellValue(sheet, "E1", "Enclosed mass")
	f.SetCellValue(sheet, "F1", "Density threshold")
	f.SetCellValue(sheet, "G1", "Saturated")
	f.SetCellValue(sheet, "H1", "Citation")

	row := 2
	for _, res := range results {
		for _, r := range res.Regions {
			f.SetCellValue(sheet, cell("A", row), res.Name)
			f.SetCellValue(sheet, cell("B", row), fmt.Sprintf("%v", res.Variables))
			f.SetCellValue(sheet, cell("C", row), r.Level)
			f.SetCellValue(sheet, cell("D", row), r.Part.String())
			f.SetCellValue(sheet, cell("E", row), r.Mass)
			f.SetCellValue(sheet, cell("F", row), r.Threshold)
			f.SetCellValue(sheet, cell("G", row), r.Saturated)
			f.SetCellValue(sheet, cell("H", row), res.Citation)
			row++
		}
	}
	return nil
}

func (w *IntervalReportWriter) writePlot(f *excelize.File, index int, res ports.PlotResult) error {
	sheet := fmt.Sprintf("plot_%d", index+1)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	d := res.Density
	f.SetCellValue(sheet, "A1", "bin")
	f.SetCellValue(sheet, "B1", "low")
	f.SetCellValue(sheet, "C1", "high")
	col := 'D'
	for _, p := range d.Parts() {
		f.SetCellValue(sheet, cell(string(col), 1), "density "+p.String())
		col++
	}
	for _, p := range d.Parts() {
		f.SetCellValue(sheet, cell(string(col), 1), "tightest level "+p.String())
		col++
	}

	// 2-D sheets list flat bins with both axis ranges.
	if d.Dims() == 2 {
		return w.writePlot2D(f, sheet, res)
	}

	edges := d.Edges(0)
	for i := 0; i < len(edges)-1; i++ {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), i)
		f.SetCellValue(sheet, cell("B", row), edges[i])
		f.SetCellValue(sheet, cell("C", row), edges[i+1])
		col = 'D'
		for _, p := range d.Parts() {
			f.SetCellValue(sheet, cell(string(col), row), d.Values(p)[i])
			col++
		}
		for _, p := range d.Parts() {
			f.SetCellValue(sheet, cell(string(col), row), regionColumn(res.Regions, p, i))
			col++
		}
	}
	return nil
}

func (w *IntervalReportWriter) writePlot2D(f *excelize.File, sheet string, res ports.PlotResult) error {
	d := res.Density
	xe, ye := d.Edges(0), d.Edges(1)
	ny := len(ye) - 1
	f.SetCellValue(sheet, "B1", "x range")
	f.SetCellValue(sheet, "C1", "y range")
	for i := 0; i < len(xe)-1; i++ {
		for j := 0; j < ny; j++ {
			bin := i*ny + j
			row := bin + 2
			f.SetCellValue(sheet, cell("A", row), bin)
			f.SetCellValue(sheet, cell("B", row), fmt.Sprintf("[%g, %g]", xe[i], xe[i+1]))
			f.SetCellValue(sheet, cell("C", row), fmt.Sprintf("[%g, %g]", ye[j], ye[j+1]))
			col := 'D'
			for _, p := range d.Parts() {
				f.SetCellValue(sheet, cell(string(col), row), d.Values(p)[bin])
				col++
			}
			for _, p := range d.Parts() {
				f.SetCellValue(sheet, cell(string(col), row), regionColumn(res.Regions, p, bin))
				col++
			}
		}
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// regionColumn marks bins by the tightest region containing them, used by the
// per-plot sheets when regions are present.
func regionColumn(regions []histogram.CredibleRegion, part histogram.Part, bin int) float64 {
	best := 0.0
	found := false
	for _, r := range regions {
		if r.Part != part || !r.Contains(bin) {
			continue
		}
		if !found || r.Level < best {
			best = r.Level
			found = true
		}
	}
	if !found {
		return 1
	}
	return best
}
