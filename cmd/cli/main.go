// Fills the default plot set from a stored chain and writes the
// credible-interval workbook.
package main

import (
	"context"
	"log"
	"math"

	"github.com/joho/godotenv"

	"numcmc/adapters/excel"
	"numcmc/adapters/postgres"
	"numcmc/app"
	"numcmc/domain/chain"
	"numcmc/domain/prior"
	"numcmc/domain/transform"
	"numcmc/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		log.Fatalf("chain store: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	source := postgres.NewChainRepository(db, "default")

	stack, err := app.NewPlotStack(ctx, source, chain.NewRegistry(),
		app.WithBatchSize(cfg.Fill.BatchSize),
		app.WithShards(cfg.Fill.Shards),
	)
	if err != nil {
		log.Fatalf("plot stack: %v", err)
	}

	// Theta23 marginal under the chain's own prior, and again reweighted to
	// a prior flat in sin^2(Theta23).
	if _, err := stack.AddPlot(app.PlotRequest{
		Name:              "Theta23",
		Axes:              []app.AxisSpec{{Variable: chain.VarTheta23, Bins: 50, Min: 0, Max: math.Pi / 2}},
		SeparateOrderings: true,
	}); err != nil {
		log.Fatalf("plot: %v", err)
	}
	if _, err := stack.AddPlot(app.PlotRequest{
		Name:           "Theta23 (flat in sin^2)",
		Axes:           []app.AxisSpec{{Variable: chain.VarTheta23, Bins: 50, Min: 0, Max: math.Pi / 2}},
		PriorOverrides: []prior.Spec{prior.NewUniform(chain.VarTheta23, transform.Sin2)},
	}); err != nil {
		log.Fatalf("plot: %v", err)
	}

	if err := stack.FillPlots(ctx, cfg.Fill.MaxSteps); err != nil {
		log.Fatalf("fill: %v", err)
	}
	if err := stack.MakeIntervals([]float64{0.6827, 0.9545}); err != nil {
		log.Fatalf("intervals: %v", err)
	}

	writer := excel.NewIntervalReportWriter(cfg.Report.ExcelFile)
	if err := writer.Export(ctx, stack.Results()); err != nil {
		log.Fatalf("export: %v", err)
	}
	log.Printf("wrote %s", cfg.Report.ExcelFile)
}
