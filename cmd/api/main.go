// Serves analysis results for a stored chain over HTTP: fills a default plot
// set from Postgres, builds intervals, then exposes densities, regions and
// the report.
package main

import (
	"context"
	"log"
	"math"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"numcmc/adapters/postgres"
	"numcmc/app"
	"numcmc/domain/chain"
	"numcmc/internal/config"
	"numcmc/internal/diagnostics"
	"numcmc/ui"
)

func main() {
	// Optional .env, matching local dev setups.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

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

	for _, v := range []string{chain.VarTheta23, chain.VarDeltaCP} {
		_, err := stack.AddPlot(app.PlotRequest{
			Name:              v,
			Axes:              []app.AxisSpec{axisFor(v)},
			SeparateOrderings: true,
		})
		if err != nil {
			log.Fatalf("plot %s: %v", v, err)
		}
	}

	if err := stack.FillPlots(ctx, cfg.Fill.MaxSteps); err != nil {
		log.Fatalf("fill: %v", err)
	}
	if err := stack.MakeIntervals([]float64{0.6827, 0.9545}); err != nil {
		log.Fatalf("intervals: %v", err)
	}

	summary, err := diagnostics.Summarize(ctx, source, cfg.Fill.BatchSize)
	if err != nil {
		log.Fatalf("chain summary: %v", err)
	}

	server := ui.NewServer(stack, &summary)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func axisFor(variable string) app.AxisSpec {
	if variable == chain.VarDeltaCP {
		return app.AxisSpec{Variable: variable, Bins: 50, Min: -math.Pi, Max: math.Pi}
	}
	return app.AxisSpec{Variable: variable, Bins: 50, Min: 0, Max: math.Pi / 2}
}
