// Package ui exposes finalized densities and credible regions over HTTP for
// the plotting collaborator: JSON payloads per plot plus an HTML analysis
// report. The server reads only frozen data; it never drives a fill.
package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"numcmc/app"
	"numcmc/domain/histogram"
	"numcmc/internal"
	"numcmc/internal/diagnostics"
)

// Server serves one finalized PlotStack.
type Server struct {
	router  *gin.Engine
	stack   *app.PlotStack
	summary *diagnostics.ChainSummary
	log     *internal.Logger
}

// NewServer wires routes over a filled and finalized stack. summary may be
// nil when chain diagnostics were not computed.
func NewServer(stack *app.PlotStack, summary *diagnostics.ChainSummary) *Server {
	s := &Server{
		router:  gin.Default(),
		stack:   stack,
		summary: summary,
		log:     internal.DefaultLogger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.GET("/plots", s.handlePlotsList)
	api.GET("/plots/:id/density", s.handleDensity)
	api.GET("/plots/:id/intervals", s.handleIntervals)
	api.GET("/chain/summary", s.handleChainSummary)
	s.router.GET("/report", s.handleReport)
}

// Run starts the server on the given address.
func (s *Server) Run(addr string) error {
	s.log.Info("serving analysis results on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

type plotSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Variables []string `json:"variables"`
	Dims      int      `json:"dims"`
	Separate  bool     `json:"separate_orderings"`
	Finalized bool     `json:"finalized"`
}

func (s *Server) handlePlotsList(c *gin.Context) {
	out := make([]plotSummary, 0, len(s.stack.Plots()))
	for _, p := range s.stack.Plots() {
		out = append(out, plotSummary{
			ID:        p.ID.String(),
			Name:      p.Name,
			Variables: p.Variables,
			Dims:      p.Histogram().Dims(),
			Separate:  p.Histogram().Separate(),
			Finalized: p.Density() != nil,
		})
	}
	c.JSON(http.StatusOK, gin.H{"plots": out, "citation": s.stack.Meta().Citation})
}

func (s *Server) lookupPlot(c *gin.Context) (*app.Plot, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plot id"})
		return nil, false
	}
	p, ok := s.stack.PlotByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "plot not found"})
		return nil, false
	}
	return p, true
}

type densityPayload struct {
	Name   string               `json:"name"`
	Edges  [][]float64          `json:"edges"`
	Areas  []float64            `json:"bin_areas"`
	Values map[string][]float64 `json:"values"`
}

func (s *Server) handleDensity(c *gin.Context) {
	p, ok := s.lookupPlot(c)
	if !ok {
		return
	}
	d := p.Density()
	if d == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "plot not finalized"})
		return
	}
	payload := densityPayload{
		Name:   p.Name,
		Areas:  d.BinAreas(),
		Values: make(map[string][]float64),
	}
	for axis := 0; axis < d.Dims(); axis++ {
		payload.Edges = append(payload.Edges, d.Edges(axis))
	}
	for _, part := range d.Parts() {
		payload.Values[part.String()] = d.Values(part)
	}
	c.JSON(http.StatusOK, payload)
}

type regionPayload struct {
	Level     float64 `json:"level"`
	Part      string  `json:"partition"`
	Bins      []int   `json:"bins"`
	Threshold float64 `json:"threshold"`
	Mass      float64 `json:"mass"`
	Saturated bool    `json:"saturated"`
}

func (s *Server) handleIntervals(c *gin.Context) {
	p, ok := s.lookupPlot(c)
	if !ok {
		return
	}
	regions := p.Regions()
	if regions == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "intervals not built"})
		return
	}
	out := make([]regionPayload, len(regions))
	for i, r := range regions {
		out[i] = regionPayload{
			Level:     r.Level,
			Part:      r.Part.String(),
			Bins:      r.Bins,
			Threshold: r.Threshold,
			Mass:      r.Mass,
			Saturated: r.Saturated,
		}
	}
	c.JSON(http.StatusOK, gin.H{"name": p.Name, "regions": out})
}

func (s *Server) handleChainSummary(c *gin.Context) {
	if s.summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chain summary not computed"})
		return
	}
	c.JSON(http.StatusOK, s.summary)
}

// partsOf lists partition labels for a plot, for the report renderer.
func partsOf(d *histogram.Density) []string {
	var out []string
	for _, p := range d.Parts() {
		out = append(out, p.String())
	}
	return out
}
