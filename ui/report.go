package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// handleReport renders the analysis report as HTML from a markdown summary of
// every finalized plot.
func (s *Server) handleReport(c *gin.Context) {
	md := s.buildReportMarkdown()

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	out := markdown.ToHTML([]byte(md), p, renderer)

	c.Data(http.StatusOK, "text/html; charset=utf-8", out)
}

func (s *Server) buildReportMarkdown() string {
	var b strings.Builder
	b.WriteString("# Posterior analysis report\n\n")
	if cite := s.stack.Meta().Citation; cite != "" {
		b.WriteString("> " + cite + "\n\n")
	}

	if s.summary != nil {
		b.WriteString("## Chain summary\n\n")
		b.WriteString(fmt.Sprintf("%d steps.\n\n", s.summary.Steps))
		b.WriteString("| Variable | Mean | Std dev | Median | Q25 | Q75 |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, v := range s.summary.Variables {
			b.WriteString(fmt.Sprintf("| %s | %.6g | %.6g | %.6g | %.6g | %.6g |\n",
				v.Variable, v.Mean, v.StdDev, v.Median, v.Q25, v.Q75))
		}
		b.WriteString("\n")
	}

	for _, p := range s.stack.Plots() {
		b.WriteString("## " + p.Name + "\n\n")
		d := p.Density()
		if d == nil {
			b.WriteString("Not finalized.\n\n")
			continue
		}
		b.WriteString(fmt.Sprintf("%d-D density over %s (partitions: %s).\n\n",
			d.Dims(), strings.Join(p.Variables, ", "), strings.Join(partsOf(d), ", ")))
		if len(p.Regions()) > 0 {
			b.WriteString("| Level | Partition | Enclosed mass | Threshold | Bins | Saturated |\n")
			b.WriteString("|---|---|---|---|---|---|\n")
			for _, r := range p.Regions() {
				b.WriteString(fmt.Sprintf("| %.4f | %s | %.4f | %.6g | %d | %t |\n",
					r.Level, r.Part, r.Mass, r.Threshold, len(r.Bins), r.Saturated))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
