// Package diagnostics computes per-variable summary statistics of a chain,
// reported alongside densities so users can sanity-check a release before
// reading credible intervals off it.
package diagnostics

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	"numcmc/domain/chain"
	"numcmc/ports"
)

// VariableSummary holds the marginal summary of one chain variable.
type VariableSummary struct {
	Variable string  `json:"variable"`
	Steps    int     `json:"steps"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	// NOFraction is the fraction of steps in Normal Ordering.
	NOFraction float64 `json:"no_fraction"`
}

// ChainSummary summarizes every physical variable of a chain.
type ChainSummary struct {
	Steps     int64             `json:"steps"`
	Citation  string            `json:"citation,omitempty"`
	Variables []VariableSummary `json:"variables"`
}

// Summarizer accumulates chain batches into per-variable summaries.
type Summarizer struct {
	columns map[string][]float64
	noCount int
	total   int
}

// NewSummarizer creates an empty summarizer over the physical variables.
func NewSummarizer() *Summarizer {
	return &Summarizer{columns: make(map[string][]float64, len(chain.PhysicalVariables))}
}

// Consume appends one batch's physical columns.
func (s *Summarizer) Consume(b *chain.Batch) error {
	for _, name := range chain.PhysicalVariables {
		col, err := b.Column(name, nil)
		if err != nil {
			return err
		}
		s.columns[name] = append(s.columns[name], col...)
	}
	for _, o := range b.Orderings() {
		if o == chain.NormalOrdering {
			s.noCount++
		}
	}
	s.total += b.Len()
	return nil
}

// Summary computes the final per-variable statistics.
func (s *Summarizer) Summary() (ChainSummary, error) {
	out := ChainSummary{Steps: int64(s.total)}
	noFrac := 0.0
	if s.total > 0 {
		noFrac = float64(s.noCount) / float64(s.total)
	}
	for _, name := range chain.PhysicalVariables {
		data := dropNonFinite(s.columns[name])
		vs := VariableSummary{Variable: name, Steps: len(data), NOFraction: noFrac}
		if len(data) > 0 {
			vs.Mean, _ = stats.Mean(data)
			vs.StdDev, _ = stats.StandardDeviation(data)
			vs.Min, _ = stats.Min(data)
			vs.Max, _ = stats.Max(data)
			vs.Median, _ = stats.Median(data)
			vs.Q25, _ = stats.Percentile(data, 25)
			vs.Q75, _ = stats.Percentile(data, 75)
		}
		out.Variables = append(out.Variables, vs)
	}
	return out, nil
}

// Summarize streams an entire source through a Summarizer.
func Summarize(ctx context.Context, source ports.SampleSource, batchSize int) (ChainSummary, error) {
	s := NewSummarizer()
	err := source.ForEachBatch(ctx, batchSize, 0, s.Consume)
	if err != nil {
		return ChainSummary{}, err
	}
	summary, err := s.Summary()
	if err != nil {
		return ChainSummary{}, err
	}
	meta, err := source.Meta(ctx)
	if err == nil {
		summary.Citation = meta.Citation
	}
	return summary, nil
}

func dropNonFinite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
