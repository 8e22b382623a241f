// Package ports defines the interfaces between the analysis core and its
// external collaborators: chain storage and report sinks. The core never
// touches file formats or rendering directly.
package ports

import (
	"context"

	"numcmc/domain/chain"
	"numcmc/domain/constraint"
	"numcmc/domain/prior"
)

// ChainMeta is the chain-level metadata a source supplies alongside samples.
type ChainMeta struct {
	// Priors holds the original prior per physical variable, keyed by name.
	Priors map[string]prior.Spec
	// Constraints are external densities shipped with the chain.
	Constraints []*constraint.Spec
	// Citation is free text passed through to reports, never interpreted.
	Citation string
}

// SampleSource provides read-only access to one pre-generated MCMC chain.
type SampleSource interface {
	// Meta returns the chain's prior, constraint and citation metadata.
	Meta(ctx context.Context) (ChainMeta, error)

	// Steps returns the total number of chain steps available.
	Steps(ctx context.Context) (int64, error)

	// ForEachBatch streams the chain in column batches of at most batchSize
	// rows, stopping after maxSteps rows when maxSteps > 0. fn errors abort
	// the stream.
	ForEachBatch(ctx context.Context, batchSize int, maxSteps int64, fn func(*chain.Batch) error) error
}
