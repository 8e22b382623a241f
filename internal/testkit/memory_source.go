package testkit

import (
	"context"
	"fmt"

	"numcmc/domain/chain"
	"numcmc/ports"
)

// MemorySource is an in-memory ports.SampleSource over fixed columns.
type MemorySource struct {
	columns map[string][]float64
	meta    ports.ChainMeta
	steps   int
}

// NewMemorySource wraps pre-built columns. The six physical columns must be
// present and equal-length.
func NewMemorySource(columns map[string][]float64, meta ports.ChainMeta) *MemorySource {
	steps := 0
	if col, ok := columns[chain.VarDeltaCP]; ok {
		steps = len(col)
	}
	return &MemorySource{columns: columns, meta: meta, steps: steps}
}

// Meta returns the source's metadata.
func (m *MemorySource) Meta(ctx context.Context) (ports.ChainMeta, error) {
	return m.meta, nil
}

// Steps returns the chain length.
func (m *MemorySource) Steps(ctx context.Context) (int64, error) {
	return int64(m.steps), nil
}

// ForEachBatch slices the columns into batches of at most batchSize rows.
func (m *MemorySource) ForEachBatch(ctx context.Context, batchSize int, maxSteps int64, fn func(*chain.Batch) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	limit := m.steps
	if maxSteps > 0 && maxSteps < int64(limit) {
		limit = int(maxSteps)
	}
	for lo := 0; lo < limit; lo += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		hi := lo + batchSize
		if hi > limit {
			hi = limit
		}
		cols := make(map[string][]float64, len(m.columns))
		for name, col := range m.columns {
			cols[name] = col[lo:hi]
		}
		b, err := chain.NewBatch(cols)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}
