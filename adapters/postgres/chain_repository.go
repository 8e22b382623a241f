// Package postgres stores pre-generated MCMC chains in Postgres and serves
// them back as column batches, implementing ports.SampleSource.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"numcmc/domain/chain"
	"numcmc/domain/prior"
	"numcmc/internal/errors"
	"numcmc/ports"
)

// ChainRepository reads one named chain's samples and metadata.
type ChainRepository struct {
	db      *sqlx.DB
	chainID string
}

// Connect opens a Postgres connection for chain access.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to chain store")
	}
	return db, nil
}

// NewChainRepository binds a repository to one chain.
func NewChainRepository(db *sqlx.DB, chainID string) *ChainRepository {
	return &ChainRepository{db: db, chainID: chainID}
}

// sampleRow mirrors the chain_samples table.
type sampleRow struct {
	Step      int64   `db:"step"`
	DeltaCP   float64 `db:"delta_cp"`
	Theta13   float64 `db:"theta13"`
	Theta23   float64 `db:"theta23"`
	Theta12   float64 `db:"theta12"`
	Deltam232 float64 `db:"deltam2_32"`
	Deltam221 float64 `db:"deltam2_21"`
}

// priorRow mirrors the chain_priors table; tags use the Family:transform
// metadata format.
type priorRow struct {
	Variable string `db:"variable"`
	Tag      string `db:"prior_tag"`
}

// Meta loads the chain's priors and citation.
func (r *ChainRepository) Meta(ctx context.Context) (ports.ChainMeta, error) {
	meta := ports.ChainMeta{Priors: make(map[string]prior.Spec)}

	var rows []priorRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT variable, prior_tag FROM chain_priors WHERE chain_id = $1`, r.chainID)
	if err != nil {
		return meta, errors.Wrap(err, "loading chain priors")
	}
	for _, row := range rows {
		spec, err := prior.ParseTag(row.Variable, row.Tag)
		if err != nil {
			return meta, errors.Wrapf(err, "prior for %s", row.Variable)
		}
		meta.Priors[row.Variable] = spec
	}

	err = r.db.GetContext(ctx, &meta.Citation,
		`SELECT citation FROM chains WHERE chain_id = $1`, r.chainID)
	if err != nil {
		return meta, errors.Wrap(err, "loading chain citation")
	}
	return meta, nil
}

// Steps counts the chain's samples.
func (r *ChainRepository) Steps(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM chain_samples WHERE chain_id = $1`, r.chainID)
	if err != nil {
		return 0, errors.Wrap(err, "counting chain samples")
	}
	return n, nil
}

// ForEachBatch pages through the samples in step order, building one column
// batch per page.
func (r *ChainRepository) ForEachBatch(ctx context.Context, batchSize int, maxSteps int64, fn func(*chain.Batch) error) error {
	if batchSize <= 0 {
		return errors.InvalidInput(fmt.Sprintf("batch size must be positive, got %d", batchSize))
	}
	var delivered int64
	lastStep := int64(-1)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		limit := int64(batchSize)
		if maxSteps > 0 && maxSteps-delivered < limit {
			limit = maxSteps - delivered
		}
		if limit <= 0 {
			return nil
		}

		var rows []sampleRow
		err := r.db.SelectContext(ctx, &rows, `
			SELECT step, delta_cp, theta13, theta23, theta12, deltam2_32, deltam2_21
			FROM chain_samples
			WHERE chain_id = $1 AND step > $2
			ORDER BY step
			LIMIT $3`, r.chainID, lastStep, limit)
		if err != nil {
			return errors.Wrap(err, "reading chain samples")
		}
		if len(rows) == 0 {
			return nil
		}

		b, err := chain.NewBatch(columnsOf(rows))
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		delivered += int64(len(rows))
		lastStep = rows[len(rows)-1].Step
	}
}

func columnsOf(rows []sampleRow) map[string][]float64 {
	n := len(rows)
	cols := map[string][]float64{
		chain.VarDeltaCP:   make([]float64, n),
		chain.VarTheta13:   make([]float64, n),
		chain.VarTheta23:   make([]float64, n),
		chain.VarTheta12:   make([]float64, n),
		chain.VarDeltam232: make([]float64, n),
		chain.VarDeltam221: make([]float64, n),
	}
	for i, row := range rows {
		cols[chain.VarDeltaCP][i] = row.DeltaCP
		cols[chain.VarTheta13][i] = row.Theta13
		cols[chain.VarTheta23][i] = row.Theta23
		cols[chain.VarTheta12][i] = row.Theta12
		cols[chain.VarDeltam232][i] = row.Deltam232
		cols[chain.VarDeltam221][i] = row.Deltam221
	}
	return cols
}
