package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"clustereval/domain/core"
	"clustereval/domain/eval"
	"clustereval/ports"
)

// Schema for run history. NaN statistics are stored as-is; Postgres double
// precision accepts NaN.
const schema = `
CREATE TABLE IF NOT EXISTS evaluation_runs (
	id TEXT PRIMARY KEY,
	threshold INTEGER NOT NULL,
	phenotype_path TEXT NOT NULL,
	cluster_path TEXT NOT NULL,
	result_path TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_rows (
	run_id TEXT NOT NULL REFERENCES evaluation_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	trait_name TEXT NOT NULL,
	distinct_values INTEGER NOT NULL,
	sample_count INTEGER NOT NULL,
	measure TEXT NOT NULL,
	statistic DOUBLE PRECISION NOT NULL,
	pval DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// runRepository implements ports.RunRepository on Postgres.
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a run repository and ensures its schema exists.
func NewRunRepository(db *sqlx.DB) (ports.RunRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to ensure run schema: %w", err)
	}
	return &runRepository{db: db}, nil
}

// SaveRun inserts the run and its rows in one transaction.
func (r *runRepository) SaveRun(ctx context.Context, record *ports.RunRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluation_runs (id, threshold, phenotype_path, cluster_path, result_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID, record.Threshold, record.PhenotypePath, record.ClusterPath, record.ResultPath, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", record.ID, err)
	}

	for i, row := range record.Rows {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO evaluation_rows (run_id, position, trait_name, distinct_values, sample_count, measure, statistic, pval)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			record.ID, i, row.TraitName, row.DistinctValues, row.SampleCount, row.Measure, row.Statistic, row.PValue,
		)
		if err != nil {
			return fmt.Errorf("failed to insert row %d of run %s: %w", i, record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", record.ID, err)
	}
	return nil
}

// GetRun retrieves a run and its rows in trait order.
func (r *runRepository) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	record := &ports.RunRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, threshold, phenotype_path, cluster_path, result_path, created_at
		 FROM evaluation_runs WHERE id = $1`, id,
	).Scan(&record.ID, &record.Threshold, &record.PhenotypePath, &record.ClusterPath, &record.ResultPath, &record.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT trait_name, distinct_values, sample_count, measure, statistic, pval
		 FROM evaluation_rows WHERE run_id = $1 ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var row eval.Row
		if err := rows.Scan(&row.TraitName, &row.DistinctValues, &row.SampleCount, &row.Measure, &row.Statistic, &row.PValue); err != nil {
			return nil, fmt.Errorf("failed to scan row of run %s: %w", id, err)
		}
		record.Rows = append(record.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows of run %s: %w", id, err)
	}
	return record, nil
}

// ListRuns returns run summaries, most recent first.
func (r *runRepository) ListRuns(ctx context.Context, limit, offset int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.threshold, r.created_at, COUNT(e.run_id)
		 FROM evaluation_runs r
		 LEFT JOIN evaluation_rows e ON e.run_id = r.id
		 GROUP BY r.id, r.threshold, r.created_at
		 ORDER BY r.created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var summaries []ports.RunSummary
	for rows.Next() {
		var s ports.RunSummary
		if err := rows.Scan(&s.ID, &s.Threshold, &s.CreatedAt, &s.TraitCount); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run summaries: %w", err)
	}
	return summaries, nil
}
