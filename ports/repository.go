package ports

import (
	"context"
	"time"

	"clustereval/domain/core"
	"clustereval/domain/eval"
)

// RunRecord is the persisted form of one evaluation run.
type RunRecord struct {
	ID            core.RunID `json:"id"`
	Threshold     int        `json:"threshold"`
	PhenotypePath string     `json:"phenotype_path"`
	ClusterPath   string     `json:"cluster_path"`
	ResultPath    string     `json:"result_path"`
	CreatedAt     time.Time  `json:"created_at"`
	Rows          []eval.Row `json:"rows"`
}

// RunSummary is the list form of a run.
type RunSummary struct {
	ID         core.RunID `json:"id"`
	Threshold  int        `json:"threshold"`
	TraitCount int        `json:"trait_count"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RunRepository stores evaluation runs for later retrieval. Persistence is
// optional; a nil repository means runs are only written to the results
// directory.
type RunRepository interface {
	SaveRun(ctx context.Context, record *RunRecord) error
	GetRun(ctx context.Context, id core.RunID) (*RunRecord, error)
	ListRuns(ctx context.Context, limit, offset int) ([]RunSummary, error)
}
