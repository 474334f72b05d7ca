package ports

import (
	"clustereval/domain/eval"
)

// ResultWriter serializes an evaluation's rows into the results directory and
// returns the path it wrote. Filename and timestamp conventions belong to the
// adapter, not the engine.
type ResultWriter interface {
	WriteResults(dir string, rows []eval.Row) (string, error)
	WriteReport(dir string, record *RunRecord) (string, error)
}
