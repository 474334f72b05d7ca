package results

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clustereval/domain/eval"
	"clustereval/internal/errors"
	"clustereval/ports"
)

// Column header of the result table; one row per trait, transposed from the
// per-trait records.
var resultHeader = []string{"", "Measure", "Trait_length_after_dropna", "Sample_number_after_dropna", "chi/fval", "pval"}

// Writer serializes evaluation results as timestamped TSV files plus a
// markdown run report. NaN statistics serialize as "NA".
type Writer struct {
	now func() time.Time
}

// NewWriter creates a result writer.
func NewWriter() *Writer {
	return &Writer{now: time.Now}
}

// WriteResults writes the result table to
// <dir>/clustering_evaluation_result_<unix-ms>.tsv and returns the path.
func (w *Writer) WriteResults(dir string, rows []eval.Row) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create results directory %s", dir)
	}

	name := fmt.Sprintf("clustering_evaluation_result_%d.tsv", w.now().UnixMilli())
	path := filepath.Join(dir, name)

	var b strings.Builder
	b.WriteString(strings.Join(resultHeader, "\t"))
	b.WriteByte('\n')
	for _, row := range rows {
		fields := []string{
			row.TraitName,
			row.Measure,
			strconv.Itoa(row.DistinctValues),
			strconv.Itoa(row.SampleCount),
			formatStatistic(row.Statistic),
			formatStatistic(row.PValue),
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write result file %s", path)
	}
	return path, nil
}

// WriteReport writes the markdown run report next to the result table.
func (w *Writer) WriteReport(dir string, record *ports.RunRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create results directory %s", dir)
	}

	name := fmt.Sprintf("clustering_evaluation_report_%d.md", w.now().UnixMilli())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(BuildMarkdown(record)), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write report %s", path)
	}
	return path, nil
}

func formatStatistic(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
