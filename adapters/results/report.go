package results

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"clustereval/domain/eval"
	"clustereval/ports"
)

// BuildMarkdown renders a run record as a human-readable markdown report: run
// metadata, the full result table, and a p-value summary over the tests that
// could run.
func BuildMarkdown(record *ports.RunRecord) string {
	var b strings.Builder

	b.WriteString("# Clustering Evaluation Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", record.ID)
	fmt.Fprintf(&b, "- Created: %s\n", record.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Threshold: %d distinct values\n", record.Threshold)
	fmt.Fprintf(&b, "- Phenotypes: `%s`\n", record.PhenotypePath)
	fmt.Fprintf(&b, "- Clusters: `%s`\n", record.ClusterPath)
	if record.ResultPath != "" {
		fmt.Fprintf(&b, "- Result table: `%s`\n", record.ResultPath)
	}
	b.WriteString("\n## Results\n\n")
	b.WriteString("| Trait | Measure | Distinct values | Samples | Statistic | p-value |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, row := range record.Rows {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s | %s |\n",
			row.TraitName, row.Measure, row.DistinctValues, row.SampleCount,
			formatStatistic(row.Statistic), formatStatistic(row.PValue))
	}

	b.WriteString("\n## Summary\n\n")
	continuous, categorical, degenerateCount := 0, 0, 0
	pvalues := make([]float64, 0, len(record.Rows))
	significant := 0
	for _, row := range record.Rows {
		switch row.Measure {
		case eval.MeasureFOneway:
			continuous++
		case eval.MeasureChiSquare:
			categorical++
		}
		if math.IsNaN(row.PValue) {
			degenerateCount++
			continue
		}
		pvalues = append(pvalues, row.PValue)
		if row.PValue < 0.05 {
			significant++
		}
	}
	fmt.Fprintf(&b, "- Traits evaluated: %d (%d continuous, %d categorical)\n",
		len(record.Rows), continuous, categorical)
	fmt.Fprintf(&b, "- Degenerate tests: %d\n", degenerateCount)
	fmt.Fprintf(&b, "- Associations with p < 0.05 (uncorrected): %d\n", significant)
	if len(pvalues) > 0 {
		minP, _ := stats.Min(pvalues)
		medianP, _ := stats.Median(pvalues)
		fmt.Fprintf(&b, "- p-value range: min %s, median %s\n",
			formatStatistic(minP), formatStatistic(medianP))
	}

	return b.String()
}
