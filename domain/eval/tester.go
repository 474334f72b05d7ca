package eval

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Test dispatches the grouped values to the association test matching the
// classification. Pure function over its inputs; degenerate inputs come back
// as NaN statistic and p-value under the classification's measure name rather
// than as an error, so one bad trait never aborts an evaluation.
func Test(classification Classification, groups GroupedValues) TestResult {
	if classification == Continuous {
		return fOneway(groups)
	}
	return chiSquare(groups)
}

func degenerate(measure string) TestResult {
	return TestResult{Measure: measure, Statistic: math.NaN(), PValue: math.NaN()}
}

// fOneway runs a one-way ANOVA across the groups. The F statistic is the
// ratio of between-group to within-group variance with (k-1, N-k) degrees of
// freedom. Requires at least two non-empty groups, at least one residual
// degree of freedom, nonzero total variance, and all-numeric values.
func fOneway(groups GroupedValues) TestResult {
	numeric := make([][]float64, 0, len(groups))
	total := 0
	grandSum := 0.0
	for _, group := range groups {
		if len(group.Values) == 0 {
			continue
		}
		values := make([]float64, 0, len(group.Values))
		for _, v := range group.Values {
			if !v.IsNumber() {
				// A trait can land here when its distinct count exceeds
				// the threshold but the values are text; no mean exists.
				return degenerate(MeasureFOneway)
			}
			values = append(values, v.Float())
			grandSum += v.Float()
		}
		numeric = append(numeric, values)
		total += len(values)
	}

	k := len(numeric)
	if k < 2 || total-k < 1 {
		return degenerate(MeasureFOneway)
	}
	grandMean := grandSum / float64(total)

	ssBetween := 0.0
	ssWithin := 0.0
	for _, values := range numeric {
		mean, _ := stats.Mean(values)
		diff := mean - grandMean
		ssBetween += float64(len(values)) * diff * diff
		for _, v := range values {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	if ssBetween+ssWithin == 0 {
		// Every value identical; the F ratio is 0/0.
		return degenerate(MeasureFOneway)
	}

	df1 := float64(k - 1)
	df2 := float64(total - k)
	f := (ssBetween / df1) / (ssWithin / df2)

	// Zero within-group variance drives the ratio to +Inf; the upper tail
	// is 0 there, and the F CDF is undefined at infinity.
	if math.IsInf(f, 1) {
		return TestResult{Measure: MeasureFOneway, Statistic: f, PValue: 0}
	}

	fDist := distuv.F{D1: df1, D2: df2}
	p := 1 - fDist.CDF(f)
	return TestResult{Measure: MeasureFOneway, Statistic: f, PValue: p}
}

// chiSquare runs a Pearson chi-square test of independence on the contingency
// table of cluster label against distinct trait value. Degenerate when the
// table has fewer than two rows or columns, or when any expected cell count is
// below one whole sample (the sparse-table guard; it subsumes zero expected
// counts without dividing by zero).
func chiSquare(groups GroupedValues) TestResult {
	columns := make(map[string]int)
	for _, group := range groups {
		for _, v := range group.Values {
			columns[v.Canonical()] = -1
		}
	}
	keys := make([]string, 0, len(columns))
	for key := range columns {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for i, key := range keys {
		columns[key] = i
	}

	observed := make([][]float64, 0, len(groups))
	for _, group := range groups {
		if len(group.Values) == 0 {
			continue
		}
		row := make([]float64, len(keys))
		for _, v := range group.Values {
			row[columns[v.Canonical()]]++
		}
		observed = append(observed, row)
	}

	rows := len(observed)
	cols := len(keys)
	if rows < 2 || cols < 2 {
		return degenerate(MeasureChiSquare)
	}

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	grand := 0.0
	for i := range observed {
		for j, count := range observed[i] {
			rowTotals[i] += count
			colTotals[j] += count
			grand += count
		}
	}

	chi := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := rowTotals[i] * colTotals[j] / grand
			if expected < 1 {
				return degenerate(MeasureChiSquare)
			}
			diff := observed[i][j] - expected
			chi += diff * diff / expected
		}
	}

	dof := float64((rows - 1) * (cols - 1))
	chiDist := distuv.ChiSquared{K: dof}
	p := 1 - chiDist.CDF(chi)
	return TestResult{Measure: MeasureChiSquare, Statistic: chi, PValue: p}
}
