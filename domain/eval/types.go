package eval

import (
	"encoding/json"
	"math"

	"clustereval/domain/core"
)

// Classification is the two-way decision for a phenotype trait.
type Classification string

const (
	Continuous  Classification = "continuous"
	Categorical Classification = "categorical"
)

// Measure names reported in the result table.
const (
	MeasureFOneway   = "f_oneway"
	MeasureChiSquare = "chisquare"
)

// Group holds the retained values of one cluster for one trait.
type Group struct {
	Label  core.ClusterLabel
	Values []core.TraitValue
}

// GroupedValues is the per-cluster partition of one trait's non-missing
// values, ordered by cluster label ascending. Derived per trait and discarded
// after the test runs.
type GroupedValues []Group

// TotalCount returns the number of values retained across all groups.
func (g GroupedValues) TotalCount() int {
	n := 0
	for _, group := range g {
		n += len(group.Values)
	}
	return n
}

// Flatten returns all retained values in group order.
func (g GroupedValues) Flatten() []core.TraitValue {
	values := make([]core.TraitValue, 0, g.TotalCount())
	for _, group := range g {
		values = append(values, group.Values...)
	}
	return values
}

// TestResult is the outcome of one association test. Statistic and PValue are
// NaN for degenerate inputs; the measure is still reported.
type TestResult struct {
	Measure   string  `json:"measure"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// Row is one trait's line in the evaluation result table. Immutable once
// created; row order follows phenotype-table column order.
type Row struct {
	TraitName      string  `json:"trait_name"`
	DistinctValues int     `json:"distinct_values_after_dropna"`
	SampleCount    int     `json:"sample_count_after_dropna"`
	Measure        string  `json:"measure"`
	Statistic      float64 `json:"statistic"`
	PValue         float64 `json:"p_value"`
}

// MarshalJSON serializes NaN statistic and p-value as null; encoding/json has
// no representation for NaN.
func (r Row) MarshalJSON() ([]byte, error) {
	type jsonRow struct {
		TraitName      string   `json:"trait_name"`
		DistinctValues int      `json:"distinct_values_after_dropna"`
		SampleCount    int      `json:"sample_count_after_dropna"`
		Measure        string   `json:"measure"`
		Statistic      *float64 `json:"statistic"`
		PValue         *float64 `json:"p_value"`
	}
	out := jsonRow{
		TraitName:      r.TraitName,
		DistinctValues: r.DistinctValues,
		SampleCount:    r.SampleCount,
		Measure:        r.Measure,
	}
	// Infinite F statistics have no JSON representation either.
	if !math.IsNaN(r.Statistic) && !math.IsInf(r.Statistic, 0) {
		v := r.Statistic
		out.Statistic = &v
	}
	if !math.IsNaN(r.PValue) {
		v := r.PValue
		out.PValue = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores null statistic and p-value as NaN.
func (r *Row) UnmarshalJSON(data []byte) error {
	type jsonRow struct {
		TraitName      string   `json:"trait_name"`
		DistinctValues int      `json:"distinct_values_after_dropna"`
		SampleCount    int      `json:"sample_count_after_dropna"`
		Measure        string   `json:"measure"`
		Statistic      *float64 `json:"statistic"`
		PValue         *float64 `json:"p_value"`
	}
	var in jsonRow
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.TraitName = in.TraitName
	r.DistinctValues = in.DistinctValues
	r.SampleCount = in.SampleCount
	r.Measure = in.Measure
	r.Statistic = math.NaN()
	r.PValue = math.NaN()
	if in.Statistic != nil {
		r.Statistic = *in.Statistic
	}
	if in.PValue != nil {
		r.PValue = *in.PValue
	}
	return nil
}
