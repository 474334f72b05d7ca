package eval

import (
	"clustereval/domain/core"
)

// Classify decides whether a trait behaves as a continuum or as discrete
// categories. Missing entries are dropped, the remaining distinct values are
// counted on their canonical form, and a trait with at most threshold distinct
// values is CATEGORICAL; more is CONTINUOUS. A constant or empty trait still
// classifies (CATEGORICAL); the tester reports it as degenerate.
func Classify(values []core.TraitValue, threshold int) Classification {
	if DistinctCount(values) <= threshold {
		return Categorical
	}
	return Continuous
}

// DistinctCount returns the number of distinct non-missing values, comparing
// canonical forms so case and numeric formatting differences collapse.
func DistinctCount(values []core.TraitValue) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		seen[v.Canonical()] = struct{}{}
	}
	return len(seen)
}
