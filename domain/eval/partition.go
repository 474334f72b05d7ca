package eval

import (
	"sort"

	"clustereval/domain/core"
)

// Partition aligns one trait column with the cluster assignment and buckets
// the non-missing values by cluster label. Samples present in only one of the
// two inputs are excluded without error. Groups come back ordered by label
// ascending, values within a group ordered by sample ID, so identical inputs
// always produce identical output. The second return is the number of values
// retained across all groups (the sample count after dropna).
func Partition(column core.TraitColumn, clusters core.ClusterAssignment) (GroupedValues, int) {
	ids := make([]core.SampleID, 0, len(column))
	for id := range column {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	byLabel := make(map[core.ClusterLabel][]core.TraitValue)
	retained := 0
	for _, id := range ids {
		label, ok := clusters[id]
		if !ok {
			continue
		}
		value := column[id]
		if value.IsMissing() {
			continue
		}
		byLabel[label] = append(byLabel[label], value)
		retained++
	}

	labels := make([]core.ClusterLabel, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	groups := make(GroupedValues, 0, len(labels))
	for _, label := range labels {
		groups = append(groups, Group{Label: label, Values: byLabel[label]})
	}
	return groups, retained
}
