package core

import (
	"sort"
	"strconv"
	"strings"
)

// SampleID is the opaque identifier shared between the cluster-assignment
// table and the phenotype table.
type SampleID string

// String returns the string representation
func (id SampleID) String() string {
	return string(id)
}

// ClusterLabel is the category code a sample was assigned to by an external
// clustering algorithm.
type ClusterLabel int

// ClusterAssignment maps every sample to its cluster label. Owned by the
// caller; the engine never mutates it.
type ClusterAssignment map[SampleID]ClusterLabel

// Labels returns the distinct cluster labels in ascending order.
func (a ClusterAssignment) Labels() []ClusterLabel {
	seen := make(map[ClusterLabel]bool, len(a))
	labels := make([]ClusterLabel, 0, len(a))
	for _, label := range a {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// ValueKind discriminates the tagged TraitValue union.
type ValueKind int

const (
	ValueMissing ValueKind = iota
	ValueNumber
	ValueText
)

// TraitValue is an explicit optional: a trait cell is missing, numeric, or
// free text. Missing is a tag, never a numeric NaN, so a NaN produced by a
// downstream computation can never be confused with absent input.
type TraitValue struct {
	kind ValueKind
	num  float64
	text string
}

// Missing returns the absent-value sentinel.
func Missing() TraitValue {
	return TraitValue{kind: ValueMissing}
}

// Number wraps a numeric trait value.
func Number(v float64) TraitValue {
	return TraitValue{kind: ValueNumber, num: v}
}

// Text wraps a free-text trait value.
func Text(s string) TraitValue {
	return TraitValue{kind: ValueText, text: s}
}

// Kind returns the union tag.
func (v TraitValue) Kind() ValueKind {
	return v.kind
}

// IsMissing reports whether the cell held no value.
func (v TraitValue) IsMissing() bool {
	return v.kind == ValueMissing
}

// IsNumber reports whether the cell held a numeric value.
func (v TraitValue) IsNumber() bool {
	return v.kind == ValueNumber
}

// Float returns the numeric payload. Only meaningful when IsNumber.
func (v TraitValue) Float() float64 {
	return v.num
}

// Canonical returns the comparison key used for distinct-value counting and
// contingency columns: lowercased trimmed text, or the shortest exact decimal
// form for numbers, so "A" and "a" collapse, as do 1 and 1.0.
func (v TraitValue) Canonical() string {
	switch v.kind {
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case ValueText:
		return strings.ToLower(strings.TrimSpace(v.text))
	default:
		return ""
	}
}

// TraitColumn maps sample IDs to the values of one trait.
type TraitColumn map[SampleID]TraitValue

// Trait is one named column of the phenotype table.
type Trait struct {
	Name   string
	Values TraitColumn
}

// PhenotypeTable is an ordered sequence of traits; output rows follow this
// order.
type PhenotypeTable []Trait
