package eval

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"clustereval/domain/core"
)

// Orchestrator runs the partition/classify/test pipeline over every trait of
// a phenotype table. Trait evaluations share no mutable state, so they run
// concurrently; results are written by index so output order always matches
// input column order.
type Orchestrator struct {
	threshold int
	limit     int
}

// NewOrchestrator validates the configured threshold up front; a missing or
// non-positive threshold aborts before any trait is touched.
func NewOrchestrator(threshold int) (*Orchestrator, error) {
	if threshold < 1 {
		return nil, core.NewThresholdError(threshold)
	}
	return &Orchestrator{threshold: threshold, limit: runtime.GOMAXPROCS(0)}, nil
}

// Threshold returns the configured distinct-value cutoff.
func (o *Orchestrator) Threshold() int {
	return o.threshold
}

// Evaluate produces one Row per trait, in input order. Degenerate traits
// surface as NaN statistic and p-value; they never drop other traits from the
// output.
func (o *Orchestrator) Evaluate(ctx context.Context, clusters core.ClusterAssignment, phenotypes core.PhenotypeTable) ([]Row, error) {
	rows := make([]Row, len(phenotypes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.limit)
	for i, trait := range phenotypes {
		i, trait := i, trait
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = o.evaluateTrait(trait, clusters)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (o *Orchestrator) evaluateTrait(trait core.Trait, clusters core.ClusterAssignment) Row {
	groups, sampleCount := Partition(trait.Values, clusters)
	retained := groups.Flatten()
	classification := Classify(retained, o.threshold)
	result := Test(classification, groups)
	return Row{
		TraitName:      trait.Name,
		DistinctValues: DistinctCount(retained),
		SampleCount:    sampleCount,
		Measure:        result.Measure,
		Statistic:      result.Statistic,
		PValue:         result.PValue,
	}
}
