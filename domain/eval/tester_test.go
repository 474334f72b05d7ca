package eval

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustereval/domain/core"
)

func numberGroup(label core.ClusterLabel, values ...float64) Group {
	g := Group{Label: label}
	for _, v := range values {
		g.Values = append(g.Values, core.Number(v))
	}
	return g
}

func textGroup(label core.ClusterLabel, values ...string) Group {
	g := Group{Label: label}
	for _, v := range values {
		g.Values = append(g.Values, core.Text(v))
	}
	return g
}

func TestFOnewayMatchesReferenceFixture(t *testing.T) {
	// Clusters [0 1 3 2 1 0 1 2] against ages [6 18 22 6 6 22 18 18],
	// grouped by label. Expected values computed with scipy.stats.f_oneway.
	groups := GroupedValues{
		numberGroup(0, 6, 22),
		numberGroup(1, 18, 6, 18),
		numberGroup(2, 6, 18),
		numberGroup(3, 22),
	}

	result := Test(Continuous, groups)

	require.Equal(t, MeasureFOneway, result.Measure)
	assert.InDelta(t, 0.315315, result.Statistic, 1e-5)
	assert.InDelta(t, 0.814890, result.PValue, 1e-5)
}

func TestFOnewayClearSeparation(t *testing.T) {
	groups := GroupedValues{
		numberGroup(1, 10, 12),
		numberGroup(2, 30, 32),
	}

	result := Test(Continuous, groups)

	require.Equal(t, MeasureFOneway, result.Measure)
	assert.Greater(t, result.Statistic, 0.0)
	assert.Less(t, result.PValue, 0.05)
	assert.InDelta(t, 200.0, result.Statistic, 1e-9)
}

func TestFOnewayShiftInvariance(t *testing.T) {
	base := GroupedValues{
		numberGroup(1, 3.2, 4.1, 5.0, 2.8),
		numberGroup(2, 6.4, 7.7, 5.9),
		numberGroup(3, 1.1, 2.2, 3.3, 4.4),
	}
	shifted := make(GroupedValues, len(base))
	for i, g := range base {
		shifted[i] = Group{Label: g.Label}
		for _, v := range g.Values {
			shifted[i].Values = append(shifted[i].Values, core.Number(v.Float()+1234.5))
		}
	}

	a := Test(Continuous, base)
	b := Test(Continuous, shifted)

	assert.InDelta(t, a.Statistic, b.Statistic, 1e-9)
	assert.InDelta(t, a.PValue, b.PValue, 1e-9)
}

func TestFOnewayPermutationInvariance(t *testing.T) {
	values := []float64{3.2, 4.1, 5.0, 2.8, 6.1}
	groups := GroupedValues{
		numberGroup(1, values...),
		numberGroup(2, 6.4, 7.7, 5.9),
	}

	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	permuted := GroupedValues{
		numberGroup(1, values...),
		numberGroup(2, 6.4, 7.7, 5.9),
	}

	a := Test(Continuous, groups)
	b := Test(Continuous, permuted)

	assert.InDelta(t, a.Statistic, b.Statistic, 1e-9)
	assert.InDelta(t, a.PValue, b.PValue, 1e-9)
}

func TestFOnewayDegenerateCases(t *testing.T) {
	cases := []struct {
		name   string
		groups GroupedValues
	}{
		{"single group", GroupedValues{numberGroup(1, 1, 2, 3)}},
		{"no groups", GroupedValues{}},
		{"zero total variance", GroupedValues{numberGroup(1, 5, 5), numberGroup(2, 5, 5)}},
		{"no residual degrees of freedom", GroupedValues{numberGroup(1, 1), numberGroup(2, 2)}},
		{"text values above threshold", GroupedValues{textGroup(1, "x", "y"), textGroup(2, "z", "w")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Test(Continuous, tc.groups)
			require.Equal(t, MeasureFOneway, result.Measure)
			assert.True(t, math.IsNaN(result.Statistic), "statistic should be NaN")
			assert.True(t, math.IsNaN(result.PValue), "p-value should be NaN")
		})
	}
}

func TestFOnewayZeroWithinVariance(t *testing.T) {
	// Between-group variance with no within-group variance pushes the F
	// ratio to +Inf and the upper tail to zero; not a degenerate case.
	groups := GroupedValues{
		numberGroup(1, 2, 2),
		numberGroup(2, 9, 9),
	}

	result := Test(Continuous, groups)

	assert.True(t, math.IsInf(result.Statistic, 1))
	assert.Equal(t, 0.0, result.PValue)
}

func TestChiSquareKnownTable(t *testing.T) {
	// Observed [[3 1] [1 3]]: all expected counts are 2, chi = 2.0, dof 1.
	groups := GroupedValues{
		textGroup(1, "a", "a", "a", "b"),
		textGroup(2, "b", "b", "b", "a"),
	}

	result := Test(Categorical, groups)

	require.Equal(t, MeasureChiSquare, result.Measure)
	assert.InDelta(t, 2.0, result.Statistic, 1e-9)
	assert.InDelta(t, 0.157299, result.PValue, 1e-5)
}

func TestChiSquareRelabelingInvariance(t *testing.T) {
	// Renumbering the clusters must not change the statistic.
	a := Test(Categorical, GroupedValues{
		textGroup(1, "a", "a", "a", "b"),
		textGroup(2, "b", "b", "b", "a"),
	})
	b := Test(Categorical, GroupedValues{
		textGroup(7, "a", "a", "a", "b"),
		textGroup(9, "b", "b", "b", "a"),
	})

	assert.InDelta(t, a.Statistic, b.Statistic, 1e-9)
	assert.InDelta(t, a.PValue, b.PValue, 1e-9)
}

func TestChiSquareDegenerateCases(t *testing.T) {
	cases := []struct {
		name   string
		groups GroupedValues
	}{
		{"single column", GroupedValues{textGroup(1, "a", "a"), textGroup(2, "a")}},
		{"single row", GroupedValues{textGroup(1, "a", "b", "a")}},
		{"empty", GroupedValues{}},
		// The sparse 2x2 from an unbalanced 3-sample table: the smallest
		// expected count is 1/3 of a sample, below one whole observation.
		{"sparse expected cell", GroupedValues{textGroup(1, "a", "a"), textGroup(2, "b")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Test(Categorical, tc.groups)
			require.Equal(t, MeasureChiSquare, result.Measure)
			assert.True(t, math.IsNaN(result.Statistic), "statistic should be NaN")
			assert.True(t, math.IsNaN(result.PValue), "p-value should be NaN")
		})
	}
}

func TestChiSquareMixedValueKinds(t *testing.T) {
	// Numeric categories and text categories share one column space.
	groups := GroupedValues{
		Group{Label: 1, Values: []core.TraitValue{core.Number(1), core.Number(1), core.Number(2), core.Number(2)}},
		Group{Label: 2, Values: []core.TraitValue{core.Number(2), core.Number(2), core.Number(1), core.Number(1)}},
	}

	result := Test(Categorical, groups)

	require.Equal(t, MeasureChiSquare, result.Measure)
	assert.False(t, math.IsNaN(result.Statistic))
	assert.InDelta(t, 0.0, result.Statistic, 1e-9)
	assert.InDelta(t, 1.0, result.PValue, 1e-9)
}
