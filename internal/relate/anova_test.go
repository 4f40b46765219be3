package relate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dstats "statpipe/domain/stats"
	"statpipe/domain/table"
	"statpipe/internal/testkit"
)

func threeGroupDataset(a, b, c []float64) *table.Dataset {
	values := make([]float64, 0, len(a)+len(b)+len(c))
	labels := make([]string, 0, cap(values))
	for _, v := range a {
		values = append(values, v)
		labels = append(labels, "a")
	}
	for _, v := range b {
		values = append(values, v)
		labels = append(labels, "b")
	}
	for _, v := range c {
		values = append(values, v)
		labels = append(labels, "c")
	}
	return testkit.Must(table.New(
		testkit.Numeric("Score", values...),
		testkit.Categorical("Group", labels...),
	))
}

func TestVarianceTest_KnownStatistic(t *testing.T) {
	ds := threeGroupDataset(
		[]float64{1, 2, 3},
		[]float64{2, 3, 4},
		[]float64{3, 4, 5},
	)

	res, err := NewEngine().VarianceTest(ds, "Score", "Group")
	require.NoError(t, err)

	require.True(t, res.Defined)
	assert.Equal(t, dstats.TestANOVA, res.Test)
	// SS between = 3*(1 + 0 + 1) = 6, SS within = 6, F = 3/1 = 3.
	assert.InDelta(t, 3.0, res.Statistic, 1e-9)
	assert.InDelta(t, 2.0, res.DF1, 1e-9)
	assert.InDelta(t, 6.0, res.DF2, 1e-9)
	assert.InDelta(t, 0.125, res.PValue, 0.005)
	assert.Empty(t, res.PostHoc)
}

func TestVarianceTest_SeparatedGroupsGetPostHoc(t *testing.T) {
	ds := threeGroupDataset(
		[]float64{1, 2, 1, 2, 1},
		[]float64{10, 11, 10, 11, 10},
		[]float64{30, 31, 30, 31, 30},
	)

	res, err := NewEngine().VarianceTest(ds, "Score", "Group")
	require.NoError(t, err)

	require.True(t, res.Defined)
	assert.Less(t, res.PValue, 0.001)
	require.Len(t, res.PostHoc, 3)
	for _, cmp := range res.PostHoc {
		assert.True(t, cmp.Significant, "%s vs %s", cmp.GroupA, cmp.GroupB)
		assert.Less(t, cmp.PValue, 0.05)
	}
	// Comparisons carry signed mean differences in sorted label order.
	assert.Equal(t, "a", res.PostHoc[0].GroupA)
	assert.Equal(t, "b", res.PostHoc[0].GroupB)
	assert.InDelta(t, -9.0, res.PostHoc[0].MeanDiff, 1e-9)
}

func TestVarianceTest_SimilarGroupsNoPostHoc(t *testing.T) {
	ds := threeGroupDataset(
		[]float64{5, 6, 7, 5, 6},
		[]float64{6, 5, 7, 6, 5},
		[]float64{7, 5, 6, 7, 5},
	)

	res, err := NewEngine().VarianceTest(ds, "Score", "Group")
	require.NoError(t, err)

	require.True(t, res.Defined)
	assert.Greater(t, res.PValue, 0.05)
	assert.Empty(t, res.PostHoc)
}

func TestVarianceTest_SingleGroupUndefined(t *testing.T) {
	ds := testkit.Must(table.New(
		testkit.Numeric("Score", 1, 2, 3),
		testkit.Categorical("Group", "a", "a", "a"),
	))

	res, err := NewEngine().VarianceTest(ds, "Score", "Group")
	require.NoError(t, err)
	assert.False(t, res.Defined)
	assert.NotEmpty(t, res.Reason)
}

func TestVarianceTest_TinyGroupUndefined(t *testing.T) {
	ds := testkit.Must(table.New(
		testkit.Numeric("Score", 1, 2, 3, 9),
		testkit.Categorical("Group", "a", "a", "a", "b"),
	))

	res, err := NewEngine().VarianceTest(ds, "Score", "Group")
	require.NoError(t, err)
	assert.False(t, res.Defined)
}

func TestVarianceTest_NoWithinVarianceUndefined(t *testing.T) {
	ds := threeGroupDataset(
		[]float64{1, 1},
		[]float64{2, 2},
		[]float64{3, 3},
	)

	res, err := NewEngine().VarianceTest(ds, "Score", "Group")
	require.NoError(t, err)
	assert.False(t, res.Defined)
}
