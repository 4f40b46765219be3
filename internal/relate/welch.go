package relate

import (
	"fmt"
	"math"

	"statpipe/domain/core"
	dstats "statpipe/domain/stats"
	"statpipe/domain/table"
)

// TwoSampleTest compares the means of a numeric column across a binary
// grouping column using Welch's t-test, which assumes unequal variances.
// The grouping column must have exactly two distinct non-missing labels
// present; anything else is an explicit wrong-group-count error, never a
// silent choice of two groups.
func (e *Engine) TwoSampleTest(ds *table.Dataset, column, groupBy string) (dstats.TestResult, error) {
	groups, labels, err := groupedValues(ds, column, groupBy)
	if err != nil {
		return dstats.TestResult{}, err
	}
	if len(labels) != 2 {
		return dstats.TestResult{}, fmt.Errorf("%w: grouping column %q has %d distinct labels, need exactly 2",
			core.ErrWrongGroupCount, groupBy, len(labels))
	}

	g1, g2 := groups[labels[0]], groups[labels[1]]
	result := dstats.TestResult{
		Test:       dstats.TestWelchT,
		SampleSize: len(g1) + len(g2),
		Groups: []dstats.GroupStat{
			{Label: labels[0], N: len(g1), Mean: mean(g1)},
			{Label: labels[1], N: len(g2), Mean: mean(g2)},
		},
	}
	if len(g1) < 2 || len(g2) < 2 {
		result.Reason = fmt.Sprintf("%v: each group needs at least 2 values (%s has %d, %s has %d)",
			core.ErrInsufficientData, labels[0], len(g1), labels[1], len(g2))
		return result, nil
	}

	n1, n2 := float64(len(g1)), float64(len(g2))
	var1, var2 := sampleVariance(g1), sampleVariance(g2)
	se2 := var1/n1 + var2/n2
	if se2 == 0 {
		result.Reason = fmt.Sprintf("%v: both groups are constant", core.ErrZeroVariance)
		return result, nil
	}

	tStat := (mean(g1) - mean(g2)) / math.Sqrt(se2)

	// Welch-Satterthwaite degrees of freedom
	df := se2 * se2 / (math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))

	result.Statistic = tStat
	result.DF1 = df
	result.PValue = e.dist.TTestPValue(tStat, df)
	result.Defined = true
	return result, nil
}
