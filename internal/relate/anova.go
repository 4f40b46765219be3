package relate

import (
	"fmt"
	"math"

	"statpipe/domain/core"
	dstats "statpipe/domain/stats"
	"statpipe/domain/table"
)

// VarianceTest runs a one-way analysis of variance of a numeric column
// across all distinct non-missing labels of a grouping column. When the
// overall F test rejects at the 0.05 level, Tukey HSD pairwise comparisons
// between every pair of groups are attached to the result.
func (e *Engine) VarianceTest(ds *table.Dataset, column, groupBy string) (dstats.TestResult, error) {
	groups, labels, err := groupedValues(ds, column, groupBy)
	if err != nil {
		return dstats.TestResult{}, err
	}

	result := dstats.TestResult{Test: dstats.TestANOVA}
	if len(labels) < 2 {
		result.Reason = fmt.Sprintf("%v: %d distinct groups, need at least 2",
			core.ErrInsufficientData, len(labels))
		return result, nil
	}

	n := 0
	grand := 0.0
	for _, label := range labels {
		values := groups[label]
		if len(values) < 2 {
			result.Reason = fmt.Sprintf("%v: group %q has %d values, need at least 2",
				core.ErrInsufficientData, label, len(values))
			return result, nil
		}
		n += len(values)
		for _, v := range values {
			grand += v
		}
		result.Groups = append(result.Groups, dstats.GroupStat{
			Label: label, N: len(values), Mean: mean(values),
		})
	}
	grand /= float64(n)
	result.SampleSize = n

	ssBetween, ssWithin := 0.0, 0.0
	for _, g := range result.Groups {
		d := g.Mean - grand
		ssBetween += float64(g.N) * d * d
		for _, v := range groups[g.Label] {
			dv := v - g.Mean
			ssWithin += dv * dv
		}
	}

	k := len(labels)
	dfBetween := float64(k - 1)
	dfWithin := float64(n - k)
	if ssWithin == 0 {
		result.Reason = fmt.Sprintf("%v: no within-group variance", core.ErrZeroVariance)
		return result, nil
	}

	msBetween := ssBetween / dfBetween
	msWithin := ssWithin / dfWithin

	result.Statistic = msBetween / msWithin
	result.DF1 = dfBetween
	result.DF2 = dfWithin
	result.PValue = e.dist.FTestPValue(result.Statistic, dfBetween, dfWithin)
	result.Defined = true

	// Post-hoc comparisons only once the overall test indicates at least
	// one group differs.
	if result.PValue < 0.05 {
		result.PostHoc = e.tukeyHSD(result.Groups, msWithin, dfWithin, k)
	}
	return result, nil
}

// tukeyHSD computes honestly-significant-difference comparisons between
// every pair of groups using the studentized range statistic.
func (e *Engine) tukeyHSD(groups []dstats.GroupStat, msWithin, dfWithin float64, k int) []dstats.PairwiseComparison {
	comparisons := make([]dstats.PairwiseComparison, 0, k*(k-1)/2)
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			a, b := groups[i], groups[j]
			diff := a.Mean - b.Mean
			se := math.Sqrt(msWithin / 2 * (1/float64(a.N) + 1/float64(b.N)))
			q := math.Abs(diff) / se
			p := e.dist.StudentizedRangePValue(q, k, dfWithin)
			comparisons = append(comparisons, dstats.PairwiseComparison{
				GroupA:      a.Label,
				GroupB:      b.Label,
				MeanDiff:    diff,
				QStatistic:  q,
				PValue:      p,
				Significant: p < 0.05,
			})
		}
	}
	return comparisons
}
