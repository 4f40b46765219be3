// Package relate computes pairwise relationships between dataset columns:
// Pearson correlation, simple linear regression and hypothesis tests (Welch
// two-sample t, chi-square independence, one-way ANOVA with Tukey HSD).
// Every multi-column computation runs over pairwise-complete rows only, and
// insufficient data yields an explicitly undefined result, never zero.
package relate

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"statpipe/domain/core"
	dstats "statpipe/domain/stats"
	"statpipe/domain/table"
)

// Engine runs relationship computations against one dataset
type Engine struct {
	dist *Distributions
}

// NewEngine creates a relationship engine
func NewEngine() *Engine {
	return &Engine{dist: NewDistributions()}
}

// Correlate computes the Pearson product-moment coefficient between two
// numeric columns over pairwise-complete rows. With fewer than 2 complete
// pairs or zero variance the result is explicitly undefined.
func (e *Engine) Correlate(ds *table.Dataset, a, b string) (dstats.Correlation, error) {
	xs, ys, _, err := ds.PairedFloats(a, b)
	if err != nil {
		return dstats.Correlation{}, err
	}
	result := dstats.Correlation{ColumnA: a, ColumnB: b, SampleSize: len(xs)}
	if len(xs) < 2 {
		result.Reason = fmt.Sprintf("%v: %d complete pairs, need at least 2", core.ErrInsufficientData, len(xs))
		return result, nil
	}
	if sampleVariance(xs) == 0 || sampleVariance(ys) == 0 {
		result.Reason = core.ErrZeroVariance.Error()
		return result, nil
	}
	r := stat.Correlation(xs, ys, nil)
	result.Coefficient = r
	result.PValue = e.dist.CorrelationPValue(r, len(xs))
	result.Defined = true
	return result, nil
}

// FitLinear fits response = intercept + slope*predictor by closed-form
// ordinary least squares over pairwise-complete rows, with the coefficient
// of determination for trend interpretation.
func (e *Engine) FitLinear(ds *table.Dataset, response, predictor string) (dstats.Regression, error) {
	ys, xs, _, err := ds.PairedFloats(response, predictor)
	if err != nil {
		return dstats.Regression{}, err
	}
	result := dstats.Regression{Response: response, Predictor: predictor, SampleSize: len(xs)}
	if len(xs) < 2 {
		result.Reason = fmt.Sprintf("%v: %d complete pairs, need at least 2", core.ErrInsufficientData, len(xs))
		return result, nil
	}
	if sampleVariance(xs) == 0 {
		result.Reason = fmt.Sprintf("%v: predictor %q is constant", core.ErrZeroVariance, predictor)
		return result, nil
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	result.Intercept = alpha
	result.Slope = beta
	result.RSquared = stat.RSquared(xs, ys, nil, alpha, beta)
	result.Defined = true
	return result, nil
}

// sampleVariance is the n-1 variance used for degenerate-input checks
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// groupedValues collects the numeric values of column per label of the
// grouping column, over pairwise-complete rows. Labels come back sorted for
// deterministic iteration.
func groupedValues(ds *table.Dataset, column, groupBy string) (map[string][]float64, []string, error) {
	valueCol, err := ds.Column(column)
	if err != nil {
		return nil, nil, err
	}
	groupCol, err := ds.Column(groupBy)
	if err != nil {
		return nil, nil, err
	}
	groups := make(map[string][]float64)
	for pos := 0; pos < ds.RowCount(); pos++ {
		f, okV := valueCol.Values[pos].Float()
		label, okG := groupCol.Values[pos].Label()
		if okV && okG {
			groups[label] = append(groups[label], f)
		}
	}
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return groups, labels, nil
}
