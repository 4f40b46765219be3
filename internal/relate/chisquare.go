package relate

import (
	"fmt"

	"statpipe/domain/core"
	dstats "statpipe/domain/stats"
	"statpipe/domain/table"
	"statpipe/internal/describe"
)

// AssociationTest runs a chi-square test of independence between two
// categorical columns on their cross-frequency table.
func (e *Engine) AssociationTest(ds *table.Dataset, a, b string) (dstats.TestResult, error) {
	ct, err := describe.CrossFrequency(ds, a, b)
	if err != nil {
		return dstats.TestResult{}, err
	}
	return e.ChiSquareFromTable(ct), nil
}

// ChiSquareFromTable computes the chi-square statistic over an existing
// cross-frequency table. Expected frequencies derive from the margins; a
// zero row or column margin makes the test not computable.
func (e *Engine) ChiSquareFromTable(ct dstats.CrossTable) dstats.TestResult {
	result := dstats.TestResult{Test: dstats.TestChiSquare, SampleSize: ct.Total}

	rows, cols := len(ct.RowLabels), len(ct.ColLabels)
	if rows < 2 || cols < 2 {
		result.Reason = fmt.Sprintf("%v: table is %dx%d, need at least 2x2",
			core.ErrInsufficientData, rows, cols)
		return result
	}
	for i, margin := range ct.RowMargins {
		if margin == 0 {
			result.Reason = fmt.Sprintf("%v: row %q", core.ErrZeroMargin, ct.RowLabels[i])
			return result
		}
	}
	for j, margin := range ct.ColMargins {
		if margin == 0 {
			result.Reason = fmt.Sprintf("%v: column %q", core.ErrZeroMargin, ct.ColLabels[j])
			return result
		}
	}

	chiSq := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := float64(ct.RowMargins[i]*ct.ColMargins[j]) / float64(ct.Total)
			observed := float64(ct.Counts[i][j])
			diff := observed - expected
			chiSq += diff * diff / expected
		}
	}

	df := float64((rows - 1) * (cols - 1))
	result.Statistic = chiSq
	result.DF1 = df
	result.PValue = e.dist.ChiSquarePValue(chiSq, df)
	result.Defined = true
	return result
}
