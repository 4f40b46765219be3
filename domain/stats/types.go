package stats

import (
	"fmt"
	"math"
)

// ============================================================================
// DESCRIPTIVE RESULTS
// ============================================================================

// Summary contains descriptive statistics for one numeric column, computed
// only over non-missing values. With zero non-missing values the result is
// explicitly undefined, never a block of zeros.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"` // sample (n-1) standard deviation
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`

	Defined bool   `json:"defined"`
	Reason  string `json:"reason,omitempty"`
}

// UndefinedSummary marks a summary as not computable with a stated reason
func UndefinedSummary(column, reason string) Summary {
	return Summary{Column: column, Reason: reason}
}

// IQR returns the interquartile range Q3 - Q1
func (s Summary) IQR() float64 {
	return s.Q3 - s.Q1
}

// GroupedSummary holds per-group summaries of one measured column split by
// a categorical grouping column
type GroupedSummary struct {
	Column  string             `json:"column"`
	GroupBy string             `json:"group_by"`
	Groups  map[string]Summary `json:"groups"`
}

// FrequencyEntry is one row of a frequency table
type FrequencyEntry struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// FrequencyTable is an ordered label -> count/percentage mapping
type FrequencyTable struct {
	Column  string           `json:"column"`
	Total   int              `json:"total"`
	Entries []FrequencyEntry `json:"entries"`
}

// CrossTable is a two-dimensional count table over pairwise-complete rows,
// with a row-normalized percentage table alongside.
type CrossTable struct {
	RowColumn    string      `json:"row_column"`
	ColColumn    string      `json:"col_column"`
	RowLabels    []string    `json:"row_labels"`
	ColLabels    []string    `json:"col_labels"`
	Counts       [][]int     `json:"counts"`
	RowPercents  [][]float64 `json:"row_percents"`
	Total        int         `json:"total"`
	RowMargins   []int       `json:"row_margins"`
	ColMargins   []int       `json:"col_margins"`
}

// Outlier pairs a value with its originating row identifier
type Outlier struct {
	RowID int     `json:"row_id"`
	Value float64 `json:"value"`
}

// OutlierSet contains values beyond the 1.5*IQR boxplot fences
type OutlierSet struct {
	Column     string    `json:"column"`
	Q1         float64   `json:"q1"`
	Q3         float64   `json:"q3"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
	Outliers   []Outlier `json:"outliers"`

	Defined bool   `json:"defined"`
	Reason  string `json:"reason,omitempty"`
}

// ============================================================================
// RELATIONSHIP RESULTS
// ============================================================================

// Correlation is a Pearson coefficient between two numeric columns over
// pairwise-complete rows. Undefined (not zero) with fewer than 2 pairs or
// zero variance.
type Correlation struct {
	ColumnA     string  `json:"column_a"`
	ColumnB     string  `json:"column_b"`
	Coefficient float64 `json:"coefficient"`
	SampleSize  int     `json:"sample_size"`
	PValue      float64 `json:"p_value"`

	Defined bool   `json:"defined"`
	Reason  string `json:"reason,omitempty"`
}

// Strength bands the coefficient magnitude: |r| >= 0.7 strong, >= 0.3
// moderate, else weak. The banding is a reproducible contract.
func (c Correlation) Strength() string {
	if !c.Defined {
		return "undefined"
	}
	abs := math.Abs(c.Coefficient)
	switch {
	case abs >= 0.7:
		return "strong"
	case abs >= 0.3:
		return "moderate"
	default:
		return "weak"
	}
}

// Direction reports "increasing", "decreasing" or "flat" from the sign
func (c Correlation) Direction() string {
	if !c.Defined {
		return "undefined"
	}
	switch {
	case c.Coefficient > 0:
		return "increasing"
	case c.Coefficient < 0:
		return "decreasing"
	default:
		return "flat"
	}
}

// Regression is a simple ordinary-least-squares fit of one numeric column
// on another over pairwise-complete rows.
type Regression struct {
	Response   string  `json:"response"`
	Predictor  string  `json:"predictor"`
	Intercept  float64 `json:"intercept"`
	Slope      float64 `json:"slope"`
	RSquared   float64 `json:"r_squared"`
	SampleSize int     `json:"sample_size"`

	Defined bool   `json:"defined"`
	Reason  string `json:"reason,omitempty"`
}

// Trend reports the slope direction for interpretation
func (r Regression) Trend() string {
	if !r.Defined {
		return "undefined"
	}
	switch {
	case r.Slope > 0:
		return "increasing"
	case r.Slope < 0:
		return "decreasing"
	default:
		return "flat"
	}
}

// ============================================================================
// HYPOTHESIS TEST RESULTS
// ============================================================================

// TestKind identifies the specific test variant used
type TestKind string

const (
	TestWelchT    TestKind = "welch_t"
	TestChiSquare TestKind = "chi_square"
	TestANOVA     TestKind = "anova_f"
)

// GroupStat is a per-group sample summary attached to group-comparison tests
type GroupStat struct {
	Label string  `json:"label"`
	N     int     `json:"n"`
	Mean  float64 `json:"mean"`
}

// PairwiseComparison is one Tukey HSD post-hoc comparison between two groups
type PairwiseComparison struct {
	GroupA      string  `json:"group_a"`
	GroupB      string  `json:"group_b"`
	MeanDiff    float64 `json:"mean_diff"`
	QStatistic  float64 `json:"q_statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"` // at the 0.05 level
}

// TestResult holds a hypothesis test outcome: statistic, degrees of freedom
// where applicable, p-value and the test variant used. Insufficient data
// produces an explicitly undefined result with a stated reason.
type TestResult struct {
	Test       TestKind             `json:"test"`
	Statistic  float64              `json:"statistic"`
	DF1        float64              `json:"df1"`
	DF2        float64              `json:"df2,omitempty"` // second df for F tests
	PValue     float64              `json:"p_value"`
	SampleSize int                  `json:"sample_size"`
	Groups     []GroupStat          `json:"groups,omitempty"`
	PostHoc    []PairwiseComparison `json:"post_hoc,omitempty"`

	Defined bool   `json:"defined"`
	Reason  string `json:"reason,omitempty"`
}

// UndefinedTest marks a test as not computable with a stated reason
func UndefinedTest(kind TestKind, reason string) TestResult {
	return TestResult{Test: kind, Reason: reason}
}

// Significant reports whether the test rejects at the given alpha
func (t TestResult) Significant(alpha float64) bool {
	return t.Defined && t.PValue < alpha
}

// Describe renders a one-line human-readable interpretation
func (t TestResult) Describe() string {
	if !t.Defined {
		return fmt.Sprintf("%s: not computable (%s)", t.Test, t.Reason)
	}
	switch t.Test {
	case TestWelchT:
		return fmt.Sprintf("Welch t=%.4f, df=%.1f, p=%.4f", t.Statistic, t.DF1, t.PValue)
	case TestChiSquare:
		return fmt.Sprintf("chi-square=%.4f, df=%.0f, p=%.4f", t.Statistic, t.DF1, t.PValue)
	case TestANOVA:
		return fmt.Sprintf("F=%.4f, df=(%.0f, %.0f), p=%.4f", t.Statistic, t.DF1, t.DF2, t.PValue)
	}
	return fmt.Sprintf("%s: statistic=%.4f, p=%.4f", t.Test, t.Statistic, t.PValue)
}
