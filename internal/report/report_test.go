package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	dstats "statpipe/domain/stats"
	"statpipe/internal/clean"
	"statpipe/internal/load"
)

func sampleFindings() Findings {
	return Findings{
		Title: "Survey analysis",
		LoadReport: load.Report{
			Source: "survey.csv", Rows: 100,
			CoercionFailures: map[string]int{"Age": 2},
		},
		CleanReport: clean.Report{Steps: []clean.StepReport{
			{Rule: "require([Age])", RowsBefore: 100, RowsAfter: 97},
		}},
		Summaries: []dstats.Summary{{
			Column: "Age", Count: 97, Mean: 41.256, Median: 40, Min: 18, Max: 79,
			StdDev: 12.5, Q1: 31, Q3: 52, Defined: true,
		}},
		Frequencies: []dstats.FrequencyTable{{
			Column: "Region", Total: 97,
			Entries: []dstats.FrequencyEntry{
				{Label: "North", Count: 60, Percent: 61.855},
				{Label: "South", Count: 37, Percent: 38.144},
			},
		}},
		Outliers: []dstats.OutlierSet{{
			Column: "Age", Q1: 31, Q3: 52, LowerFence: -0.5, UpperFence: 83.5,
			Defined: true,
		}},
		Correlations: []dstats.Correlation{{
			ColumnA: "Age", ColumnB: "Income", Coefficient: 0.81234,
			SampleSize: 97, PValue: 0.00001, Defined: true,
		}},
		Regressions: []dstats.Regression{{
			Response: "Income", Predictor: "Age", Intercept: 1000, Slope: 250.5,
			RSquared: 0.66, SampleSize: 97, Defined: true,
		}},
		Tests: []dstats.TestResult{{
			Test: dstats.TestWelchT, Statistic: -3.21, DF1: 55.2, PValue: 0.0021,
			SampleSize: 97, Defined: true,
			Groups: []dstats.GroupStat{
				{Label: "North", N: 60, Mean: 39.1},
				{Label: "South", N: 37, Mean: 44.8},
			},
		}},
	}
}

func TestWrite_IsDeterministic(t *testing.T) {
	f := sampleFindings()

	var a, b bytes.Buffer
	require.NoError(t, Write(&a, f))
	require.NoError(t, Write(&b, f))
	assert.Equal(t, a.String(), b.String())
}

func TestWrite_SectionsAndRounding(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleFindings()))
	out := buf.String()

	assert.Contains(t, out, "Survey analysis")
	assert.Contains(t, out, "100 rows read")
	assert.Contains(t, out, `2 cells of "Age" failed to parse`)
	assert.Contains(t, out, "dropped 3 rows (100 -> 97)")

	// Descriptive statistics at 2 decimals, coefficients and p at 4,
	// percentages at 1.
	assert.Contains(t, out, "41.26")
	assert.Contains(t, out, "61.9%")
	assert.Contains(t, out, "0.8123")
	assert.Contains(t, out, "250.5000")
	assert.Contains(t, out, "strong")
	assert.Contains(t, out, "increasing")
}

func TestWrite_UndefinedResultsSayWhy(t *testing.T) {
	f := Findings{
		Title: "Empty run",
		Summaries: []dstats.Summary{
			dstats.UndefinedSummary("Age", "no non-missing values"),
		},
		Correlations: []dstats.Correlation{{
			ColumnA: "A", ColumnB: "B", Reason: "zero variance",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))
	out := buf.String()

	assert.Contains(t, out, "not computable (zero variance)")
	assert.NotContains(t, out, "NaN")
}

func TestWrite_TimeSeriesPreview(t *testing.T) {
	f := Findings{
		Title: "Trend",
		Charts: []ChartSpec{
			TimeSeriesChart("Value over Year", "Year", "Value",
				[]float64{2019, 2020, 2021, 2022}, []float64{0, 10, 20, 30}),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))
	assert.Contains(t, buf.String(), "Value over Year")
}

func TestMarkdownAndHTML(t *testing.T) {
	md := Markdown(sampleFindings())
	assert.True(t, strings.HasPrefix(md, "# Survey analysis"))
	assert.Contains(t, md, "| Age |")

	html := HTML(sampleFindings())
	assert.Contains(t, string(html), "<h1")
}

func TestHistogramChart_BinsCoverRange(t *testing.T) {
	spec := HistogramChart("ages", "Age", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 5)

	require.Len(t, spec.Series, 1)
	assert.Len(t, spec.Series[0].Values, 5)
	total := 0.0
	for _, v := range spec.Series[0].Values {
		total += v
	}
	assert.InDelta(t, 10.0, total, 1e-9)
}

func TestStackedBarChart_OneSeriesPerColumnLabel(t *testing.T) {
	ct := dstats.CrossTable{
		RowColumn: "Region", ColColumn: "Answer",
		RowLabels: []string{"N", "S"},
		ColLabels: []string{"no", "yes"},
		Counts:    [][]int{{1, 2}, {3, 4}},
	}
	spec := StackedBarChart("answers by region", ct)

	require.Len(t, spec.Series, 2)
	assert.Equal(t, "no", spec.Series[0].Name)
	assert.Equal(t, []float64{1, 3}, spec.Series[0].Values)
}

func TestBoxplotChart_SkipsUndefinedGroups(t *testing.T) {
	grouped := dstats.GroupedSummary{
		Column: "Income", GroupBy: "Region",
		Groups: map[string]dstats.Summary{
			"N": {Column: "Income", Count: 5, Min: 1, Q1: 2, Median: 3, Q3: 4, Max: 5, Defined: true},
			"S": dstats.UndefinedSummary("Income", "no non-missing values"),
		},
	}
	spec := BoxplotChart("income by region", grouped, nil)

	require.Len(t, spec.Boxes, 1)
	assert.Equal(t, "N", spec.Boxes[0].Group)
}

func TestExportXLSX_OneSheetPerChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts.xlsx")

	charts := []ChartSpec{
		TimeSeriesChart("Value over Year", "Year", "Value",
			[]float64{2019, 2020, 2021}, []float64{0, 10, 20}),
		BarChart("regions", dstats.FrequencyTable{
			Column: "Region", Total: 3,
			Entries: []dstats.FrequencyEntry{
				{Label: "N", Count: 2, Percent: 66.7},
				{Label: "S", Count: 1, Percent: 33.3},
			},
		}),
	}
	require.NoError(t, ExportXLSX(path, charts))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.ElementsMatch(t, []string{"Chart1", "Chart2"}, f.GetSheetList())
}
