package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	dstats "statpipe/domain/stats"
	"statpipe/domain/table"
	"statpipe/internal/clean"
	"statpipe/internal/load"
	"statpipe/internal/report"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	path := writeTempCSV(t,
		"Gender,Age,Year,Value\n"+
			"man,30,2019,0\n"+
			"woman,x,2020,10\n"+
			"man,40,2021,20\n"+
			"woman,35,2022,30\n")

	spec := RunSpec{
		Title:      "survey",
		SourcePath: path,
		Columns: []table.ColumnSpec{
			table.OrdinalSpec("Year"),
			table.NumericSpec("Value"),
		},
		Options: load.DefaultOptions(),
		Rules: []clean.Rule{
			clean.Remap{Column: "Gender", From: "man", To: "male"},
			clean.Remap{Column: "Gender", From: "woman", To: "female"},
			clean.Coerce{Column: "Age"},
		},
		Summaries:      []string{"Age", "Value"},
		Frequencies:    []string{"Gender"},
		OutlierColumns: []string{"Value"},
		Correlations:   []Pair{{A: "Year", B: "Value"}},
		Regressions:    []Pair{{A: "Value", B: "Year"}},
		Charts: []ChartRequest{
			{Kind: report.ChartTimeSeries, Title: "Value over Year", X: "Year", Y: "Value"},
			{Kind: report.ChartScatter, Title: "Value vs Year", X: "Year", Y: "Value"},
		},
	}

	result, err := NewRunner(nil).Run(spec)
	require.NoError(t, err)

	assert.NotEmpty(t, string(result.RunID))
	assert.Equal(t, 4, result.Dataset.RowCount())

	// One malformed Age cell became missing during coercion.
	assert.Equal(t, 1, result.Findings.CleanReport.NewlyMissing())

	require.Len(t, result.Findings.Summaries, 2)
	age := result.Findings.Summaries[0]
	assert.Equal(t, 3, age.Count)

	require.Len(t, result.Findings.Frequencies, 1)
	assert.Equal(t, "female", result.Findings.Frequencies[0].Entries[0].Label)

	require.Len(t, result.Findings.Correlations, 1)
	assert.InDelta(t, 1.0, result.Findings.Correlations[0].Coefficient, 1e-9)

	require.Len(t, result.Findings.Regressions, 1)
	reg := result.Findings.Regressions[0]
	require.True(t, reg.Defined)
	assert.InDelta(t, 10.0, reg.Slope, 1e-9)
	assert.InDelta(t, -20190.0, reg.Intercept, 1e-9)
	assert.InDelta(t, 1.0, reg.RSquared, 1e-9)

	// The scatter chart picks up the matching regression as its trend.
	require.Len(t, result.Findings.Charts, 2)
	scatter := result.Findings.Charts[1]
	require.NotNil(t, scatter.Trend)
	assert.InDelta(t, 10.0, scatter.Trend.Slope, 1e-9)

	stages := make([]string, 0, len(result.Stages))
	for _, s := range result.Stages {
		stages = append(stages, s.Stage)
	}
	assert.Equal(t, []string{"load", "clean", "describe", "relate", "charts"}, stages)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, result.Findings))
	assert.Contains(t, buf.String(), "survey")
}

func TestRun_RowFilterDropsIncompleteRows(t *testing.T) {
	path := writeTempCSV(t, "Gender,Age\nman,30\nwoman,x\nman,40\n")

	spec := RunSpec{
		SourcePath: path,
		Options:    load.DefaultOptions(),
		Rules: []clean.Rule{
			clean.Remap{Column: "Gender", From: "man", To: "male"},
			clean.Remap{Column: "Gender", From: "woman", To: "female"},
			clean.Coerce{Column: "Age"},
			clean.RequireColumns{Columns: []string{"Age"}},
		},
		Summaries: []string{"Age"},
	}

	result, err := NewRunner(nil).Run(spec)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Dataset.RowCount())
	genders, _, err := result.Dataset.Labels("Gender")
	require.NoError(t, err)
	assert.Equal(t, []string{"male", "male"}, genders)
}

func TestRun_MissingSourceIsFatal(t *testing.T) {
	spec := RunSpec{SourcePath: filepath.Join(t.TempDir(), "absent.csv")}
	_, err := NewRunner(nil).Run(spec)
	require.Error(t, err)
}

func TestRun_WrongGroupCountLandsInFindings(t *testing.T) {
	path := writeTempCSV(t, "Score,Group\n1,a\n2,b\n3,c\n")

	spec := RunSpec{
		SourcePath:     path,
		Columns:        []table.ColumnSpec{table.NumericSpec("Score")},
		Options:        load.DefaultOptions(),
		TwoSampleTests: []GroupPair{{Column: "Score", GroupBy: "Group"}},
	}

	result, err := NewRunner(nil).Run(spec)
	require.NoError(t, err)

	require.Len(t, result.Findings.Tests, 1)
	tr := result.Findings.Tests[0]
	assert.Equal(t, dstats.TestWelchT, tr.Test)
	assert.False(t, tr.Defined)
	assert.Contains(t, tr.Reason, "3 distinct labels")
}

func TestRun_UnknownColumnSkipsComputation(t *testing.T) {
	path := writeTempCSV(t, "A\n1\n2\n")

	spec := RunSpec{
		SourcePath: path,
		Columns:    []table.ColumnSpec{table.NumericSpec("A")},
		Options:    load.DefaultOptions(),
		Summaries:  []string{"A", "Nope"},
	}

	result, err := NewRunner(nil).Run(spec)
	require.NoError(t, err)
	require.Len(t, result.Findings.Summaries, 1)
	assert.Equal(t, "A", result.Findings.Summaries[0].Column)
}

func TestRun_XLSXSource(t *testing.T) {
	// Round-trip through the chart exporter is covered elsewhere; here a
	// minimal workbook written by hand feeds the loader.
	path := filepath.Join(t.TempDir(), "data.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Age", "Region"},
		{30, "N"},
		{40, "S"},
	})

	spec := RunSpec{
		SourcePath: path,
		Columns:    []table.ColumnSpec{table.NumericSpec("Age")},
		Options:    load.DefaultOptions(),
		Summaries:  []string{"Age"},
	}

	result, err := NewRunner(nil).Run(spec)
	require.NoError(t, err)
	require.Len(t, result.Findings.Summaries, 1)
	assert.Equal(t, 2, result.Findings.Summaries[0].Count)
}
