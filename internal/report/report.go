// Package report renders analysis results into a deterministic textual
// report, markdown/HTML exports and an xlsx chart workbook. The reporter is
// a pure sink: nothing here feeds back into the data model.
//
// Rounding contract for textual output: descriptive statistics 2 decimal
// places, coefficients and effect sizes 4, p-values 4, percentages 1.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	dstats "statpipe/domain/stats"
	"statpipe/internal/clean"
	"statpipe/internal/load"
)

// Findings collects everything one analysis run produced, in the order the
// reporter will render it.
type Findings struct {
	Title       string
	LoadReport  load.Report
	CleanReport clean.Report

	Summaries []dstats.Summary
	Grouped   []dstats.GroupedSummary
	Frequencies []dstats.FrequencyTable
	CrossTables []dstats.CrossTable
	Outliers    []dstats.OutlierSet

	Correlations []dstats.Correlation
	Regressions  []dstats.Regression
	Tests        []dstats.TestResult

	Charts []ChartSpec
}

// Write renders the full textual report. Identical findings produce
// byte-identical output.
func Write(w io.Writer, f Findings) error {
	out := &strings.Builder{}

	heading(out, f.Title)
	writeDataQuality(out, f)
	writeSummaries(out, f)
	writeFrequencies(out, f)
	writeOutliers(out, f)
	writeRelationships(out, f)
	writeTests(out, f)
	writeChartPreviews(out, f)

	_, err := io.WriteString(w, out.String())
	return err
}

func heading(out *strings.Builder, title string) {
	if title == "" {
		title = "Analysis report"
	}
	fmt.Fprintf(out, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
}

// writeDataQuality surfaces the observable side effects of loading and
// cleaning: rows read, cells coerced to missing, rows dropped.
func writeDataQuality(out *strings.Builder, f Findings) {
	fmt.Fprintf(out, "Data quality\n------------\n")
	fmt.Fprintf(out, "source: %s, %d rows read\n", f.LoadReport.Source, f.LoadReport.Rows)

	cols := make([]string, 0, len(f.LoadReport.CoercionFailures))
	for col := range f.LoadReport.CoercionFailures {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		fmt.Fprintf(out, "load: %d cells of %q failed to parse and became missing\n",
			f.LoadReport.CoercionFailures[col], col)
	}

	for _, step := range f.CleanReport.Steps {
		switch {
		case step.RowsBefore != step.RowsAfter || strings.HasPrefix(step.Rule, "require"):
			fmt.Fprintf(out, "clean: %s dropped %d rows (%d -> %d)\n",
				step.Rule, step.RowsBefore-step.RowsAfter, step.RowsBefore, step.RowsAfter)
		case step.NewlyMissing > 0:
			fmt.Fprintf(out, "clean: %s introduced %d missing values\n", step.Rule, step.NewlyMissing)
		case step.Changed > 0:
			fmt.Fprintf(out, "clean: %s changed %d values\n", step.Rule, step.Changed)
		}
	}
	fmt.Fprintln(out)
}

func writeSummaries(out *strings.Builder, f Findings) {
	if len(f.Summaries) == 0 && len(f.Grouped) == 0 {
		return
	}
	fmt.Fprintf(out, "Summary statistics\n------------------\n")
	if len(f.Summaries) > 0 {
		t := summaryTable(out)
		for _, s := range f.Summaries {
			t.Append(summaryRow(s.Column, s))
		}
		t.Render()
	}
	for _, g := range f.Grouped {
		fmt.Fprintf(out, "\n%s by %s:\n", g.Column, g.GroupBy)
		t := summaryTable(out)
		for _, label := range sortedKeys(g.Groups) {
			t.Append(summaryRow(label, g.Groups[label]))
		}
		t.Render()
	}
	fmt.Fprintln(out)
}

func summaryTable(out *strings.Builder) *tablewriter.Table {
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"column", "n", "mean", "median", "min", "max", "stddev", "q1", "q3"})
	t.SetBorder(false)
	return t
}

func summaryRow(label string, s dstats.Summary) []string {
	if !s.Defined {
		return []string{label, "0", "-", "-", "-", "-", "-", "-", "-"}
	}
	return []string{
		label,
		fmt.Sprintf("%d", s.Count),
		num2(s.Mean), num2(s.Median), num2(s.Min), num2(s.Max),
		num2(s.StdDev), num2(s.Q1), num2(s.Q3),
	}
}

func writeFrequencies(out *strings.Builder, f Findings) {
	for _, freq := range f.Frequencies {
		fmt.Fprintf(out, "Frequencies: %s (n=%d)\n", freq.Column, freq.Total)
		t := tablewriter.NewWriter(out)
		t.SetHeader([]string{"label", "count", "percent"})
		t.SetBorder(false)
		for _, e := range freq.Entries {
			t.Append([]string{e.Label, fmt.Sprintf("%d", e.Count), pct(e.Percent)})
		}
		t.Render()
		fmt.Fprintln(out)
	}
	for _, ct := range f.CrossTables {
		fmt.Fprintf(out, "Cross-frequencies: %s x %s (n=%d)\n", ct.RowColumn, ct.ColColumn, ct.Total)
		t := tablewriter.NewWriter(out)
		t.SetHeader(append([]string{ct.RowColumn}, ct.ColLabels...))
		t.SetBorder(false)
		for i, rowLabel := range ct.RowLabels {
			row := []string{rowLabel}
			for j := range ct.ColLabels {
				row = append(row, fmt.Sprintf("%d (%s)", ct.Counts[i][j], pct(ct.RowPercents[i][j])))
			}
			t.Append(row)
		}
		t.Render()
		fmt.Fprintln(out)
	}
}

func writeOutliers(out *strings.Builder, f Findings) {
	if len(f.Outliers) == 0 {
		return
	}
	fmt.Fprintf(out, "Outliers (1.5*IQR fences)\n-------------------------\n")
	for _, set := range f.Outliers {
		if !set.Defined {
			fmt.Fprintf(out, "%s: not computable (%s)\n", set.Column, set.Reason)
			continue
		}
		fmt.Fprintf(out, "%s: fences [%s, %s], %d outliers\n",
			set.Column, num2(set.LowerFence), num2(set.UpperFence), len(set.Outliers))
		for _, o := range set.Outliers {
			fmt.Fprintf(out, "  row %d: %s\n", o.RowID, num2(o.Value))
		}
	}
	fmt.Fprintln(out)
}

func writeRelationships(out *strings.Builder, f Findings) {
	if len(f.Correlations) == 0 && len(f.Regressions) == 0 {
		return
	}
	fmt.Fprintf(out, "Relationships\n-------------\n")
	for _, c := range f.Correlations {
		if !c.Defined {
			fmt.Fprintf(out, "%s vs %s: not computable (%s)\n", c.ColumnA, c.ColumnB, c.Reason)
			continue
		}
		fmt.Fprintf(out, "%s vs %s: r=%s (%s, %s), p=%s, n=%d\n",
			c.ColumnA, c.ColumnB, num4(c.Coefficient), c.Strength(), c.Direction(),
			num4(c.PValue), c.SampleSize)
	}
	for _, r := range f.Regressions {
		if !r.Defined {
			fmt.Fprintf(out, "%s ~ %s: not computable (%s)\n", r.Response, r.Predictor, r.Reason)
			continue
		}
		fmt.Fprintf(out, "%s = %s + %s*%s (R2=%s, %s trend, n=%d)\n",
			r.Response, num4(r.Intercept), num4(r.Slope), r.Predictor,
			num4(r.RSquared), r.Trend(), r.SampleSize)
	}
	fmt.Fprintln(out)
}

func writeTests(out *strings.Builder, f Findings) {
	if len(f.Tests) == 0 {
		return
	}
	fmt.Fprintf(out, "Hypothesis tests\n----------------\n")
	for _, t := range f.Tests {
		fmt.Fprintf(out, "%s\n", t.Describe())
		for _, g := range t.Groups {
			fmt.Fprintf(out, "  %s: n=%d, mean=%s\n", g.Label, g.N, num2(g.Mean))
		}
		for _, pc := range t.PostHoc {
			marker := ""
			if pc.Significant {
				marker = " *"
			}
			fmt.Fprintf(out, "  HSD %s vs %s: diff=%s, q=%s, p=%s%s\n",
				pc.GroupA, pc.GroupB, num4(pc.MeanDiff), num4(pc.QStatistic), num4(pc.PValue), marker)
		}
	}
	fmt.Fprintln(out)
}

// writeChartPreviews renders terminal previews for the chart kinds that
// read well as sparklines; the full charts go to the xlsx workbook.
func writeChartPreviews(out *strings.Builder, f Findings) {
	for _, spec := range f.Charts {
		switch spec.Kind {
		case ChartTimeSeries:
			if len(spec.Series) > 0 && len(spec.Series[0].Y) > 1 {
				fmt.Fprintf(out, "%s\n%s\n\n", spec.Title,
					asciigraph.Plot(spec.Series[0].Y, asciigraph.Height(8)))
			}
		case ChartHistogram:
			if len(spec.Series) > 0 && len(spec.Series[0].Values) > 1 {
				fmt.Fprintf(out, "%s\n%s\n\n", spec.Title,
					asciigraph.Plot(spec.Series[0].Values, asciigraph.Height(8)))
			}
		}
	}
}

// Fixed-precision formatting helpers
func num2(v float64) string { return fmt.Sprintf("%.2f", v) }
func num4(v float64) string { return fmt.Sprintf("%.4f", v) }
func pct(v float64) string  { return fmt.Sprintf("%.1f%%", v) }
