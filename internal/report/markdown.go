package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"

	dstats "statpipe/domain/stats"
)

// Markdown renders the findings as a markdown document with the same
// content and rounding as the textual report.
func Markdown(f Findings) string {
	out := &strings.Builder{}
	title := f.Title
	if title == "" {
		title = "Analysis report"
	}
	fmt.Fprintf(out, "# %s\n\n", title)

	fmt.Fprintf(out, "## Data quality\n\n")
	fmt.Fprintf(out, "- source: %s, %d rows read\n", f.LoadReport.Source, f.LoadReport.Rows)
	cols := make([]string, 0, len(f.LoadReport.CoercionFailures))
	for col := range f.LoadReport.CoercionFailures {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		fmt.Fprintf(out, "- load: %d cells of `%s` became missing\n",
			f.LoadReport.CoercionFailures[col], col)
	}
	for _, step := range f.CleanReport.Steps {
		if step.NewlyMissing > 0 {
			fmt.Fprintf(out, "- clean: %s introduced %d missing values\n", step.Rule, step.NewlyMissing)
		}
		if step.RowsBefore != step.RowsAfter {
			fmt.Fprintf(out, "- clean: %s dropped %d rows (%d -> %d)\n",
				step.Rule, step.RowsBefore-step.RowsAfter, step.RowsBefore, step.RowsAfter)
		}
	}
	fmt.Fprintln(out)

	if len(f.Summaries) > 0 {
		fmt.Fprintf(out, "## Summary statistics\n\n")
		fmt.Fprintf(out, "| column | n | mean | median | min | max | stddev | q1 | q3 |\n")
		fmt.Fprintf(out, "|---|---|---|---|---|---|---|---|---|\n")
		for _, s := range f.Summaries {
			writeMarkdownSummaryRow(out, s.Column, s)
		}
		fmt.Fprintln(out)
	}
	for _, g := range f.Grouped {
		fmt.Fprintf(out, "## %s by %s\n\n", g.Column, g.GroupBy)
		fmt.Fprintf(out, "| group | n | mean | median | min | max | stddev | q1 | q3 |\n")
		fmt.Fprintf(out, "|---|---|---|---|---|---|---|---|---|\n")
		for _, label := range sortedKeys(g.Groups) {
			writeMarkdownSummaryRow(out, label, g.Groups[label])
		}
		fmt.Fprintln(out)
	}

	if len(f.Correlations) > 0 || len(f.Regressions) > 0 {
		fmt.Fprintf(out, "## Relationships\n\n")
		for _, c := range f.Correlations {
			if !c.Defined {
				fmt.Fprintf(out, "- %s vs %s: not computable (%s)\n", c.ColumnA, c.ColumnB, c.Reason)
				continue
			}
			fmt.Fprintf(out, "- %s vs %s: r=%s (%s, %s), p=%s, n=%d\n",
				c.ColumnA, c.ColumnB, num4(c.Coefficient), c.Strength(), c.Direction(),
				num4(c.PValue), c.SampleSize)
		}
		for _, r := range f.Regressions {
			if !r.Defined {
				fmt.Fprintf(out, "- %s ~ %s: not computable (%s)\n", r.Response, r.Predictor, r.Reason)
				continue
			}
			fmt.Fprintf(out, "- %s = %s + %s*%s (R2=%s, n=%d)\n",
				r.Response, num4(r.Intercept), num4(r.Slope), r.Predictor,
				num4(r.RSquared), r.SampleSize)
		}
		fmt.Fprintln(out)
	}

	if len(f.Tests) > 0 {
		fmt.Fprintf(out, "## Hypothesis tests\n\n")
		for _, t := range f.Tests {
			fmt.Fprintf(out, "- %s\n", t.Describe())
			for _, pc := range t.PostHoc {
				fmt.Fprintf(out, "  - HSD %s vs %s: diff=%s, p=%s\n",
					pc.GroupA, pc.GroupB, num4(pc.MeanDiff), num4(pc.PValue))
			}
		}
		fmt.Fprintln(out)
	}

	return out.String()
}

// HTML renders the markdown report to HTML
func HTML(f Findings) []byte {
	return markdown.ToHTML([]byte(Markdown(f)), nil, nil)
}

func writeMarkdownSummaryRow(out *strings.Builder, label string, s dstats.Summary) {
	if !s.Defined {
		fmt.Fprintf(out, "| %s | 0 | - | - | - | - | - | - | - |\n", label)
		return
	}
	fmt.Fprintf(out, "| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
		label, s.Count, num2(s.Mean), num2(s.Median), num2(s.Min), num2(s.Max),
		num2(s.StdDev), num2(s.Q1), num2(s.Q3))
}
