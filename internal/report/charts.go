package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	dstats "statpipe/domain/stats"
	"statpipe/internal/errors"
)

// ChartKind identifies one of the supported chart shapes
type ChartKind string

const (
	ChartTimeSeries ChartKind = "time_series"
	ChartScatter    ChartKind = "scatter"
	ChartGroupedBox ChartKind = "grouped_box"
	ChartBar        ChartKind = "bar"
	ChartHistogram  ChartKind = "histogram"
	ChartStackedBar ChartKind = "stacked_bar"
)

// Series is one named data series of a chart
type Series struct {
	Name   string    `json:"name"`
	X      []float64 `json:"x,omitempty"`
	Y      []float64 `json:"y,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// BoxSummary is the five-number summary of one group in a grouped boxplot
type BoxSummary struct {
	Group    string    `json:"group"`
	Min      float64   `json:"min"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	Max      float64   `json:"max"`
	Outliers []float64 `json:"outliers,omitempty"`
}

// ChartSpec describes one chart to render. Rendering is a pure sink: no
// chart feeds back into the data model.
type ChartSpec struct {
	Kind   ChartKind          `json:"kind"`
	Title  string             `json:"title"`
	XLabel string             `json:"x_label,omitempty"`
	YLabel string             `json:"y_label,omitempty"`
	Series []Series           `json:"series,omitempty"`
	Trend  *dstats.Regression `json:"trend,omitempty"` // scatter trend line
	Boxes  []BoxSummary       `json:"boxes,omitempty"` // grouped boxplot
}

// TimeSeriesChart builds a time-series spec from ordered x (e.g. year) and y
func TimeSeriesChart(title, xLabel, yLabel string, x, y []float64) ChartSpec {
	return ChartSpec{
		Kind: ChartTimeSeries, Title: title, XLabel: xLabel, YLabel: yLabel,
		Series: []Series{{Name: yLabel, X: x, Y: y}},
	}
}

// ScatterChart builds a scatter spec with an optional fitted trend line
func ScatterChart(title, xLabel, yLabel string, x, y []float64, trend *dstats.Regression) ChartSpec {
	return ChartSpec{
		Kind: ChartScatter, Title: title, XLabel: xLabel, YLabel: yLabel,
		Series: []Series{{Name: yLabel, X: x, Y: y}},
		Trend:  trend,
	}
}

// BarChart builds a bar spec from a frequency table
func BarChart(title string, freq dstats.FrequencyTable) ChartSpec {
	s := Series{Name: freq.Column}
	for _, e := range freq.Entries {
		s.Labels = append(s.Labels, e.Label)
		s.Values = append(s.Values, float64(e.Count))
	}
	return ChartSpec{Kind: ChartBar, Title: title, XLabel: freq.Column, Series: []Series{s}}
}

// HistogramChart bins values into equal-width intervals
func HistogramChart(title, label string, values []float64, bins int) ChartSpec {
	if bins < 1 {
		bins = 10
	}
	s := Series{Name: label}
	if len(values) > 0 {
		min, max := values[0], values[0]
		for _, v := range values {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		width := (max - min) / float64(bins)
		if width == 0 {
			width = 1
		}
		counts := make([]int, bins)
		for _, v := range values {
			b := int((v - min) / width)
			if b >= bins {
				b = bins - 1
			}
			counts[b]++
		}
		for b := 0; b < bins; b++ {
			lo := min + float64(b)*width
			s.Labels = append(s.Labels, fmt.Sprintf("[%.4g, %.4g)", lo, lo+width))
			s.Values = append(s.Values, float64(counts[b]))
		}
	}
	return ChartSpec{Kind: ChartHistogram, Title: title, XLabel: label, Series: []Series{s}}
}

// StackedBarChart builds a stacked bar spec from a cross-frequency table:
// one series per column label, stacked over the row labels.
func StackedBarChart(title string, ct dstats.CrossTable) ChartSpec {
	spec := ChartSpec{Kind: ChartStackedBar, Title: title, XLabel: ct.RowColumn}
	for j := range ct.ColLabels {
		colLabel := ct.ColLabels[j]
		s := Series{Name: colLabel, Labels: ct.RowLabels}
		for i := range ct.RowLabels {
			s.Values = append(s.Values, float64(ct.Counts[i][j]))
		}
		spec.Series = append(spec.Series, s)
	}
	return spec
}

// BoxplotChart builds a grouped boxplot spec from per-group summaries and
// outlier sets keyed by group label.
func BoxplotChart(title string, grouped dstats.GroupedSummary, outliers map[string][]float64) ChartSpec {
	spec := ChartSpec{Kind: ChartGroupedBox, Title: title, XLabel: grouped.GroupBy, YLabel: grouped.Column}
	for _, label := range sortedKeys(grouped.Groups) {
		s := grouped.Groups[label]
		if !s.Defined {
			continue
		}
		spec.Boxes = append(spec.Boxes, BoxSummary{
			Group: label, Min: s.Min, Q1: s.Q1, Median: s.Median, Q3: s.Q3, Max: s.Max,
			Outliers: outliers[label],
		})
	}
	return spec
}

// ExportXLSX renders chart specs into a single workbook, one sheet per
// chart with its data block and an embedded chart. excelize has no native
// box-and-whisker type, so grouped boxplots render as five-number-summary
// column charts.
func ExportXLSX(path string, charts []ChartSpec) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, spec := range charts {
		sheet := fmt.Sprintf("Chart%d", i+1)
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.WithCode(err, errors.CodeReportFailed, "creating chart sheet")
		}
		if err := renderSheet(f, sheet, spec); err != nil {
			return errors.WithCode(err, errors.CodeReportFailed,
				fmt.Sprintf("rendering chart %q", spec.Title))
		}
	}
	if len(charts) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return errors.WithCode(err, errors.CodeReportFailed, "removing default sheet")
		}
	}
	if err := f.SaveAs(path); err != nil {
		return errors.WithCode(err, errors.CodeReportFailed,
			fmt.Sprintf("writing workbook %s", path))
	}
	return nil
}

func renderSheet(f *excelize.File, sheet string, spec ChartSpec) error {
	switch spec.Kind {
	case ChartTimeSeries, ChartScatter:
		return renderXY(f, sheet, spec)
	case ChartGroupedBox:
		return renderBoxes(f, sheet, spec)
	default:
		return renderCategorical(f, sheet, spec)
	}
}

// renderXY writes x/y pairs and embeds a line or scatter chart, with the
// fitted trend values as a second series when a regression is attached.
func renderXY(f *excelize.File, sheet string, spec ChartSpec) error {
	s := spec.Series[0]
	headers := []interface{}{spec.XLabel, s.Name}
	withTrend := spec.Trend != nil && spec.Trend.Defined
	if withTrend {
		headers = append(headers, "fitted")
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i := range s.X {
		row := []interface{}{s.X[i], s.Y[i]}
		if withTrend {
			row = append(row, spec.Trend.Intercept+spec.Trend.Slope*s.X[i])
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	chartType := excelize.Line
	if spec.Kind == ChartScatter {
		chartType = excelize.Scatter
	}
	n := len(s.X)
	series := []excelize.ChartSeries{{
		Name:       s.Name,
		Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, n+1),
		Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheet, n+1),
	}}
	if withTrend {
		series = append(series, excelize.ChartSeries{
			Name:       "fitted",
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, n+1),
			Values:     fmt.Sprintf("%s!$C$2:$C$%d", sheet, n+1),
		})
	}
	return f.AddChart(sheet, "F2", &excelize.Chart{
		Type:   chartType,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: spec.Title}},
	})
}

// renderCategorical writes label/value columns and embeds a column chart,
// stacked when the spec asks for it.
func renderCategorical(f *excelize.File, sheet string, spec ChartSpec) error {
	if len(spec.Series) == 0 {
		return nil
	}
	headers := []interface{}{spec.XLabel}
	for _, s := range spec.Series {
		headers = append(headers, s.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	labels := spec.Series[0].Labels
	for i, label := range labels {
		row := []interface{}{label}
		for _, s := range spec.Series {
			row = append(row, s.Values[i])
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	chartType := excelize.Col
	if spec.Kind == ChartStackedBar {
		chartType = excelize.ColStacked
	}
	n := len(labels)
	series := make([]excelize.ChartSeries, len(spec.Series))
	for j, s := range spec.Series {
		col := columnName(j + 1)
		series[j] = excelize.ChartSeries{
			Name:       s.Name,
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, n+1),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, col, col, n+1),
		}
	}
	return f.AddChart(sheet, "H2", &excelize.Chart{
		Type:   chartType,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: spec.Title}},
	})
}

// renderBoxes writes per-group five-number summaries and embeds a column
// chart of Q1/median/Q3, with whisker extents and outliers in the block.
func renderBoxes(f *excelize.File, sheet string, spec ChartSpec) error {
	headers := []interface{}{spec.XLabel, "min", "q1", "median", "q3", "max", "outliers"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, box := range spec.Boxes {
		outliers := ""
		for k, v := range box.Outliers {
			if k > 0 {
				outliers += ", "
			}
			outliers += fmt.Sprintf("%.4g", v)
		}
		row := []interface{}{box.Group, box.Min, box.Q1, box.Median, box.Q3, box.Max, outliers}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	n := len(spec.Boxes)
	if n == 0 {
		return nil
	}
	series := make([]excelize.ChartSeries, 0, 3)
	for _, part := range []struct{ name, col string }{{"q1", "C"}, {"median", "D"}, {"q3", "E"}} {
		series = append(series, excelize.ChartSeries{
			Name:       part.name,
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, n+1),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheet, part.col, part.col, n+1),
		})
	}
	return f.AddChart(sheet, "I2", &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: spec.Title}},
	})
}

// columnName converts a 0-based data column offset to its sheet column
// letter, column B holding the first series.
func columnName(offset int) string {
	name, _ := excelize.ColumnNumberToName(offset + 1)
	return name
}

func sortedKeys(m map[string]dstats.Summary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
