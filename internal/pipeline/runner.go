// Package pipeline threads one dataset through the analysis stages:
// load -> clean -> describe/relate -> report. Execution is strictly
// sequential; each stage takes the Dataset value and returns results, and
// nothing is shared or mutated across stages.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"statpipe/domain/core"
	dstats "statpipe/domain/stats"
	"statpipe/domain/table"
	"statpipe/internal"
	"statpipe/internal/clean"
	"statpipe/internal/describe"
	"statpipe/internal/errors"
	"statpipe/internal/load"
	"statpipe/internal/relate"
	"statpipe/internal/report"
)

// Pair names two columns participating in a pairwise computation
type Pair struct {
	A string
	B string
}

// GroupPair names a measured column and its categorical grouping column
type GroupPair struct {
	Column  string
	GroupBy string
}

// ChartRequest declares one chart to build from the cleaned dataset
type ChartRequest struct {
	Kind    report.ChartKind
	Title   string
	X       string // predictor/time column for scatter and time series
	Y       string // response column for scatter and time series
	Column  string // value column for histogram, bar, boxplot
	GroupBy string // grouping column for boxplot and stacked bar
	Bins    int    // histogram bins, 10 if zero
}

// RunSpec declares everything one run computes. Column references are
// validated when first used; an unknown column fails that computation
// rather than silently yielding nulls.
type RunSpec struct {
	Title string

	SourcePath string
	Sheet      string // for xlsx sources
	Columns    []table.ColumnSpec
	Options    load.Options

	Rules []clean.Rule

	Summaries        []string
	GroupedSummaries []GroupPair
	Frequencies      []string
	CrossTables      []Pair
	OutlierColumns   []string

	Correlations     []Pair
	Regressions      []Pair // A = response, B = predictor
	TwoSampleTests   []GroupPair
	AssociationTests []Pair
	VarianceTests    []GroupPair

	Charts []ChartRequest
}

// StageRecord logs one completed stage for diagnostics
type StageRecord struct {
	Stage     string
	Artifacts int
	At        core.Timestamp
}

// Result is the outcome of one run: the cleaned dataset, the findings the
// reporter consumes, and a stage log.
type Result struct {
	RunID    core.RunID
	Dataset  *table.Dataset
	Findings report.Findings
	Stages   []StageRecord
}

// Runner executes RunSpecs
type Runner struct {
	log    *internal.Logger
	relate *relate.Engine
}

// NewRunner creates a pipeline runner
func NewRunner(logger *internal.Logger) *Runner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Runner{log: logger, relate: relate.NewEngine()}
}

// Run executes the whole pipeline once. Only a load failure is fatal;
// individual computations that lack data land in the findings as explicit
// not-computable results and the run continues.
func (r *Runner) Run(spec RunSpec) (*Result, error) {
	result := &Result{RunID: core.RunID(core.NewID())}
	result.Findings.Title = spec.Title

	// Load
	ds, loadReport, err := r.loadStage(spec)
	if err != nil {
		return nil, err
	}
	result.Findings.LoadReport = loadReport
	r.record(result, "load", 1)

	// Clean
	ds, cleanReport, err := clean.Apply(ds, spec.Rules...)
	if err != nil {
		return nil, err
	}
	result.Findings.CleanReport = cleanReport
	result.Dataset = ds
	r.record(result, "clean", len(cleanReport.Steps))

	// Describe
	r.describeStage(spec, ds, &result.Findings)
	r.record(result, "describe",
		len(result.Findings.Summaries)+len(result.Findings.Frequencies)+
			len(result.Findings.CrossTables)+len(result.Findings.Outliers))

	// Relate
	r.relateStage(spec, ds, &result.Findings)
	r.record(result, "relate",
		len(result.Findings.Correlations)+len(result.Findings.Regressions)+
			len(result.Findings.Tests))

	// Charts
	r.chartStage(spec, ds, &result.Findings)
	r.record(result, "charts", len(result.Findings.Charts))

	return result, nil
}

func (r *Runner) loadStage(spec RunSpec) (*table.Dataset, load.Report, error) {
	if strings.EqualFold(filepath.Ext(spec.SourcePath), ".xlsx") {
		sheet := spec.Sheet
		if sheet == "" {
			sheet = "Sheet1"
		}
		return load.ReadXLSX(spec.SourcePath, sheet, spec.Columns, spec.Options)
	}
	return load.ReadCSV(spec.SourcePath, spec.Columns, spec.Options)
}

func (r *Runner) describeStage(spec RunSpec, ds *table.Dataset, f *report.Findings) {
	for _, col := range spec.Summaries {
		s, err := describe.Summarize(ds, col)
		if err != nil {
			r.skip("summarize", col, err)
			continue
		}
		f.Summaries = append(f.Summaries, s)
	}
	for _, gp := range spec.GroupedSummaries {
		groups, err := describe.SummarizeBy(ds, gp.Column, gp.GroupBy)
		if err != nil {
			r.skip("grouped summarize", gp.Column, err)
			continue
		}
		f.Grouped = append(f.Grouped, dstats.GroupedSummary{
			Column: gp.Column, GroupBy: gp.GroupBy, Groups: groups,
		})
	}
	for _, col := range spec.Frequencies {
		freq, err := describe.Frequency(ds, col)
		if err != nil {
			r.skip("frequency", col, err)
			continue
		}
		f.Frequencies = append(f.Frequencies, freq)
	}
	for _, pair := range spec.CrossTables {
		ct, err := describe.CrossFrequency(ds, pair.A, pair.B)
		if err != nil {
			r.skip("cross-frequency", pair.A+"x"+pair.B, err)
			continue
		}
		f.CrossTables = append(f.CrossTables, ct)
	}
	for _, col := range spec.OutlierColumns {
		set, err := describe.Outliers(ds, col)
		if err != nil {
			r.skip("outliers", col, err)
			continue
		}
		f.Outliers = append(f.Outliers, set)
	}
}

func (r *Runner) relateStage(spec RunSpec, ds *table.Dataset, f *report.Findings) {
	for _, pair := range spec.Correlations {
		c, err := r.relate.Correlate(ds, pair.A, pair.B)
		if err != nil {
			r.skip("correlate", pair.A+"x"+pair.B, err)
			continue
		}
		f.Correlations = append(f.Correlations, c)
	}
	for _, pair := range spec.Regressions {
		reg, err := r.relate.FitLinear(ds, pair.A, pair.B)
		if err != nil {
			r.skip("regression", pair.A+"~"+pair.B, err)
			continue
		}
		f.Regressions = append(f.Regressions, reg)
	}
	for _, gp := range spec.TwoSampleTests {
		t, err := r.relate.TwoSampleTest(ds, gp.Column, gp.GroupBy)
		if err != nil {
			// A wrong group count is a per-test condition; surface it in
			// the findings and keep the run going.
			t = dstats.UndefinedTest(dstats.TestWelchT, err.Error())
		}
		f.Tests = append(f.Tests, t)
	}
	for _, pair := range spec.AssociationTests {
		t, err := r.relate.AssociationTest(ds, pair.A, pair.B)
		if err != nil {
			t = dstats.UndefinedTest(dstats.TestChiSquare, err.Error())
		}
		f.Tests = append(f.Tests, t)
	}
	for _, gp := range spec.VarianceTests {
		t, err := r.relate.VarianceTest(ds, gp.Column, gp.GroupBy)
		if err != nil {
			t = dstats.UndefinedTest(dstats.TestANOVA, err.Error())
		}
		f.Tests = append(f.Tests, t)
	}
}

func (r *Runner) chartStage(spec RunSpec, ds *table.Dataset, f *report.Findings) {
	for _, req := range spec.Charts {
		chart, err := r.buildChart(spec, ds, req, f)
		if err != nil {
			r.skip("chart", req.Title, err)
			continue
		}
		f.Charts = append(f.Charts, chart)
	}
}

func (r *Runner) buildChart(spec RunSpec, ds *table.Dataset, req ChartRequest, f *report.Findings) (report.ChartSpec, error) {
	switch req.Kind {
	case report.ChartTimeSeries:
		xs, ys, _, err := ds.PairedFloats(req.X, req.Y)
		if err != nil {
			return report.ChartSpec{}, err
		}
		return report.TimeSeriesChart(req.Title, req.X, req.Y, xs, ys), nil

	case report.ChartScatter:
		xs, ys, _, err := ds.PairedFloats(req.X, req.Y)
		if err != nil {
			return report.ChartSpec{}, err
		}
		// Reuse a regression computed for the same pair as the trend line
		var trend *dstats.Regression
		for i := range f.Regressions {
			reg := &f.Regressions[i]
			if reg.Response == req.Y && reg.Predictor == req.X && reg.Defined {
				trend = reg
				break
			}
		}
		return report.ScatterChart(req.Title, req.X, req.Y, xs, ys, trend), nil

	case report.ChartHistogram:
		values, _, err := ds.NumericValues(req.Column)
		if err != nil {
			return report.ChartSpec{}, err
		}
		return report.HistogramChart(req.Title, req.Column, values, req.Bins), nil

	case report.ChartBar:
		freq, err := describe.Frequency(ds, req.Column)
		if err != nil {
			return report.ChartSpec{}, err
		}
		return report.BarChart(req.Title, freq), nil

	case report.ChartStackedBar:
		ct, err := describe.CrossFrequency(ds, req.Column, req.GroupBy)
		if err != nil {
			return report.ChartSpec{}, err
		}
		return report.StackedBarChart(req.Title, ct), nil

	case report.ChartGroupedBox:
		groups, err := describe.SummarizeBy(ds, req.Column, req.GroupBy)
		if err != nil {
			return report.ChartSpec{}, err
		}
		grouped := dstats.GroupedSummary{Column: req.Column, GroupBy: req.GroupBy, Groups: groups}
		return report.BoxplotChart(req.Title, grouped, groupOutliers(ds, req.Column, req.GroupBy, groups)), nil
	}
	return report.ChartSpec{}, errors.New(errors.CodeReportFailed,
		fmt.Sprintf("unknown chart kind %q", req.Kind))
}

// groupOutliers collects per-group outlier values using each group's own
// IQR fences, for boxplot whisker annotation.
func groupOutliers(ds *table.Dataset, column, groupBy string, groups map[string]dstats.Summary) map[string][]float64 {
	valueCol, err := ds.Column(column)
	if err != nil {
		return nil
	}
	groupCol, err := ds.Column(groupBy)
	if err != nil {
		return nil
	}
	out := make(map[string][]float64)
	for pos := 0; pos < ds.RowCount(); pos++ {
		v, okV := valueCol.Values[pos].Float()
		label, okG := groupCol.Values[pos].Label()
		if !okV || !okG {
			continue
		}
		s, ok := groups[label]
		if !ok || !s.Defined {
			continue
		}
		iqr := s.IQR()
		if v < s.Q1-1.5*iqr || v > s.Q3+1.5*iqr {
			out[label] = append(out[label], v)
		}
	}
	return out
}

func (r *Runner) record(result *Result, stage string, artifacts int) {
	r.log.Debug("stage %s complete (%d artifacts)", stage, artifacts)
	result.Stages = append(result.Stages, StageRecord{
		Stage: stage, Artifacts: artifacts, At: core.Now(),
	})
}

func (r *Runner) skip(op, target string, err error) {
	r.log.Warn("skipping %s %s: %v", op, target, err)
}
