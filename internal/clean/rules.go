// Package clean applies ordered cleaning rules to a dataset: label remaps,
// invalidation to missing, numeric coercion and required-column row filters.
// Every rule returns a new dataset; rule order is preserved exactly as
// configured since later rules depend on earlier normalization.
package clean

import (
	"fmt"

	"statpipe/domain/table"
	"statpipe/internal/errors"
	"statpipe/internal/load"
)

// Rule is one named transformation applied to a dataset
type Rule interface {
	Name() string
	apply(ds *table.Dataset, step *StepReport) (*table.Dataset, error)
}

// StepReport records the observable effect of one rule application. The
// reporter consumes these in the data-quality section, since newly-missing
// counts and row drops signal data problems.
type StepReport struct {
	Rule         string `json:"rule"`
	Column       string `json:"column,omitempty"`
	Changed      int    `json:"changed,omitempty"`
	NewlyMissing int    `json:"newly_missing,omitempty"`
	RowsBefore   int    `json:"rows_before,omitempty"`
	RowsAfter    int    `json:"rows_after,omitempty"`
}

// Report aggregates per-rule effects in application order
type Report struct {
	Steps []StepReport `json:"steps"`
}

// NewlyMissing totals missing markers introduced across all rules
func (r Report) NewlyMissing() int {
	total := 0
	for _, s := range r.Steps {
		total += s.NewlyMissing
	}
	return total
}

// Apply runs rules in order, producing a new dataset and a report of the
// observable effects. The input dataset is never mutated.
func Apply(ds *table.Dataset, rules ...Rule) (*table.Dataset, Report, error) {
	report := Report{Steps: make([]StepReport, 0, len(rules))}
	for _, rule := range rules {
		step := StepReport{Rule: rule.Name()}
		next, err := rule.apply(ds, &step)
		if err != nil {
			return nil, Report{}, errors.WithCode(err, errors.CodeCleanFailed,
				fmt.Sprintf("applying rule %s", rule.Name()))
		}
		report.Steps = append(report.Steps, step)
		ds = next
	}
	return ds, report, nil
}

// ============================================================================
// REMAP
// ============================================================================

// Remap replaces an exact, case-sensitive label with another in one column
type Remap struct {
	Column string
	From   string
	To     string
}

func (r Remap) Name() string {
	return fmt.Sprintf("remap(%s: %q -> %q)", r.Column, r.From, r.To)
}

func (r Remap) apply(ds *table.Dataset, step *StepReport) (*table.Dataset, error) {
	step.Column = r.Column
	col, err := ds.Column(r.Column)
	if err != nil {
		return nil, err
	}
	values := make([]table.Value, len(col.Values))
	for i, v := range col.Values {
		if label, ok := v.Label(); ok && label == r.From {
			values[i] = table.NewCategorical(r.To)
			step.Changed++
		} else {
			values[i] = v
		}
	}
	return replaceColumn(ds, col.Spec, values)
}

// ============================================================================
// INVALIDATE
// ============================================================================

// Invalidate converts exact-matching labels in one column to missing.
// HeaderFragment targets the sentinel where a cell holds the column name
// itself, a mis-parsed header fragment.
type Invalidate struct {
	Column string
	Values []string
}

// HeaderFragment invalidates cells equal to the column's own name
func HeaderFragment(column string) Invalidate {
	return Invalidate{Column: column, Values: []string{column}}
}

func (r Invalidate) Name() string {
	return fmt.Sprintf("invalidate(%s: %v)", r.Column, r.Values)
}

func (r Invalidate) apply(ds *table.Dataset, step *StepReport) (*table.Dataset, error) {
	step.Column = r.Column
	col, err := ds.Column(r.Column)
	if err != nil {
		return nil, err
	}
	values := make([]table.Value, len(col.Values))
	for i, v := range col.Values {
		values[i] = v
		label, ok := v.Label()
		if !ok {
			continue
		}
		for _, bad := range r.Values {
			if label == bad {
				values[i] = table.NewMissing(col.Spec.Kind)
				step.NewlyMissing++
				break
			}
		}
	}
	return replaceColumn(ds, col.Spec, values)
}

// InvalidateOutOfSpec converts non-missing values failing the column's
// validity predicate (allowed labels or plausible range) to missing.
type InvalidateOutOfSpec struct {
	Column string
}

func (r InvalidateOutOfSpec) Name() string {
	return fmt.Sprintf("invalidate_out_of_spec(%s)", r.Column)
}

func (r InvalidateOutOfSpec) apply(ds *table.Dataset, step *StepReport) (*table.Dataset, error) {
	step.Column = r.Column
	col, err := ds.Column(r.Column)
	if err != nil {
		return nil, err
	}
	values := make([]table.Value, len(col.Values))
	for i, v := range col.Values {
		if !col.Spec.Valid(v) {
			values[i] = table.NewMissing(col.Spec.Kind)
			step.NewlyMissing++
		} else {
			values[i] = v
		}
	}
	return replaceColumn(ds, col.Spec, values)
}

// ============================================================================
// COERCE
// ============================================================================

// Coerce parses a text column into a numeric one. Unparseable values become
// missing; the count of newly-introduced missing values is reported.
type Coerce struct {
	Column      string
	DecimalMark rune // '.' if zero
}

func (r Coerce) Name() string {
	return fmt.Sprintf("coerce(%s)", r.Column)
}

func (r Coerce) apply(ds *table.Dataset, step *StepReport) (*table.Dataset, error) {
	step.Column = r.Column
	col, err := ds.Column(r.Column)
	if err != nil {
		return nil, err
	}
	if col.Spec.Kind == table.KindNumeric {
		// Already numeric; nothing to parse.
		return ds, nil
	}
	spec := col.Spec
	spec.Kind = table.KindNumeric
	spec.AllowedLabels = nil
	values := make([]table.Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing() {
			values[i] = table.NewMissing(table.KindNumeric)
			continue
		}
		if f, ok := v.Float(); ok {
			values[i] = table.NewNumeric(f)
			continue
		}
		label, _ := v.Label()
		f, err := load.ParseNumber(label, r.DecimalMark)
		if err != nil {
			values[i] = table.NewMissing(table.KindNumeric)
			step.NewlyMissing++
			continue
		}
		values[i] = table.NewNumeric(f)
		step.Changed++
	}
	return replaceColumn(ds, spec, values)
}

// ============================================================================
// ROW FILTER
// ============================================================================

// RequireColumns drops rows missing a value in any of the named columns.
// The before/after row counts are reported.
type RequireColumns struct {
	Columns []string
}

func (r RequireColumns) Name() string {
	return fmt.Sprintf("require(%v)", r.Columns)
}

func (r RequireColumns) apply(ds *table.Dataset, step *StepReport) (*table.Dataset, error) {
	step.RowsBefore = ds.RowCount()
	complete, err := ds.CompleteRows(r.Columns...)
	if err != nil {
		return nil, err
	}
	keep := make(map[int]bool, len(complete))
	for _, pos := range complete {
		keep[pos] = true
	}
	filtered := ds.Filter(func(pos int) bool { return keep[pos] })
	step.RowsAfter = filtered.RowCount()
	return filtered, nil
}

// FilterRows drops rows failing a caller-supplied content predicate. This is
// the escape hatch for dataset-specific bad rows that callers can identify
// by content; position-based drops stay out of the pipeline.
type FilterRows struct {
	Label string
	Keep  func(ds *table.Dataset, pos int) bool
}

func (r FilterRows) Name() string {
	return fmt.Sprintf("filter(%s)", r.Label)
}

func (r FilterRows) apply(ds *table.Dataset, step *StepReport) (*table.Dataset, error) {
	step.RowsBefore = ds.RowCount()
	filtered := ds.Filter(func(pos int) bool { return r.Keep(ds, pos) })
	step.RowsAfter = filtered.RowCount()
	return filtered, nil
}

func replaceColumn(ds *table.Dataset, spec table.ColumnSpec, values []table.Value) (*table.Dataset, error) {
	col, err := table.NewColumn(spec, values)
	if err != nil {
		return nil, err
	}
	return ds.WithColumn(col)
}
