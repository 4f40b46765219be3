package table

import (
	"fmt"

	"statpipe/domain/core"
)

// Dataset is an immutable ordered collection of named, typed columns.
// Cleaning transformations return a new Dataset; row identifiers are stable
// source row indices that survive filtering, so downstream results can point
// back at the originating row.
type Dataset struct {
	columns []Column
	index   map[string]int
	rowIDs  []int
}

// New builds a dataset from columns. All columns must have equal length and
// distinct names. Row IDs default to 0..n-1.
func New(columns ...Column) (*Dataset, error) {
	if len(columns) == 0 {
		return &Dataset{index: map[string]int{}}, nil
	}
	n := len(columns[0].Values)
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if len(col.Values) != n {
			return nil, fmt.Errorf("%w: %q has %d rows, %q has %d",
				core.ErrColumnLength, columns[0].Name(), n, col.Name(), len(col.Values))
		}
		if _, dup := index[col.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateColumn, col.Name())
		}
		index[col.Name()] = i
	}
	rowIDs := make([]int, n)
	for i := range rowIDs {
		rowIDs[i] = i
	}
	return &Dataset{columns: columns, index: index, rowIDs: rowIDs}, nil
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int {
	return len(d.rowIDs)
}

// ColumnCount returns the number of columns
func (d *Dataset) ColumnCount() int {
	return len(d.columns)
}

// ColumnNames returns column names in declaration order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name()
	}
	return names
}

// Column resolves a column by name, failing fast on unknown names rather
// than producing a silent null computation downstream.
func (d *Dataset) Column(name string) (Column, error) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", core.ErrColumnNotFound, name)
	}
	return d.columns[i], nil
}

// RowID returns the stable source row identifier for a positional row
func (d *Dataset) RowID(pos int) int {
	return d.rowIDs[pos]
}

// WithColumn returns a new dataset with the named column replaced. The
// original dataset is left untouched.
func (d *Dataset) WithColumn(col Column) (*Dataset, error) {
	i, ok := d.index[col.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrColumnNotFound, col.Name())
	}
	if len(col.Values) != d.RowCount() {
		return nil, fmt.Errorf("%w: replacement %q has %d rows, dataset has %d",
			core.ErrColumnLength, col.Name(), len(col.Values), d.RowCount())
	}
	columns := make([]Column, len(d.columns))
	copy(columns, d.columns)
	columns[i] = col
	return &Dataset{columns: columns, index: d.index, rowIDs: d.rowIDs}, nil
}

// Filter returns a new dataset keeping only positional rows where keep
// returns true. Row IDs are carried over, not renumbered.
func (d *Dataset) Filter(keep func(pos int) bool) *Dataset {
	kept := make([]int, 0, d.RowCount())
	for pos := range d.rowIDs {
		if keep(pos) {
			kept = append(kept, pos)
		}
	}
	columns := make([]Column, len(d.columns))
	for i, col := range d.columns {
		values := make([]Value, len(kept))
		for j, pos := range kept {
			values[j] = col.Values[pos]
		}
		columns[i] = Column{Spec: col.Spec, Values: values}
	}
	rowIDs := make([]int, len(kept))
	for j, pos := range kept {
		rowIDs[j] = d.rowIDs[pos]
	}
	return &Dataset{columns: columns, index: d.index, rowIDs: rowIDs}
}

// CompleteRows returns the positional rows where every named column is
// non-missing: the pairwise-complete row set every multi-column statistic
// is computed over.
func (d *Dataset) CompleteRows(names ...string) ([]int, error) {
	cols := make([]Column, len(names))
	for i, name := range names {
		col, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	rows := make([]int, 0, d.RowCount())
	for pos := 0; pos < d.RowCount(); pos++ {
		complete := true
		for _, col := range cols {
			if col.Values[pos].IsMissing() {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, pos)
		}
	}
	return rows, nil
}

// NumericValues returns the non-missing float values of a numeric or ordinal
// column, paired with their stable row IDs.
func (d *Dataset) NumericValues(name string) ([]float64, []int, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, nil, err
	}
	if col.Spec.Kind == KindCategorical {
		return nil, nil, fmt.Errorf("%w: %q is categorical, numeric values requested",
			core.ErrKindMismatch, name)
	}
	values := make([]float64, 0, len(col.Values))
	rowIDs := make([]int, 0, len(col.Values))
	for pos, v := range col.Values {
		if f, ok := v.Float(); ok {
			values = append(values, f)
			rowIDs = append(rowIDs, d.rowIDs[pos])
		}
	}
	return values, rowIDs, nil
}

// Labels returns the non-missing labels of a categorical column, paired
// with their stable row IDs.
func (d *Dataset) Labels(name string) ([]string, []int, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, nil, err
	}
	if col.Spec.Kind != KindCategorical {
		return nil, nil, fmt.Errorf("%w: %q is %s, labels requested",
			core.ErrKindMismatch, name, col.Spec.Kind)
	}
	labels := make([]string, 0, len(col.Values))
	rowIDs := make([]int, 0, len(col.Values))
	for pos, v := range col.Values {
		if label, ok := v.Label(); ok {
			labels = append(labels, label)
			rowIDs = append(rowIDs, d.rowIDs[pos])
		}
	}
	return labels, rowIDs, nil
}

// PairedFloats returns the float values of two numeric/ordinal columns over
// their pairwise-complete rows, with the matching row IDs.
func (d *Dataset) PairedFloats(a, b string) (xs, ys []float64, rowIDs []int, err error) {
	colA, err := d.Column(a)
	if err != nil {
		return nil, nil, nil, err
	}
	colB, err := d.Column(b)
	if err != nil {
		return nil, nil, nil, err
	}
	for pos := 0; pos < d.RowCount(); pos++ {
		x, okX := colA.Values[pos].Float()
		y, okY := colB.Values[pos].Float()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
			rowIDs = append(rowIDs, d.rowIDs[pos])
		}
	}
	return xs, ys, rowIDs, nil
}
