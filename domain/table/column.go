package table

import (
	"fmt"

	"statpipe/domain/core"
)

// ColumnSpec declares a column: its canonical name, value kind and an
// optional validity predicate (allowed label set or plausible numeric range).
type ColumnSpec struct {
	Name          string   `json:"name"`
	Kind          Kind     `json:"kind"`
	AllowedLabels []string `json:"allowed_labels,omitempty"`
	MinValid      *float64 `json:"min_valid,omitempty"`
	MaxValid      *float64 `json:"max_valid,omitempty"`
}

// NumericSpec declares a numeric column
func NumericSpec(name string) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindNumeric}
}

// CategoricalSpec declares a categorical column with an optional allowed label set
func CategoricalSpec(name string, allowed ...string) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindCategorical, AllowedLabels: allowed}
}

// OrdinalSpec declares an ordinal (integer) column
func OrdinalSpec(name string) ColumnSpec {
	return ColumnSpec{Name: name, Kind: KindOrdinal}
}

// WithRange returns a copy of the spec with a plausible numeric range
func (s ColumnSpec) WithRange(min, max float64) ColumnSpec {
	s.MinValid = &min
	s.MaxValid = &max
	return s
}

// Valid reports whether a non-missing value passes the spec's predicate.
// Missing values are always valid: validity governs content, not presence.
func (s ColumnSpec) Valid(v Value) bool {
	if v.IsMissing() {
		return true
	}
	if len(s.AllowedLabels) > 0 {
		label, ok := v.Label()
		if !ok {
			return false
		}
		for _, allowed := range s.AllowedLabels {
			if label == allowed {
				return true
			}
		}
		return false
	}
	if s.MinValid != nil || s.MaxValid != nil {
		f, ok := v.Float()
		if !ok {
			return false
		}
		if s.MinValid != nil && f < *s.MinValid {
			return false
		}
		if s.MaxValid != nil && f > *s.MaxValid {
			return false
		}
	}
	return true
}

// Column pairs a spec with its ordered values
type Column struct {
	Spec   ColumnSpec
	Values []Value
}

// NewColumn creates a column, verifying every value matches the declared kind
func NewColumn(spec ColumnSpec, values []Value) (Column, error) {
	for i, v := range values {
		if v.Kind() != spec.Kind {
			return Column{}, fmt.Errorf("%w: column %q row %d holds %s",
				core.ErrKindMismatch, spec.Name, i, v.Kind())
		}
	}
	return Column{Spec: spec, Values: values}, nil
}

// Name returns the canonical column name
func (c Column) Name() string {
	return c.Spec.Name
}

// MissingCount returns the number of missing markers in the column
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}
