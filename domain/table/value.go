package table

import (
	"fmt"
	"strconv"
)

// Kind is the declared value kind of a column
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindOrdinal     Kind = "ordinal"
)

// Value is a tagged dataset cell: numeric, categorical, ordinal or missing.
// The tag is decided once at load/coercion time and never re-inferred.
type Value struct {
	kind    Kind
	num     float64
	label   string
	ord     int64
	missing bool
}

// NewNumeric creates a numeric value
func NewNumeric(f float64) Value {
	return Value{kind: KindNumeric, num: f}
}

// NewCategorical creates a categorical (text label) value
func NewCategorical(label string) Value {
	return Value{kind: KindCategorical, label: label}
}

// NewOrdinal creates an ordinal (integer, e.g. year) value
func NewOrdinal(i int64) Value {
	return Value{kind: KindOrdinal, ord: i}
}

// NewMissing creates a missing marker for the given kind
func NewMissing(kind Kind) Value {
	return Value{kind: kind, missing: true}
}

// Kind returns the value kind
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the value is a missing marker
func (v Value) IsMissing() bool {
	return v.missing
}

// Float returns the value as a float64. Ordinal values convert to their
// integer value. Returns false for missing and categorical values.
func (v Value) Float() (float64, bool) {
	if v.missing {
		return 0, false
	}
	switch v.kind {
	case KindNumeric:
		return v.num, true
	case KindOrdinal:
		return float64(v.ord), true
	}
	return 0, false
}

// Label returns the categorical label. Returns false for missing and
// non-categorical values.
func (v Value) Label() (string, bool) {
	if v.missing || v.kind != KindCategorical {
		return "", false
	}
	return v.label, true
}

// Ordinal returns the ordinal integer. Returns false for missing and
// non-ordinal values.
func (v Value) Ordinal() (int64, bool) {
	if v.missing || v.kind != KindOrdinal {
		return 0, false
	}
	return v.ord, true
}

// String renders the value for reports and debugging
func (v Value) String() string {
	if v.missing {
		return "<missing>"
	}
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindCategorical:
		return v.label
	case KindOrdinal:
		return strconv.FormatInt(v.ord, 10)
	}
	return fmt.Sprintf("<unknown kind %q>", string(v.kind))
}

// Equal compares two values. Missing markers of the same kind are equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.missing || other.missing {
		return v.missing == other.missing
	}
	switch v.kind {
	case KindNumeric:
		return v.num == other.num
	case KindCategorical:
		return v.label == other.label
	case KindOrdinal:
		return v.ord == other.ord
	}
	return false
}
