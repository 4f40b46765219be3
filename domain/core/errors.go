package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// Validation errors
	ErrKindMismatch    = errors.New("value kind does not match column kind")
	ErrColumnLength    = errors.New("columns differ in length")
	ErrDuplicateColumn = errors.New("duplicate column name")

	// Computation errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrWrongGroupCount  = errors.New("wrong group count")
	ErrZeroMargin       = errors.New("zero margin in cross-frequency table")
	ErrZeroVariance     = errors.New("zero variance")
)
