// Package load parses delimited text files and Excel sheets into typed
// datasets. Malformed numeric cells become missing markers and are counted;
// an unreadable source file is fatal.
package load

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"statpipe/domain/table"
	"statpipe/internal/errors"
)

// Options configures a single load
type Options struct {
	Delimiter        rune              // field delimiter, ',' if zero
	DecimalMark      rune              // '.' or ',', '.' if zero
	MissingSentinels []string          // cell values treated as missing; nil means {"", "NA"}
	Renames          map[string]string // source header -> canonical column name
}

// DefaultOptions returns comma-delimited, dot-decimal options
func DefaultOptions() Options {
	return Options{Delimiter: ',', DecimalMark: '.'}
}

// Report records what a load observed: rows read and, per column, how many
// cells failed to parse and became missing. The reporter surfaces these in
// the data-quality section.
type Report struct {
	Source           string         `json:"source"`
	Rows             int            `json:"rows"`
	CoercionFailures map[string]int `json:"coercion_failures,omitempty"`
}

// ReadCSV loads a delimited text file. The header row defines column names;
// specs declare kinds and validity for the columns the analysis uses. Header
// names without a spec load as categorical.
func ReadCSV(path string, specs []table.ColumnSpec, opts Options) (*table.Dataset, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, errors.WithCode(err, errors.CodeLoadFailed,
			fmt.Sprintf("cannot open source file %s", path))
	}
	defer f.Close()

	r := csv.NewReader(f)
	if opts.Delimiter != 0 {
		r.Comma = opts.Delimiter
	}
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, Report{}, errors.WithCode(err, errors.CodeLoadFailed,
			fmt.Sprintf("cannot parse source file %s", path))
	}
	return fromRecords(path, records, specs, opts)
}

// ReadXLSX loads one sheet of an Excel workbook under the same contract as
// ReadCSV. The first row is the header.
func ReadXLSX(path, sheet string, specs []table.ColumnSpec, opts Options) (*table.Dataset, Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, Report{}, errors.WithCode(err, errors.CodeLoadFailed,
			fmt.Sprintf("cannot open workbook %s", path))
	}
	defer f.Close()

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, Report{}, errors.WithCode(err, errors.CodeLoadFailed,
			fmt.Sprintf("cannot read sheet %q of %s", sheet, path))
	}
	return fromRecords(path, records, specs, opts)
}

// FromRecords builds a dataset from in-memory records (header row first).
// Exposed for callers that already hold parsed rows, and for tests.
func FromRecords(source string, records [][]string, specs []table.ColumnSpec, opts Options) (*table.Dataset, Report, error) {
	return fromRecords(source, records, specs, opts)
}

func fromRecords(source string, records [][]string, specs []table.ColumnSpec, opts Options) (*table.Dataset, Report, error) {
	if len(records) == 0 {
		return nil, Report{}, errors.New(errors.CodeLoadFailed,
			fmt.Sprintf("source %s has no header row", source))
	}

	header := records[0]
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if renamed, ok := opts.Renames[name]; ok {
			name = renamed
		}
		if seen[name] {
			return nil, Report{}, errors.New(errors.CodeLoadFailed,
				fmt.Sprintf("duplicate column %q in header of %s", name, source))
		}
		seen[name] = true
		names[i] = name
	}

	specFor := make(map[string]table.ColumnSpec, len(specs))
	for _, spec := range specs {
		if !seen[spec.Name] {
			return nil, Report{}, errors.New(errors.CodeLoadFailed,
				fmt.Sprintf("declared column %q not present in header of %s", spec.Name, source))
		}
		specFor[spec.Name] = spec
	}

	report := Report{Source: source, Rows: len(records) - 1, CoercionFailures: map[string]int{}}

	columns := make([]table.Column, len(names))
	for i, name := range names {
		spec, ok := specFor[name]
		if !ok {
			spec = table.CategoricalSpec(name)
		}
		values := make([]table.Value, report.Rows)
		for row := 0; row < report.Rows; row++ {
			cell := ""
			if i < len(records[row+1]) {
				cell = records[row+1][i]
			}
			v, failed := parseCell(cell, spec.Kind, opts)
			if failed {
				report.CoercionFailures[name]++
			}
			values[row] = v
		}
		col, err := table.NewColumn(spec, values)
		if err != nil {
			return nil, Report{}, errors.Wrap(err, "building column")
		}
		columns[i] = col
	}

	ds, err := table.New(columns...)
	if err != nil {
		return nil, Report{}, errors.Wrap(err, "building dataset")
	}
	return ds, report, nil
}

// parseCell converts one raw cell into a typed value. The second return
// reports a coercion failure: a non-sentinel cell that could not parse.
func parseCell(cell string, kind table.Kind, opts Options) (table.Value, bool) {
	trimmed := strings.TrimSpace(cell)
	if isMissingSentinel(trimmed, opts.MissingSentinels) {
		return table.NewMissing(kind), false
	}
	switch kind {
	case table.KindNumeric:
		f, err := ParseNumber(trimmed, opts.DecimalMark)
		if err != nil {
			return table.NewMissing(kind), true
		}
		return table.NewNumeric(f), false
	case table.KindOrdinal:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return table.NewMissing(kind), true
		}
		return table.NewOrdinal(i), false
	default:
		return table.NewCategorical(trimmed), false
	}
}

// ParseNumber parses a float honoring the configured decimal mark
func ParseNumber(s string, decimalMark rune) (float64, error) {
	if decimalMark == ',' {
		// Decimal-comma sources must not also use ',' for thousands.
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

func isMissingSentinel(cell string, sentinels []string) bool {
	if sentinels == nil {
		sentinels = []string{"", "NA"}
	}
	for _, s := range sentinels {
		if cell == s {
			return true
		}
	}
	return false
}
