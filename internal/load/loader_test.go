package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statpipe/domain/table"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_MissingFileIsFatal(t *testing.T) {
	_, _, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"), nil, DefaultOptions())
	require.Error(t, err)
}

func TestReadCSV_TypedColumns(t *testing.T) {
	path := writeTempCSV(t, "Age,Gender,Year\n30,man,2020\n41.5,woman,2021\n,man,2022\n")

	specs := []table.ColumnSpec{
		table.NumericSpec("Age"),
		table.OrdinalSpec("Year"),
	}
	ds, rep, err := ReadCSV(path, specs, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, ds.RowCount())
	assert.Equal(t, 3, rep.Rows)

	ages, rowIDs, err := ds.NumericValues("Age")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 41.5}, ages)
	assert.Equal(t, []int{0, 1}, rowIDs) // empty cell is a missing sentinel

	years, _, err := ds.NumericValues("Year")
	require.NoError(t, err)
	assert.Equal(t, []float64{2020, 2021, 2022}, years)

	// Undeclared header loads as categorical
	genders, _, err := ds.Labels("Gender")
	require.NoError(t, err)
	assert.Equal(t, []string{"man", "woman", "man"}, genders)
}

func TestReadCSV_MalformedNumericBecomesMissingAndCounted(t *testing.T) {
	path := writeTempCSV(t, "Age\n30\nx\n40\n")

	ds, rep, err := ReadCSV(path, []table.ColumnSpec{table.NumericSpec("Age")}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, rep.CoercionFailures["Age"])
	values, _, err := ds.NumericValues("Age")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 40}, values)
}

func TestReadCSV_DecimalCommaAndSemicolonDelimiter(t *testing.T) {
	path := writeTempCSV(t, "Price;City\n12,5;Gent\n7,25;Leuven\n")

	opts := Options{Delimiter: ';', DecimalMark: ','}
	ds, _, err := ReadCSV(path, []table.ColumnSpec{table.NumericSpec("Price")}, opts)
	require.NoError(t, err)

	prices, _, err := ds.NumericValues("Price")
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, 7.25}, prices)
}

func TestReadCSV_CustomMissingSentinels(t *testing.T) {
	path := writeTempCSV(t, "Score\n5\nN/B\n7\n")

	opts := DefaultOptions()
	opts.MissingSentinels = []string{"", "N/B"}
	ds, rep, err := ReadCSV(path, []table.ColumnSpec{table.NumericSpec("Score")}, opts)
	require.NoError(t, err)

	// Sentinel cells are missing but not coercion failures
	assert.Zero(t, rep.CoercionFailures["Score"])
	values, _, err := ds.NumericValues("Score")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7}, values)
}

func TestReadCSV_HeaderRename(t *testing.T) {
	path := writeTempCSV(t, "Leeftijd\n28\n")

	opts := DefaultOptions()
	opts.Renames = map[string]string{"Leeftijd": "Age"}
	ds, _, err := ReadCSV(path, []table.ColumnSpec{table.NumericSpec("Age")}, opts)
	require.NoError(t, err)

	values, _, err := ds.NumericValues("Age")
	require.NoError(t, err)
	assert.Equal(t, []float64{28}, values)
}

func TestReadCSV_DuplicateHeaderFails(t *testing.T) {
	path := writeTempCSV(t, "A,A\n1,2\n")
	_, _, err := ReadCSV(path, nil, DefaultOptions())
	require.Error(t, err)
}

func TestReadCSV_DeclaredColumnMissingFails(t *testing.T) {
	path := writeTempCSV(t, "A\n1\n")
	_, _, err := ReadCSV(path, []table.ColumnSpec{table.NumericSpec("B")}, DefaultOptions())
	require.Error(t, err)
}

func TestFromRecords_RaggedRowsPadWithMissing(t *testing.T) {
	records := [][]string{
		{"A", "B"},
		{"1", "x"},
		{"2"},
	}
	ds, _, err := FromRecords("inline", records, []table.ColumnSpec{table.NumericSpec("A")}, DefaultOptions())
	require.NoError(t, err)

	labels, rowIDs, err := ds.Labels("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, labels)
	assert.Equal(t, []int{0}, rowIDs)
}
