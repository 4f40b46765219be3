// Package testkit provides deterministic dataset fixtures for tests.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"statpipe/domain/table"
)

// Numeric builds a numeric column from literal values
func Numeric(name string, values ...float64) table.Column {
	vals := make([]table.Value, len(values))
	for i, v := range values {
		vals[i] = table.NewNumeric(v)
	}
	return mustColumn(table.NumericSpec(name), vals)
}

// NumericWithMissing builds a numeric column with missing markers at the
// given positions
func NumericWithMissing(name string, values []float64, missingAt ...int) table.Column {
	vals := make([]table.Value, len(values))
	for i, v := range values {
		vals[i] = table.NewNumeric(v)
	}
	for _, pos := range missingAt {
		vals[pos] = table.NewMissing(table.KindNumeric)
	}
	return mustColumn(table.NumericSpec(name), vals)
}

// Categorical builds a categorical column from literal labels
func Categorical(name string, labels ...string) table.Column {
	vals := make([]table.Value, len(labels))
	for i, label := range labels {
		vals[i] = table.NewCategorical(label)
	}
	return mustColumn(table.CategoricalSpec(name), vals)
}

// CategoricalWithMissing builds a categorical column with missing markers
// at the given positions
func CategoricalWithMissing(name string, labels []string, missingAt ...int) table.Column {
	vals := make([]table.Value, len(labels))
	for i, label := range labels {
		vals[i] = table.NewCategorical(label)
	}
	for _, pos := range missingAt {
		vals[pos] = table.NewMissing(table.KindCategorical)
	}
	return mustColumn(table.CategoricalSpec(name), vals)
}

// Ordinal builds an ordinal column from literal integers
func Ordinal(name string, values ...int64) table.Column {
	vals := make([]table.Value, len(values))
	for i, v := range values {
		vals[i] = table.NewOrdinal(v)
	}
	return mustColumn(table.OrdinalSpec(name), vals)
}

// Must unwraps a dataset constructor result, panicking on error. Fixture
// construction failures are programming errors, not test conditions.
func Must(ds *table.Dataset, err error) *table.Dataset {
	if err != nil {
		panic(fmt.Sprintf("testkit: %v", err))
	}
	return ds
}

// Survey generates a deterministic synthetic survey dataset with known
// structure: Income depends on Region, Satisfaction is categorical and
// associated with Region, Year trends upward with Score.
func Survey(n int, seed int64) *table.Dataset {
	rng := rand.New(rand.NewSource(seed))

	regions := []string{"north", "south", "east"}
	regionIncome := map[string]float64{"north": 52000, "south": 41000, "east": 47000}
	satisfaction := []string{"low", "high"}

	regionVals := make([]table.Value, n)
	incomeVals := make([]table.Value, n)
	satisVals := make([]table.Value, n)
	yearVals := make([]table.Value, n)
	scoreVals := make([]table.Value, n)

	for i := 0; i < n; i++ {
		region := regions[rng.Intn(len(regions))]
		regionVals[i] = table.NewCategorical(region)
		incomeVals[i] = table.NewNumeric(regionIncome[region] + rng.NormFloat64()*3000)

		// High satisfaction is more likely in the north
		pHigh := 0.35
		if region == "north" {
			pHigh = 0.7
		}
		label := satisfaction[0]
		if rng.Float64() < pHigh {
			label = satisfaction[1]
		}
		satisVals[i] = table.NewCategorical(label)

		year := int64(2015 + i%10)
		yearVals[i] = table.NewOrdinal(year)
		scoreVals[i] = table.NewNumeric(10 + 2*float64(year-2015) + rng.NormFloat64())
	}

	ds, err := table.New(
		mustColumn(table.CategoricalSpec("Region", regions...), regionVals),
		mustColumn(table.NumericSpec("Income"), incomeVals),
		mustColumn(table.CategoricalSpec("Satisfaction", satisfaction...), satisVals),
		mustColumn(table.OrdinalSpec("Year"), yearVals),
		mustColumn(table.NumericSpec("Score"), scoreVals),
	)
	if err != nil {
		panic(fmt.Sprintf("testkit: building survey dataset: %v", err))
	}
	return ds
}

// Linear generates x = 0..n-1 and y = intercept + slope*x + noise*N(0,1)
// with a fixed seed, for regression and correlation tests.
func Linear(n int, intercept, slope, noise float64, seed int64) (xs, ys []float64) {
	rng := rand.New(rand.NewSource(seed))
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i)
		ys[i] = intercept + slope*xs[i] + noise*rng.NormFloat64()
	}
	return xs, ys
}

// AlmostEqual compares floats within an absolute tolerance
func AlmostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func mustColumn(spec table.ColumnSpec, values []table.Value) table.Column {
	col, err := table.NewColumn(spec, values)
	if err != nil {
		panic(fmt.Sprintf("testkit: %v", err))
	}
	return col
}
