package relate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Critical-value checks: statistic values at the tabled 0.05 boundary must
// come back with p close to 0.05.

func TestTTestPValue_CriticalValue(t *testing.T) {
	d := NewDistributions()
	assert.InDelta(t, 0.05, d.TTestPValue(2.262, 9), 0.001)
	assert.InDelta(t, 0.05, d.TTestPValue(-2.262, 9), 0.001)
	assert.InDelta(t, 1.0, d.TTestPValue(0, 9), 1e-9)
}

func TestTTestPValue_NonPositiveDF(t *testing.T) {
	d := NewDistributions()
	assert.Equal(t, 1.0, d.TTestPValue(5, 0))
}

func TestChiSquarePValue_CriticalValue(t *testing.T) {
	d := NewDistributions()
	assert.InDelta(t, 0.05, d.ChiSquarePValue(3.841, 1), 0.001)
	assert.InDelta(t, 0.05, d.ChiSquarePValue(5.991, 2), 0.001)
}

func TestFTestPValue_CriticalValue(t *testing.T) {
	d := NewDistributions()
	assert.InDelta(t, 0.05, d.FTestPValue(4.256, 2, 9), 0.002)
}

func TestCorrelationPValue_Extremes(t *testing.T) {
	d := NewDistributions()
	assert.Equal(t, 0.0, d.CorrelationPValue(1.0, 10))
	assert.Equal(t, 0.0, d.CorrelationPValue(-1.0, 10))
	assert.Equal(t, 1.0, d.CorrelationPValue(0.9, 2))
	assert.InDelta(t, 1.0, d.CorrelationPValue(0, 10), 1e-9)
}

func TestStudentizedRangePValue_CriticalValues(t *testing.T) {
	d := NewDistributions()
	// Tabled q_{0.05} values for the studentized range.
	assert.InDelta(t, 0.05, d.StudentizedRangePValue(3.877, 3, 10), 0.005)
	assert.InDelta(t, 0.05, d.StudentizedRangePValue(3.314, 3, 1000), 0.005)
	assert.InDelta(t, 0.05, d.StudentizedRangePValue(4.232, 4, 20), 0.005)
}

func TestStudentizedRangePValue_Bounds(t *testing.T) {
	d := NewDistributions()
	assert.Equal(t, 1.0, d.StudentizedRangePValue(0, 3, 10))
	assert.Less(t, d.StudentizedRangePValue(10, 3, 10), 0.001)
	assert.Greater(t, d.StudentizedRangePValue(0.1, 3, 10), 0.9)
}

func TestStudentizedRangePValue_MonotoneInQ(t *testing.T) {
	d := NewDistributions()
	prev := 1.0
	for _, q := range []float64{0.5, 1, 2, 3, 4, 5, 6} {
		p := d.StudentizedRangePValue(q, 3, 30)
		assert.LessOrEqual(t, p, prev)
		prev = p
	}
}
