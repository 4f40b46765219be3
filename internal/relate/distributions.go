package relate

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the sampling distributions the
// relationship engine needs, so p-value computation lives in one place.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue computes a two-tailed p-value from Student's t-distribution
func (d *Distributions) TTestPValue(tStatistic, degreesOfFreedom float64) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: degreesOfFreedom}
	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// CorrelationPValue computes the p-value for a Pearson coefficient via the
// t-transform r*sqrt((n-2)/(1-r^2)).
func (d *Distributions) CorrelationPValue(r float64, sampleSize int) float64 {
	if sampleSize < 3 {
		return 1.0
	}
	df := float64(sampleSize - 2)
	denom := 1 - r*r
	if denom <= 0 {
		// |r| == 1: the t-statistic diverges
		return 0
	}
	tStatistic := r * math.Sqrt(df/denom)
	return d.TTestPValue(tStatistic, df)
}

// FTestPValue computes the upper-tail p-value of the F-distribution
func (d *Distributions) FTestPValue(fStatistic, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 {
		return 1.0
	}
	fDist := distuv.F{D1: df1, D2: df2}
	return 1 - fDist.CDF(fStatistic)
}

// ChiSquarePValue computes the upper-tail p-value of the chi-square distribution
func (d *Distributions) ChiSquarePValue(chiSquare, degreesOfFreedom float64) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: degreesOfFreedom}
	return 1 - chiDist.CDF(chiSquare)
}

// StudentizedRangePValue computes P(Q > q) for the studentized range with k
// groups and df within-group degrees of freedom, used by Tukey HSD. gonum
// carries no studentized-range distribution, so the CDF is evaluated by
// Gauss-Legendre quadrature of the normal order-statistic integral, with an
// outer integral over the scale estimate for finite df.
func (d *Distributions) StudentizedRangePValue(q float64, k int, df float64) float64 {
	if q <= 0 || k < 2 {
		return 1.0
	}
	var cdf float64
	if df > 120 {
		cdf = srangeCDFInfinite(q, k)
	} else {
		cdf = srangeCDFFinite(q, k, df)
	}
	p := 1 - cdf
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// srangeCDFInfinite evaluates F(q) = k * Int phi(z) * [Phi(z) - Phi(z-q)]^(k-1) dz
func srangeCDFInfinite(q float64, k int) float64 {
	norm := distuv.UnitNormal
	f := func(z float64) float64 {
		inner := norm.CDF(z) - norm.CDF(z-q)
		if inner <= 0 {
			return 0
		}
		return norm.Prob(z) * math.Pow(inner, float64(k-1))
	}
	return float64(k) * gaussLegendre(f, -8, 8, 96)
}

// srangeCDFFinite integrates the infinite-df CDF over the distribution of
// the scale estimate u = s/sigma, where u^2 ~ chi^2_df / df.
func srangeCDFFinite(q float64, k int, df float64) float64 {
	// Density of u: c * u^(df-1) * exp(-df*u^2/2), with the normalizing
	// constant computed in log space to stay finite for large df.
	lgamma, _ := math.Lgamma(df / 2)
	logC := (df/2)*math.Log(df/2) - lgamma + math.Log(2)
	f := func(u float64) float64 {
		if u <= 0 {
			return 0
		}
		logDens := logC + (df-1)*math.Log(u) - df*u*u/2
		return math.Exp(logDens) * srangeCDFInfinite(q*u, k)
	}
	return gaussLegendre(f, 1e-6, 4, 64)
}

// gaussLegendre integrates f over [a, b] with an n-point composite rule
// built from the 5-point Gauss-Legendre nodes.
func gaussLegendre(f func(float64) float64, a, b float64, n int) float64 {
	nodes := [5]float64{-0.9061798459386640, -0.5384693101056831, 0, 0.5384693101056831, 0.9061798459386640}
	weights := [5]float64{0.2369268850561891, 0.4786286704993665, 0.5688888888888889, 0.4786286704993665, 0.2369268850561891}

	segments := n / 5
	if segments < 1 {
		segments = 1
	}
	h := (b - a) / float64(segments)
	total := 0.0
	for s := 0; s < segments; s++ {
		lo := a + float64(s)*h
		mid := lo + h/2
		half := h / 2
		for i := 0; i < 5; i++ {
			total += weights[i] * f(mid+half*nodes[i]) * half
		}
	}
	return total
}
