// Package distributions wraps the gonum distributions the scoring engine
// needs behind guards that return neutral values instead of NaN.
package distributions

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// pFloor keeps inverse-normal conversions finite
const pFloor = 1e-15

// PToZ converts a one-sided upper-tail p-value into a z-score. p is clamped
// into [1e-15, 1-1e-15] so the result is always finite.
func PToZ(p float64) float64 {
	if math.IsNaN(p) {
		return 0
	}
	p = math.Min(math.Max(p, pFloor), 1-pFloor)
	return distuv.UnitNormal.Quantile(1 - p)
}

// ZToP converts a z-score into a one-sided upper-tail p-value
func ZToP(z float64) float64 {
	if math.IsNaN(z) {
		return 1.0
	}
	return distuv.UnitNormal.Survival(z)
}

// TwoTailedZ computes the two-tailed p-value of a z statistic
func TwoTailedZ(z float64) float64 {
	if math.IsNaN(z) {
		return 1.0
	}
	return math.Min(1, 2*distuv.UnitNormal.Survival(math.Abs(z)))
}

// ChiSquareSurvival computes P(X > x) for a chi-square with df degrees of freedom
func ChiSquareSurvival(x, df float64) float64 {
	if df <= 0 || math.IsNaN(x) {
		return 1.0
	}
	if math.IsInf(x, 1) {
		return 0
	}
	if x <= 0 {
		return 1.0
	}
	return distuv.ChiSquared{K: df}.Survival(x)
}

// TTestPValue computes the two-tailed p-value for a t statistic
func TTestPValue(t, df float64) float64 {
	if df <= 0 || math.IsNaN(t) {
		return 1.0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return math.Min(1, 2*tDist.Survival(math.Abs(t)))
}

// FTestPValue computes the upper-tail p-value for an F statistic
func FTestPValue(f, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(f) || f <= 0 {
		return 1.0
	}
	return distuv.F{D1: df1, D2: df2}.Survival(f)
}

// CorrelationPValue computes the two-tailed p-value of a Pearson correlation
func CorrelationPValue(r float64, n int) float64 {
	if n < 3 || math.IsNaN(r) {
		return 1.0
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	return TTestPValue(t, df)
}
