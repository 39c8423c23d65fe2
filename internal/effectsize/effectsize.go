// Package effectsize converts test statistics and native effect sizes onto a
// common Cohen's d-equivalent scale, with standard errors, so that tests from
// different families can be compared.
//
// Conversions follow Borenstein et al., Introduction to Meta-Analysis (2009),
// ch. 7: r → d = 2r/√(1−r²), ln OR → d = ln OR·√3/π, η² → d = 2√(η²/(1−η²)).
package effectsize

import (
	"math"

	"alignbench/domain/scoring"
)

// maxAbsR keeps atanh finite for |r| = 1
const maxAbsR = 1 - 1e-12

// TToD converts a t statistic to Cohen's d. Independent designs use
// d = t·√((n1+n2)/(n1·n2)); paired and one-sample designs (n2 = 0) use
// d = t/√n1. Invalid sample sizes return NaN.
func TToD(t float64, n1, n2 int, independent bool) float64 {
	if independent && n2 > 0 {
		if n1 <= 0 {
			return math.NaN()
		}
		return t * math.Sqrt(float64(n1+n2)/(float64(n1)*float64(n2)))
	}
	if n1 <= 0 {
		return math.NaN()
	}
	return t / math.Sqrt(float64(n1))
}

// RToFisherZ returns atanh(r), with |r| ≥ 1 pulled just inside the interval
func RToFisherZ(r float64) float64 {
	if math.IsNaN(r) {
		return math.NaN()
	}
	return math.Atanh(math.Max(-maxAbsR, math.Min(maxAbsR, r)))
}

// RToD converts a correlation to d
func RToD(r float64) float64 {
	if math.IsNaN(r) || math.Abs(r) > 1 {
		return math.NaN()
	}
	r = math.Max(-maxAbsR, math.Min(maxAbsR, r))
	return 2 * r / math.Sqrt(1-r*r)
}

// PhiToD converts a 2x2 phi coefficient to d, treating phi as a correlation
func PhiToD(phi float64) float64 {
	return RToD(phi)
}

// EtaSqToD converts (partial) eta squared to a non-negative d
func EtaSqToD(eta2 float64) float64 {
	if math.IsNaN(eta2) || eta2 < 0 || eta2 >= 1 {
		return math.NaN()
	}
	return 2 * math.Sqrt(eta2/(1-eta2))
}

// LogOddsToD converts a log odds ratio to d via the logistic approximation
func LogOddsToD(logOR float64) float64 {
	return logOR * math.Sqrt(3) / math.Pi
}

// CohensH is the arcsine-transformed difference between two proportions
func CohensH(p, p0 float64) float64 {
	if !(p >= 0 && p <= 1) || !(p0 >= 0 && p0 <= 1) {
		return math.NaN()
	}
	return 2*math.Asin(math.Sqrt(p)) - 2*math.Asin(math.Sqrt(p0))
}

// corrected applies the Haldane–Anscombe +0.5 to every cell if any is zero
func corrected(t scoring.Table2x2) scoring.Table2x2 {
	if t.A == 0 || t.B == 0 || t.C == 0 || t.D == 0 {
		return scoring.Table2x2{A: t.A + 0.5, B: t.B + 0.5, C: t.C + 0.5, D: t.D + 0.5}
	}
	return t
}

// LogOddsRatio returns ln(ad/bc)
func LogOddsRatio(t scoring.Table2x2) float64 {
	if !t.Valid() {
		return math.NaN()
	}
	c := corrected(t)
	return math.Log(c.A*c.D) - math.Log(c.B*c.C)
}

// LogOddsSE returns √(1/a + 1/b + 1/c + 1/d) on the corrected table
func LogOddsSE(t scoring.Table2x2) float64 {
	if !t.Valid() {
		return math.NaN()
	}
	c := corrected(t)
	return math.Sqrt(1/c.A + 1/c.B + 1/c.C + 1/c.D)
}

// ChiSquare2x2 is the Pearson chi-square of a 2x2 table, without continuity
// correction
func ChiSquare2x2(t scoring.Table2x2) float64 {
	if !t.Valid() {
		return math.NaN()
	}
	rows := (t.A + t.B) * (t.C + t.D)
	cols := (t.A + t.C) * (t.B + t.D)
	if rows == 0 || cols == 0 {
		return 0
	}
	diff := t.A*t.D - t.B*t.C
	return t.Total() * diff * diff / (rows * cols)
}

// DSE is the large-sample standard error of d. n2 = 0 selects the one-sample
// form √(1/n + d²/(2n)).
func DSE(d float64, n1, n2 int) float64 {
	if math.IsNaN(d) || n1 <= 0 || n2 < 0 {
		return math.NaN()
	}
	if n2 == 0 {
		n := float64(n1)
		return math.Sqrt(1/n + d*d/(2*n))
	}
	a, b := float64(n1), float64(n2)
	return math.Sqrt((a+b)/(a*b) + d*d/(2*(a+b)))
}

// RSE is the standard error of Fisher's z, 1/√(n−3)
func RSE(n int) float64 {
	if n <= 3 {
		return math.NaN()
	}
	return 1 / math.Sqrt(float64(n-3))
}

// rDSE is the SE of d converted from r: 2/√((n−1)(1−r²))
func rDSE(r float64, n int) float64 {
	if n <= 1 || math.IsNaN(r) {
		return math.NaN()
	}
	r = math.Max(-maxAbsR, math.Min(maxAbsR, r))
	return 2 / math.Sqrt(float64(n-1)*(1-r*r))
}

// ToDEquivalent maps an effect size in the family's native scale onto d:
// t-tests report d, correlations r, chi-square tests phi, F-tests (partial)
// eta squared and binomial tests Cohen's h
func ToDEquivalent(tt scoring.TestType, es float64) float64 {
	if math.IsNaN(es) || math.IsInf(es, 0) {
		return math.NaN()
	}
	switch tt {
	case scoring.TestT, scoring.TestBinomial:
		return es
	case scoring.TestCorrelation:
		return RToD(es)
	case scoring.TestChiSquare:
		return PhiToD(es)
	case scoring.TestF:
		return EtaSqToD(es)
	}
	return math.NaN()
}

// Standardize produces the d-equivalent effect and its SE for one side of a
// test. A precomputed EffectD wins, then a native EffectSize, then the
// statistic itself. Unsigned families (F, chi-square) take the sign given.
// Fields that cannot be computed are left nil.
func Standardize(tt scoring.TestType, side scoring.Side, independent bool, sign int) scoring.Effect {
	var d float64
	switch {
	case finitePtr(side.EffectD):
		d = *side.EffectD
	case finitePtr(side.EffectSize):
		d = applySign(ToDEquivalent(tt, *side.EffectSize), tt, sign)
	default:
		d = fromStatistic(tt, side, independent, sign)
	}

	return scoring.Effect{
		D:  scoring.Float(d),
		SE: scoring.Float(standardError(tt, side, independent, d)),
	}
}

func fromStatistic(tt scoring.TestType, side scoring.Side, independent bool, sign int) float64 {
	stat, ok := side.StatisticValue()

	switch tt {
	case scoring.TestT:
		if !ok {
			return math.NaN()
		}
		return TToD(stat, side.N1, side.N2, independent)

	case scoring.TestCorrelation:
		if !ok {
			return math.NaN()
		}
		return RToD(stat)

	case scoring.TestChiSquare:
		if side.Counts != nil && side.Counts.Valid() {
			return LogOddsToD(LogOddsRatio(*side.Counts))
		}
		n := side.N()
		if !ok || stat < 0 || n <= 0 {
			return math.NaN()
		}
		return applySign(PhiToD(math.Sqrt(stat/float64(n))), tt, sign)

	case scoring.TestF:
		if !ok || stat < 0 {
			return math.NaN()
		}
		df1, df2 := fDegrees(side)
		if df2 <= 0 {
			return math.NaN()
		}
		if df1 == 1 {
			n1, n2 := fSplit(side, df2)
			return applySign(TToD(math.Sqrt(stat), n1, n2, true), tt, sign)
		}
		eta2 := stat * df1 / (stat*df1 + df2)
		return applySign(EtaSqToD(eta2), tt, sign)

	case scoring.TestBinomial:
		if side.Trials <= 0 || side.Successes < 0 || side.Successes > side.Trials {
			return math.NaN()
		}
		p0 := side.NullProportion
		if p0 <= 0 || p0 >= 1 {
			p0 = 0.5
		}
		return CohensH(float64(side.Successes)/float64(side.Trials), p0)
	}

	return math.NaN()
}

func standardError(tt scoring.TestType, side scoring.Side, independent bool, d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return math.NaN()
	}

	switch tt {
	case scoring.TestT:
		if independent && side.N2 > 0 {
			return DSE(d, side.N1, side.N2)
		}
		return DSE(d, side.N1, 0)

	case scoring.TestCorrelation:
		// back out r from d for the delta-method SE
		r := d / math.Sqrt(d*d+4)
		return rDSE(r, side.N())

	case scoring.TestChiSquare:
		if side.Counts != nil && side.Counts.Valid() {
			return LogOddsSE(*side.Counts) * math.Sqrt(3) / math.Pi
		}
		r := d / math.Sqrt(d*d+4)
		return rDSE(r, side.N())

	case scoring.TestF:
		_, df2 := fDegrees(side)
		if df2 <= 0 {
			return math.NaN()
		}
		n1, n2 := fSplit(side, df2)
		return DSE(d, n1, n2)

	case scoring.TestBinomial:
		if side.Trials <= 0 {
			return math.NaN()
		}
		return 1 / math.Sqrt(float64(side.Trials))
	}

	return math.NaN()
}

func fDegrees(side scoring.Side) (df1, df2 float64) {
	df1 = side.DF1
	if df1 <= 0 {
		df1 = 1
	}
	df2 = side.DF2
	if df2 <= 0 {
		if n := side.N(); n > 0 {
			df2 = float64(n) - df1 - 1
		}
	}
	return df1, df2
}

// fSplit returns a balanced two-group split for an F-test design
func fSplit(side scoring.Side, df2 float64) (int, int) {
	if side.N1 > 0 && side.N2 > 0 {
		return side.N1, side.N2
	}
	n := side.N()
	if n <= 0 {
		n = int(math.Round(df2)) + 2
	}
	return n / 2, n - n/2
}

func applySign(d float64, tt scoring.TestType, sign int) float64 {
	if tt != scoring.TestF && tt != scoring.TestChiSquare {
		return d
	}
	if sign < 0 {
		return -math.Abs(d)
	}
	return math.Abs(d)
}

func finitePtr(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
