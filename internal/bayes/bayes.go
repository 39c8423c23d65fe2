// Package bayes converts reported test statistics into default-prior Bayes
// factors and posterior probabilities of an effect.
//
// t-tests use the JZS Bayes factor of Rouder et al. (2009, eq. 1) with a
// Cauchy prior of scale r on the standardized effect; correlations use the
// JZS correlation test of Wetzels & Wagenmakers (2012). Both g-integrals are
// evaluated in log space over s = ln g with composite Gauss–Legendre panels,
// so very large statistics do not overflow. Chi-square and multi-df ANOVA
// statistics use the BIC approximation (Wagenmakers 2007); binomial tests use
// a uniform Beta(1,1) alternative.
package bayes

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mathext"
)

// DefaultScale is the "medium" Cauchy prior width √2/2
const DefaultScale = math.Sqrt2 / 2

const (
	logGMin        = -12.0
	logGMax        = 60.0
	panelWidth     = 1.0
	pointsPerPanel = 16
)

// grid holds the quadrature nodes and log-weights over [logGMin, logGMax]
type grid struct {
	s       []float64
	logW    []float64
	scratch int
}

var integrationGrid = newGrid()

func newGrid() grid {
	panels := int(math.Round((logGMax - logGMin) / panelWidth))
	g := grid{
		s:    make([]float64, 0, panels*pointsPerPanel),
		logW: make([]float64, 0, panels*pointsPerPanel),
	}

	x := make([]float64, pointsPerPanel)
	w := make([]float64, pointsPerPanel)
	for i := 0; i < panels; i++ {
		lo := logGMin + float64(i)*panelWidth
		quad.Legendre{}.FixedLocations(x, w, lo, lo+panelWidth)
		for j := range x {
			g.s = append(g.s, x[j])
			g.logW = append(g.logW, math.Log(w[j]))
		}
	}
	g.scratch = len(g.s)
	return g
}

// logIntegral returns ln ∫ exp(logF(s)) ds over the grid
func (g grid) logIntegral(logF func(s float64) float64) float64 {
	terms := make([]float64, g.scratch)
	for i, s := range g.s {
		terms[i] = logF(s) + g.logW[i]
	}
	return floats.LogSumExp(terms)
}

// LogBFT returns ln BF10 for a t statistic. Independent two-sample tests use
// n = n1·n2/(n1+n2) and df = n1+n2-2; paired and one-sample tests (or n2 = 0)
// use n = n1 and df = n1-1. Degenerate input returns 0 (BF = 1). Records
// resolve independent through TestRecord.IsIndependent.
func LogBFT(t float64, n1, n2 int, independent bool, scale float64) float64 {
	if !finite(t) || scale <= 0 || !finite(scale) {
		return 0
	}

	var n, df float64
	if independent && n2 > 0 {
		if n1 < 1 || n1+n2 < 3 {
			return 0
		}
		n = float64(n1) * float64(n2) / float64(n1+n2)
		df = float64(n1 + n2 - 2)
	} else {
		if n1 < 3 {
			return 0
		}
		n = float64(n1)
		df = float64(n1 - 1)
	}

	r2 := scale * scale
	t2 := t * t
	logNull := -(df + 1) / 2 * math.Log1p(t2/df)

	logAlt := integrationGrid.logIntegral(func(s float64) float64 {
		g := math.Exp(s)
		a := 1 + n*g*r2
		return -0.5*math.Log(a) -
			(df+1)/2*math.Log1p(t2/(a*df)) -
			0.5*math.Log(2*math.Pi) -
			1.5*s - 1/(2*g) +
			s // dg = g ds
	})

	return logAlt - logNull
}

// BFT returns BF10 for a t statistic; see LogBFT
func BFT(t float64, n1, n2 int, independent bool) float64 {
	return math.Exp(LogBFT(t, n1, n2, independent, DefaultScale))
}

// LogBFR returns ln BF10 for a Pearson correlation r on n pairs. |r| = 1 is
// pulled just inside the unit interval; |r| > 1 or n < 3 returns 0.
func LogBFR(r float64, n int) float64 {
	if !finite(r) || math.Abs(r) > 1 || n < 3 {
		return 0
	}
	const edge = 1 - 1e-9
	r = math.Max(math.Min(r, edge), -edge)

	nf := float64(n)
	oneMinusR2 := 1 - r*r
	logIntegral := integrationGrid.logIntegral(func(s float64) float64 {
		g := math.Exp(s)
		return (nf-2)/2*math.Log1p(g) -
			(nf-1)/2*math.Log1p(oneMinusR2*g) -
			1.5*s - nf/(2*g) +
			s
	})

	return 0.5*math.Log(nf/2) - 0.5*math.Log(math.Pi) + logIntegral
}

// BFR returns BF10 for a correlation; see LogBFR
func BFR(r float64, n int) float64 {
	return math.Exp(LogBFR(r, n))
}

// LogBFChiSq returns the BIC-approximated ln BF10 = (χ² − df·ln n)/2
func LogBFChiSq(chi2 float64, n int, df float64) float64 {
	if !finite(chi2) || chi2 < 0 || n < 3 || df <= 0 || !finite(df) {
		return 0
	}
	return (chi2 - df*math.Log(float64(n))) / 2
}

// BFChiSq returns BF10 for a chi-square statistic; see LogBFChiSq
func BFChiSq(chi2 float64, n int, df float64) float64 {
	return math.Exp(LogBFChiSq(chi2, n, df))
}

// LogBFAnova returns ln BF10 for F(df1, df2) on nTotal observations. A
// single-df contrast is scored as a JZS t-test with t = √F on a balanced
// split; larger df1 use the BIC approximation
// (n·ln(1 + F·df1/df2) − df1·ln n)/2. When nTotal is unknown it is taken as
// df1 + df2 + 1.
func LogBFAnova(f, df1, df2 float64, nTotal int, scale float64) float64 {
	if !finite(f) || f < 0 || !finite(df1) || !finite(df2) || df1 <= 0 || df2 <= 0 {
		return 0
	}
	if nTotal < 3 {
		nTotal = int(math.Round(df1 + df2 + 1))
	}
	if nTotal < 3 {
		return 0
	}

	if df1 == 1 {
		n1 := nTotal / 2
		return LogBFT(math.Sqrt(f), n1, nTotal-n1, true, scale)
	}

	n := float64(nTotal)
	return (n*math.Log1p(f*df1/df2) - df1*math.Log(n)) / 2
}

// BFAnova returns BF10 for an F statistic; see LogBFAnova
func BFAnova(f, df1, df2 float64, nTotal int) float64 {
	return math.Exp(LogBFAnova(f, df1, df2, nTotal, DefaultScale))
}

// LogBFBinomial returns ln BF10 for k successes in n trials against the point
// null p0, with a uniform prior on the success rate under the alternative
func LogBFBinomial(k, n int, p0 float64) float64 {
	if n < 3 || k < 0 || k > n || !(p0 > 0 && p0 < 1) {
		return 0
	}
	kf, nf := float64(k), float64(n)
	logNull := kf*math.Log(p0) + (nf-kf)*math.Log1p(-p0)
	return mathext.Lbeta(kf+1, nf-kf+1) - logNull
}

// Posterior converts a Bayes factor into P(effect | data) given prior odds
// of effect vs. null. BF = +Inf gives 1; invalid input gives 0.5.
func Posterior(bf, priorOdds float64) float64 {
	if math.IsNaN(bf) || bf < 0 || !(priorOdds > 0) || math.IsNaN(priorOdds) {
		return 0.5
	}
	if math.IsInf(bf, 1) || math.IsInf(priorOdds, 1) {
		return 1
	}
	odds := bf * priorOdds
	return odds / (1 + odds)
}

// PosteriorFromLog is Posterior on a log Bayes factor, stable for any magnitude
func PosteriorFromLog(logBF, priorOdds float64) float64 {
	if math.IsNaN(logBF) || !(priorOdds > 0) || math.IsInf(priorOdds, 0) {
		return 0.5
	}
	x := logBF + math.Log(priorOdds)
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
