package bayes

import (
	"math"

	"alignbench/domain/scoring"
	"alignbench/internal/effectsize"
)

// Posterior3Way puts the posterior effect mass on the observed sign, with the
// remainder as null mass. A zero direction carries no sign information and
// yields the scalar posterior.
func Posterior3Way(bf float64, direction int, priorOdds float64) scoring.Probability {
	return threeWay(Posterior(bf, priorOdds), direction)
}

func threeWay(p float64, direction int) scoring.Probability {
	switch {
	case direction > 0:
		return scoring.ThreeWay(p, 0, 1-p)
	case direction < 0:
		return scoring.ThreeWay(0, p, 1-p)
	}
	return scoring.Scalar(p)
}

// Calculator holds the prior settings used to turn statistics into
// posteriors
type Calculator struct {
	Scale     float64
	PriorOdds float64
}

// NewCalculator returns a Calculator, replacing invalid settings with the
// defaults (scale √2/2, prior odds 1)
func NewCalculator(scale, priorOdds float64) *Calculator {
	if !(scale > 0) || math.IsInf(scale, 0) {
		scale = DefaultScale
	}
	if !(priorOdds > 0) || math.IsInf(priorOdds, 0) {
		priorOdds = 1
	}
	return &Calculator{Scale: scale, PriorOdds: priorOdds}
}

// LogEvidence returns ln BF10 for one side of a test. ok is false when the
// side lacks the statistic or sample size the family needs; callers should
// then treat the side as Uncertain.
func (c *Calculator) LogEvidence(tt scoring.TestType, side scoring.Side, independent bool) (float64, bool) {
	stat, hasStat := side.StatisticValue()

	switch tt {
	case scoring.TestT:
		if !hasStat || side.N1 <= 0 {
			return 0, false
		}
		return LogBFT(stat, side.N1, side.N2, independent, c.Scale), true

	case scoring.TestF:
		if !hasStat {
			return 0, false
		}
		df1 := side.DF1
		if df1 <= 0 {
			df1 = 1
		}
		n := side.N()
		df2 := side.DF2
		if df2 <= 0 && n > 0 {
			df2 = float64(n) - df1 - 1
		}
		if df2 <= 0 {
			return 0, false
		}
		return LogBFAnova(stat, df1, df2, n, c.Scale), true

	case scoring.TestCorrelation:
		n := side.N()
		if !hasStat || n <= 0 {
			return 0, false
		}
		return LogBFR(stat, n), true

	case scoring.TestChiSquare:
		n := side.N()
		if !hasStat && side.Counts != nil && side.Counts.Valid() {
			stat, hasStat = effectsize.ChiSquare2x2(*side.Counts), true
		}
		if !hasStat || n <= 0 {
			return 0, false
		}
		df := side.DF1
		if df <= 0 {
			df = 1
		}
		return LogBFChiSq(stat, n, df), true

	case scoring.TestBinomial:
		if side.Trials <= 0 {
			return 0, false
		}
		p0 := side.NullProportion
		if p0 <= 0 || p0 >= 1 {
			p0 = 0.5
		}
		return LogBFBinomial(side.Successes, side.Trials, p0), true
	}

	return 0, false
}

// Posterior returns P(effect | data) from a log Bayes factor at the
// calculator's prior odds
func (c *Calculator) Posterior(logBF float64) float64 {
	return PosteriorFromLog(logBF, c.PriorOdds)
}

// Posterior3Way is the directional form of Posterior
func (c *Calculator) Posterior3Way(logBF float64, direction int) scoring.Probability {
	return threeWay(c.Posterior(logBF), direction)
}
