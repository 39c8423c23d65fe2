package engine

import (
	"alignbench/domain/scoring"
	"alignbench/internal/distributions"
	"alignbench/internal/effectsize"
)

// significant reports whether one side rejects the null at alpha. An explicit
// flag or p-value wins; otherwise the p-value is derived from the statistic.
// ok is false when neither is available.
func (s *Scorer) significant(rec scoring.TestRecord, side scoring.Side) (sig bool, ok bool) {
	if sig, ok := side.IsSignificant(s.alpha); ok {
		return sig, true
	}
	p, ok := statisticPValue(rec.Type, side, rec.IsIndependent(side))
	if !ok {
		return false, false
	}
	return p < s.alpha, true
}

// statisticPValue computes the p-value of a reported statistic for the test
// families with a closed-form reference distribution
func statisticPValue(tt scoring.TestType, side scoring.Side, independent bool) (float64, bool) {
	stat, hasStat := side.StatisticValue()
	n := side.N()

	switch tt {
	case scoring.TestT:
		if !hasStat || side.N1 <= 0 {
			return 0, false
		}
		df := float64(side.N1 - 1)
		if independent && side.N2 > 0 {
			df = float64(side.N1 + side.N2 - 2)
		}
		if df <= 0 {
			return 0, false
		}
		return distributions.TTestPValue(stat, df), true

	case scoring.TestF:
		if !hasStat {
			return 0, false
		}
		df1 := side.DF1
		if df1 <= 0 {
			df1 = 1
		}
		df2 := side.DF2
		if df2 <= 0 && n > 0 {
			df2 = float64(n) - df1 - 1
		}
		if df2 <= 0 {
			return 0, false
		}
		return distributions.FTestPValue(stat, df1, df2), true

	case scoring.TestCorrelation:
		if !hasStat || n < 3 {
			return 0, false
		}
		return distributions.CorrelationPValue(stat, n), true

	case scoring.TestChiSquare:
		if !hasStat && side.Counts != nil && side.Counts.Valid() {
			stat, hasStat = effectsize.ChiSquare2x2(*side.Counts), true
		}
		if !hasStat {
			return 0, false
		}
		df := side.DF1
		if df <= 0 {
			df = 1
		}
		return distributions.ChiSquareSurvival(stat, df), true
	}

	return 0, false
}
