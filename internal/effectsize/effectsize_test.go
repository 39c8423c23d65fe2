package effectsize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"alignbench/domain/scoring"
)

func TestTToD(t *testing.T) {
	assert.InDelta(t, 2.66*math.Sqrt(80.0/1600.0), TToD(2.66, 40, 40, true), 1e-12)
	assert.InDelta(t, 2.0/math.Sqrt(30), TToD(2.0, 30, 0, false), 1e-12)
	assert.InDelta(t, 2.0/math.Sqrt(30), TToD(2.0, 30, 30, false), 1e-12, "paired ignores n2")
	assert.True(t, math.IsNaN(TToD(2.0, 0, 0, false)))
}

func TestTToD_LinearInT(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tStat := rapid.Float64Range(-20, 20).Draw(rt, "t")
		k := rapid.Float64Range(-5, 5).Draw(rt, "k")
		n1 := rapid.IntRange(2, 500).Draw(rt, "n1")
		n2 := rapid.IntRange(2, 500).Draw(rt, "n2")

		scaled := TToD(k*tStat, n1, n2, true)
		assert.InDelta(rt, k*TToD(tStat, n1, n2, true), scaled, 1e-9)
	})
}

func TestRToFisherZ(t *testing.T) {
	assert.InDelta(t, math.Atanh(0.5), RToFisherZ(0.5), 1e-12)
	assert.False(t, math.IsInf(RToFisherZ(1), 0))
	assert.False(t, math.IsInf(RToFisherZ(-1), 0))
	assert.Less(t, RToFisherZ(-1), -10.0)
}

func TestConversions(t *testing.T) {
	assert.InDelta(t, 2*0.3/math.Sqrt(0.91), RToD(0.3), 1e-12)
	assert.True(t, math.IsNaN(RToD(1.2)))
	assert.InDelta(t, 2*math.Sqrt(0.2/0.8), EtaSqToD(0.2), 1e-12)
	assert.True(t, math.IsNaN(EtaSqToD(1)))
	assert.InDelta(t, math.Log(4)*math.Sqrt(3)/math.Pi, LogOddsToD(math.Log(4)), 1e-12)
	assert.InDelta(t, 0.0, CohensH(0.5, 0.5), 1e-12)
	assert.Greater(t, CohensH(0.8, 0.5), 0.0)
}

func TestLogOddsRatio_HaldaneCorrection(t *testing.T) {
	assert.InDelta(t, math.Log(30.0*30.0/(10.0*10.0)), LogOddsRatio(scoring.Table2x2{A: 30, B: 10, C: 10, D: 30}), 1e-12)

	zero := scoring.Table2x2{A: 10, B: 0, C: 5, D: 5}
	assert.InDelta(t, math.Log(10.5*5.5/(0.5*5.5)), LogOddsRatio(zero), 1e-12)
	assert.InDelta(t, math.Sqrt(1/10.5+1/0.5+1/5.5+1/5.5), LogOddsSE(zero), 1e-12)

	assert.True(t, math.IsNaN(LogOddsRatio(scoring.Table2x2{})))
}

func TestChiSquare2x2(t *testing.T) {
	assert.InDelta(t, 20.0, ChiSquare2x2(scoring.Table2x2{A: 30, B: 10, C: 10, D: 30}), 1e-12)
	assert.Equal(t, 0.0, ChiSquare2x2(scoring.Table2x2{A: 10, B: 10, C: 0, D: 0}))
}

func TestStandardErrors(t *testing.T) {
	assert.InDelta(t, math.Sqrt(80.0/1600.0+0.25/160.0), DSE(0.5, 40, 40), 1e-12)
	assert.InDelta(t, math.Sqrt(1.0/30+0.25/60), DSE(0.5, 30, 0), 1e-12)
	assert.InDelta(t, 1/math.Sqrt(47), RSE(50), 1e-12)
	assert.True(t, math.IsNaN(RSE(3)))
	assert.True(t, math.IsNaN(DSE(0.5, 0, 0)))
}

func TestToDEquivalent(t *testing.T) {
	assert.Equal(t, 0.4, ToDEquivalent(scoring.TestT, 0.4))
	assert.InDelta(t, RToD(0.3), ToDEquivalent(scoring.TestCorrelation, 0.3), 1e-12)
	assert.InDelta(t, RToD(0.2), ToDEquivalent(scoring.TestChiSquare, 0.2), 1e-12)
	assert.InDelta(t, EtaSqToD(0.1), ToDEquivalent(scoring.TestF, 0.1), 1e-12)
	assert.True(t, math.IsNaN(ToDEquivalent("wilcoxon", 0.4)))
	assert.True(t, math.IsNaN(ToDEquivalent(scoring.TestT, math.Inf(1))))
}

func TestStandardize(t *testing.T) {
	stat := 2.66
	precomputed := 0.9
	f := 16.0
	chi := 9.0

	t.Run("t statistic", func(t *testing.T) {
		eff := Standardize(scoring.TestT, scoring.Side{Statistic: &stat, N1: 40, N2: 40}, true, 1)
		require.True(t, eff.Valid())
		assert.InDelta(t, TToD(2.66, 40, 40, true), *eff.D, 1e-12)
		assert.InDelta(t, DSE(*eff.D, 40, 40), *eff.SE, 1e-12)
	})

	t.Run("precomputed d wins", func(t *testing.T) {
		eff := Standardize(scoring.TestT, scoring.Side{Statistic: &stat, N1: 40, N2: 40, EffectD: &precomputed}, true, 1)
		assert.Equal(t, 0.9, *eff.D)
	})

	t.Run("unsigned F takes direction", func(t *testing.T) {
		eff := Standardize(scoring.TestF, scoring.Side{Statistic: &f, DF1: 1, DF2: 98, N1: 100}, true, -1)
		require.NotNil(t, eff.D)
		assert.InDelta(t, -TToD(4, 50, 50, true), *eff.D, 1e-12)
	})

	t.Run("chi-square from statistic", func(t *testing.T) {
		eff := Standardize(scoring.TestChiSquare, scoring.Side{Statistic: &chi, N1: 100}, true, 1)
		require.True(t, eff.Valid())
		assert.InDelta(t, PhiToD(0.3), *eff.D, 1e-12)
	})

	t.Run("chi-square counts", func(t *testing.T) {
		counts := scoring.Table2x2{A: 30, B: 10, C: 10, D: 30}
		eff := Standardize(scoring.TestChiSquare, scoring.Side{Counts: &counts}, true, 0)
		require.True(t, eff.Valid())
		assert.InDelta(t, LogOddsToD(math.Log(9)), *eff.D, 1e-12)
	})

	t.Run("missing statistic", func(t *testing.T) {
		eff := Standardize(scoring.TestT, scoring.Side{N1: 40}, true, 1)
		assert.Nil(t, eff.D)
		assert.Nil(t, eff.SE)
		assert.False(t, eff.Valid())
	})

	t.Run("binomial", func(t *testing.T) {
		eff := Standardize(scoring.TestBinomial, scoring.Side{Successes: 36, Trials: 50}, false, 1)
		require.True(t, eff.Valid())
		assert.InDelta(t, CohensH(0.72, 0.5), *eff.D, 1e-12)
		assert.InDelta(t, 1/math.Sqrt(50), *eff.SE, 1e-12)
	})
}
