package bayes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alignbench/domain/scoring"
)

// Reference values from direct high-resolution integration of the JZS
// integrals (Rouder 2009 eq. 1; Wetzels & Wagenmakers 2012 eq. 13).
func TestBFT_ReferenceValues(t *testing.T) {
	tests := []struct {
		name        string
		t           float64
		n1, n2      int
		independent bool
		expected    float64
	}{
		{"two-sample t(78)=2.66", 2.66, 40, 40, true, 4.6743021934120845},
		{"two-sample null", 0, 40, 40, true, 0.23232629437643101},
		{"one-sample t(29)=2", 2.0, 30, 0, false, 1.1102318669691393},
		{"large effect", 5.0, 20, 20, true, 1252.5171992129096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BFT(tt.t, tt.n1, tt.n2, tt.independent)
			assert.InEpsilon(t, tt.expected, got, 1e-5)
		})
	}
}

func TestBFT_SignSymmetric(t *testing.T) {
	assert.InDelta(t, BFT(2.66, 40, 40, true), BFT(-2.66, 40, 40, true), 1e-12)
}

func TestBFT_PairedIgnoresN2(t *testing.T) {
	assert.Equal(t, BFT(2.0, 30, 0, false), BFT(2.0, 30, 30, false))
}

func TestBFT_Degenerate(t *testing.T) {
	assert.Equal(t, 1.0, BFT(math.NaN(), 40, 40, true))
	assert.Equal(t, 1.0, BFT(math.Inf(1), 40, 40, true))
	assert.Equal(t, 1.0, BFT(3, 2, 0, false))
	assert.Equal(t, 1.0, BFT(3, 1, 1, true))
}

func TestBFT_ExtremeStatisticStaysFinite(t *testing.T) {
	logBF := LogBFT(60, 500, 500, true, DefaultScale)
	assert.False(t, math.IsInf(logBF, 0))
	assert.False(t, math.IsNaN(logBF))
	assert.Greater(t, logBF, 100.0)
	assert.Equal(t, 1.0, PosteriorFromLog(logBF, 1))
}

func TestScenario_HumanT266(t *testing.T) {
	bf := BFT(2.66, 40, 40, true)
	pi := Posterior(bf, 1)
	assert.Greater(t, bf, 1.0, "evidence favors the alternative")
	assert.Greater(t, pi, 0.5)
	assert.InDelta(t, 0.8237668763639326, pi, 1e-5)
}

func TestBFR_ReferenceValues(t *testing.T) {
	assert.InEpsilon(t, 1.0251146290060016, BFR(0.3, 50), 1e-5)
	assert.InEpsilon(t, 7.146625894535012, BFR(0.5, 30), 1e-5)
	assert.InEpsilon(t, 0.11070463773305103, BFR(0, 50), 1e-5)
	assert.InDelta(t, BFR(0.5, 30), BFR(-0.5, 30), 1e-12)
}

func TestBFR_Degenerate(t *testing.T) {
	assert.Equal(t, 1.0, BFR(0.5, 2))
	assert.Equal(t, 1.0, BFR(1.5, 30))
	assert.Equal(t, 1.0, BFR(math.NaN(), 30))

	perfect := LogBFR(1, 30)
	assert.False(t, math.IsInf(perfect, 0))
	assert.Greater(t, perfect, 10.0)
}

func TestBFChiSq(t *testing.T) {
	assert.InDelta(t, math.Exp((10-math.Log(100))/2), BFChiSq(10, 100, 1), 1e-9)
	assert.Equal(t, 1.0, BFChiSq(10, 2, 1))
	assert.Equal(t, 1.0, BFChiSq(-1, 100, 1))
	assert.Equal(t, 1.0, BFChiSq(10, 100, 0))
}

func TestBFAnova(t *testing.T) {
	t.Run("single df matches t", func(t *testing.T) {
		assert.InEpsilon(t, BFT(2.66, 40, 40, true), BFAnova(2.66*2.66, 1, 78, 80), 1e-9)
	})

	t.Run("multi df BIC", func(t *testing.T) {
		f, df1, df2, n := 5.0, 2.0, 57.0, 60
		expected := math.Exp((60*math.Log1p(f*df1/df2) - df1*math.Log(60)) / 2)
		assert.InEpsilon(t, expected, BFAnova(f, df1, df2, n), 1e-12)
	})

	t.Run("n inferred from df", func(t *testing.T) {
		assert.Equal(t, BFAnova(5, 2, 57, 60), BFAnova(5, 2, 57, 0))
	})

	t.Run("degenerate", func(t *testing.T) {
		assert.Equal(t, 1.0, BFAnova(math.NaN(), 2, 57, 60))
		assert.Equal(t, 1.0, BFAnova(5, 0, 57, 60))
	})
}

func TestLogBFBinomial(t *testing.T) {
	// B(6,6) / 0.5^10 = 1024/2772
	assert.InDelta(t, 1024.0/2772.0, math.Exp(LogBFBinomial(5, 10, 0.5)), 1e-12)
	assert.Greater(t, LogBFBinomial(19, 20, 0.5), 0.0)
	assert.Equal(t, 0.0, LogBFBinomial(5, 2, 0.5))
	assert.Equal(t, 0.0, LogBFBinomial(5, 10, 1))
}

func TestPosterior(t *testing.T) {
	assert.Equal(t, 0.5, Posterior(1, 1))
	assert.InDelta(t, 0.75, Posterior(3, 1), 1e-12)
	assert.InDelta(t, 0.6, Posterior(1, 1.5), 1e-12)
	assert.Equal(t, 1.0, Posterior(math.Inf(1), 1))
	assert.Equal(t, 0.5, Posterior(math.NaN(), 1))
	assert.Equal(t, 0.5, Posterior(2, 0))

	assert.InDelta(t, Posterior(3, 2), PosteriorFromLog(math.Log(3), 2), 1e-12)
	assert.InDelta(t, 0.0, PosteriorFromLog(-800, 1), 1e-300)
}

func TestPosterior3Way(t *testing.T) {
	plus, minus, zero, ok := Posterior3Way(3, 1, 1).Distribution()
	require.True(t, ok)
	assert.InDelta(t, 0.75, plus, 1e-12)
	assert.Equal(t, 0.0, minus)
	assert.InDelta(t, 0.25, zero, 1e-12)

	plus, minus, zero, _ = Posterior3Way(3, -1, 1).Distribution()
	assert.Equal(t, 0.0, plus)
	assert.InDelta(t, 0.75, minus, 1e-12)
	assert.InDelta(t, 0.25, zero, 1e-12)

	undirected := Posterior3Way(3, 0, 1)
	assert.Equal(t, scoring.KindScalar, undirected.Kind())
	assert.InDelta(t, 0.75, undirected.Value(), 1e-12)
	_, _, _, ok = undirected.Distribution()
	assert.False(t, ok)

	c := NewCalculator(DefaultScale, 1)
	assert.Equal(t, scoring.KindScalar, c.Posterior3Way(0, 0).Kind())
	assert.InDelta(t, 0.5, c.Posterior3Way(0, 0).Value(), 1e-12)
}

func TestCalculator_LogEvidence(t *testing.T) {
	c := NewCalculator(0, -1)
	assert.Equal(t, DefaultScale, c.Scale)
	assert.Equal(t, 1.0, c.PriorOdds)

	tStat := 2.66
	logBF, ok := c.LogEvidence(scoring.TestT, scoring.Side{Statistic: &tStat, N1: 40, N2: 40}, true)
	require.True(t, ok)
	assert.InEpsilon(t, math.Log(4.6743021934120845), logBF, 1e-5)

	_, ok = c.LogEvidence(scoring.TestT, scoring.Side{N1: 40}, true)
	assert.False(t, ok, "missing statistic")

	_, ok = c.LogEvidence(scoring.TestT, scoring.Side{Statistic: &tStat}, true)
	assert.False(t, ok, "missing sample size")

	_, ok = c.LogEvidence(scoring.TestType("wilcoxon"), scoring.Side{Statistic: &tStat, N1: 40}, true)
	assert.False(t, ok, "unknown family")
}

func TestCalculator_ChiSquareFromCounts(t *testing.T) {
	c := NewCalculator(DefaultScale, 1)
	counts := scoring.Table2x2{A: 30, B: 10, C: 10, D: 30}
	logBF, ok := c.LogEvidence(scoring.TestChiSquare, scoring.Side{Counts: &counts}, true)
	require.True(t, ok)

	// chi2 = 80·(900-100)² / (40·40·40·40) = 20
	assert.InDelta(t, (20-math.Log(80))/2, logBF, 1e-9)
}

func TestCalculator_FamiliesProduceEvidence(t *testing.T) {
	c := NewCalculator(DefaultScale, 1)
	f := 9.0
	r := 0.45
	tests := []struct {
		name string
		tt   scoring.TestType
		side scoring.Side
	}{
		{"anova", scoring.TestF, scoring.Side{Statistic: &f, DF1: 2, DF2: 87, N1: 90}},
		{"correlation", scoring.TestCorrelation, scoring.Side{Statistic: &r, N1: 60}},
		{"binomial", scoring.TestBinomial, scoring.Side{Successes: 40, Trials: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logBF, ok := c.LogEvidence(tt.tt, tt.side, false)
			require.True(t, ok)
			assert.Greater(t, logBF, 0.0)
			assert.Greater(t, c.Posterior(logBF), 0.5)
		})
	}
}
