package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"alignbench/domain/scoring"
)

func TestWeightedMean(t *testing.T) {
	m, ok := WeightedMean([]Weighted{{0.8, 3}, {0.2, 1}})
	require.True(t, ok)
	assert.InDelta(t, 0.65, m, 1e-12)

	m, ok = WeightedMean([]Weighted{{0.8, 0}, {0.2, -4}, {math.NaN(), 2}})
	require.True(t, ok)
	assert.InDelta(t, 0.5, m, 1e-12, "invalid weights fall back to the default")

	_, ok = WeightedMean(nil)
	assert.False(t, ok)
}

func TestWeightedMean_OrderInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 25).Draw(rt, "n")
		items := make([]Weighted, n)
		for i := range items {
			items[i] = Weighted{
				Value:  rapid.Float64Range(0, 1).Draw(rt, "v"),
				Weight: rapid.Float64Range(0.1, 5).Draw(rt, "w"),
			}
		}
		perm := rapid.Permutation(items).Draw(rt, "perm")

		a, _ := WeightedMean(items)
		b, _ := WeightedMean(perm)
		assert.Equal(rt, a, b)
	})
}

func TestFindingAndStudyScore(t *testing.T) {
	tests := []scoring.ScoredTest{
		{PAS: 0.9, Weight: 2},
		{PAS: 0.6, Weight: 1},
	}
	score, ok := FindingScore(tests)
	require.True(t, ok)
	assert.InDelta(t, 0.8, score, 1e-12)

	findings := []scoring.FindingResult{
		{Score: 0.8, Weight: 1},
		{Score: 0.5, Weight: 3},
	}
	score, ok = StudyScore(findings)
	require.True(t, ok)
	assert.InDelta(t, 0.575, score, 1e-12)
}

func TestNormalize_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.Float64Range(0, 1).Draw(rt, "raw")
		norm := Normalize(raw)
		assert.GreaterOrEqual(rt, norm, -1.0)
		assert.LessOrEqual(rt, norm, 1.0)
		assert.InDelta(rt, raw, Denormalize(norm), 1e-15)
	})
	assert.Equal(t, 0.0, Normalize(0.5))
	assert.Equal(t, 1.0, Denormalize(1))
}

func TestInverseVariance_EqualSE(t *testing.T) {
	se := 0.1
	c, ok := InverseVariance([]float64{0.6, 0.7, 0.8}, []*float64{&se, &se, &se})
	require.True(t, ok)
	assert.InDelta(t, 0.7, c.Mean, 1e-12)
	require.NotNil(t, c.SE)
	assert.InDelta(t, 1/math.Sqrt(300), *c.SE, 1e-12)
}

func TestInverseVariance_Weighting(t *testing.T) {
	small, large := 0.1, 0.2
	c, ok := InverseVariance([]float64{0.9, 0.5}, []*float64{&small, &large})
	require.True(t, ok)
	// weights 100 and 25
	assert.InDelta(t, (0.9*100+0.5*25)/125, c.Mean, 1e-12)
	assert.InDelta(t, 1/math.Sqrt(125), *c.SE, 1e-12)
}

func TestInverseVariance_MissingSE(t *testing.T) {
	small, large := 0.1, 0.2
	zero := 0.0
	c, ok := InverseVariance([]float64{0.9, 0.5, 0.3}, []*float64{&small, &large, nil})
	require.True(t, ok)
	assert.InDelta(t, (0.9*100+0.5*25+0.3*25)/150, c.Mean, 1e-12, "missing SE takes the largest")

	c, ok = InverseVariance([]float64{0.6, 0.8}, []*float64{nil, &zero})
	require.True(t, ok)
	assert.InDelta(t, 0.7, c.Mean, 1e-12)
	assert.Nil(t, c.SE)

	_, ok = InverseVariance(nil, nil)
	assert.False(t, ok)
}

func TestDomainMean(t *testing.T) {
	got := DomainMean([]*float64{scoring.Float(0.6), nil, scoring.Float(0.8)})
	require.NotNil(t, got)
	assert.InDelta(t, 0.7, *got, 1e-12)
	assert.Nil(t, DomainMean([]*float64{nil}))
}
