package distributions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPToZ_RoundTrip(t *testing.T) {
	for _, p := range []float64{0.001, 0.025, 0.3, 0.5, 0.9} {
		assert.InDelta(t, p, ZToP(PToZ(p)), 1e-9)
	}
	assert.InDelta(t, 1.959964, PToZ(0.025), 1e-6)
	assert.Equal(t, 0.0, PToZ(0.5))
}

func TestPToZ_StaysFinite(t *testing.T) {
	assert.False(t, math.IsInf(PToZ(0), 0))
	assert.False(t, math.IsInf(PToZ(1), 0))
	assert.Equal(t, 0.0, PToZ(math.NaN()))
}

func TestChiSquareSurvival(t *testing.T) {
	// P(chi2_1 > 3.841459) = 0.05
	assert.InDelta(t, 0.05, ChiSquareSurvival(3.841459, 1), 1e-6)
	// P(chi2_2 > x) = exp(-x/2)
	assert.InDelta(t, math.Exp(-1.5), ChiSquareSurvival(3, 2), 1e-12)
	assert.Equal(t, 1.0, ChiSquareSurvival(0, 3))
	assert.Equal(t, 0.0, ChiSquareSurvival(math.Inf(1), 3))
	assert.Equal(t, 1.0, ChiSquareSurvival(2, 0))
}

func TestTTestPValue(t *testing.T) {
	// t = 2.0, df = 30 → p ≈ 0.05463
	assert.InDelta(t, 0.05463, TTestPValue(2.0, 30), 1e-4)
	assert.Equal(t, 1.0, TTestPValue(2.0, 0))
}

func TestCorrelationPValue(t *testing.T) {
	assert.Equal(t, 0.0, CorrelationPValue(1, 10))
	assert.Equal(t, 1.0, CorrelationPValue(0.4, 2))
	assert.InDelta(t, TTestPValue(0.5*math.Sqrt(28/0.75), 28), CorrelationPValue(0.5, 30), 1e-12)
}

func TestTwoTailedZ(t *testing.T) {
	assert.InDelta(t, 0.05, TwoTailedZ(1.959964), 1e-6)
	assert.InDelta(t, 0.05, TwoTailedZ(-1.959964), 1e-6)
	assert.Equal(t, 1.0, TwoTailedZ(math.NaN()))
}

func TestFTestPValue(t *testing.T) {
	assert.InDelta(t, TTestPValue(2, 30), FTestPValue(4, 1, 30), 1e-9)
	assert.Equal(t, 1.0, FTestPValue(0, 1, 30))
	assert.Equal(t, 1.0, FTestPValue(4, 1, 0))
}
