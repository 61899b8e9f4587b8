package stats

import (
	"math"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodReturn(t *testing.T) {
	r, err := PeriodReturn(Floats(100, 110, 121))
	require.NoError(t, err)
	assert.InDelta(t, 0.21, r, 1e-12)
}

func TestConstantSeries(t *testing.T) {
	prices := Floats(100, 100, 100)

	s, err := Compute(prices)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.PeriodReturn)
	assert.Equal(t, 0.0, s.AnnualizedVolatility)
	for _, lr := range LogReturns(prices) {
		assert.Equal(t, 0.0, lr)
	}
}

func TestVolatilityScalesWithLogReturns(t *testing.T) {
	base := []float64{100, 103, 99, 104, 101, 107}
	doubled := make([]float64, len(base))
	for i, p := range base {
		// (p/p0)^2 doubles every log return
		doubled[i] = base[0] * math.Pow(p/base[0], 2)
	}

	s1, err := Compute(Floats(base...))
	require.NoError(t, err)
	s2, err := Compute(Floats(doubled...))
	require.NoError(t, err)

	require.Greater(t, s1.AnnualizedVolatility, 0.0)
	assert.InDelta(t, 2*s1.AnnualizedVolatility, s2.AnnualizedVolatility, 1e-12)
}

func TestAnnualizedVolatility_SampleStdDev(t *testing.T) {
	// sample std of {0.01, -0.01} is sqrt(0.0002)
	vol, err := AnnualizedVolatility([]float64{0.01, -0.01})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.0002)*math.Sqrt(252), vol, 1e-12)
}

func TestSingleLogReturnIsInsufficient(t *testing.T) {
	_, err := Compute(Floats(100, 105))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestGapsAreSkipped(t *testing.T) {
	prices := []null.Float{
		null.FloatFrom(100),
		null.FloatFrom(110),
		{},
		null.FloatFrom(121),
		null.FloatFrom(133.1),
	}

	lr := LogReturns(prices)
	require.Len(t, lr, 2)
	assert.InDelta(t, math.Log(1.1), lr[0], 1e-12)
	assert.InDelta(t, math.Log(1.1), lr[1], 1e-12)

	s, err := Compute(prices)
	require.NoError(t, err)
	assert.InDelta(t, 0.331, s.PeriodReturn, 1e-9)
	assert.InDelta(t, 0.0, s.AnnualizedVolatility, 1e-12)
	assert.Equal(t, 4, s.Observations)
}

func TestMissingEndpoint(t *testing.T) {
	_, err := Compute([]null.Float{null.FloatFrom(100), null.FloatFrom(101), null.FloatFrom(102), {}})
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = Compute([]null.Float{{}, null.FloatFrom(101), null.FloatFrom(102), null.FloatFrom(103)})
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestNonPositivePrice(t *testing.T) {
	_, err := Compute(Floats(100, 0, 101))
	assert.ErrorIs(t, err, ErrNonPositivePrice)

	_, err = Compute(Floats(100, -5, 101))
	assert.ErrorIs(t, err, ErrNonPositivePrice)
}

func TestAllAbsent(t *testing.T) {
	_, err := Compute(make([]null.Float, 5))
	assert.ErrorIs(t, err, ErrInsufficientData)
}
