package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLine_RecoversExactLine(t *testing.T) {
	line, err := FitLine([]float64{1, 2, 3, 4}, []float64{3, 5, 7, 9})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, line.Slope, 1e-12)
	assert.InDelta(t, 1.0, line.Intercept, 1e-12)
	assert.InDelta(t, 21.0, line.Predict(10), 1e-9)
}

func TestFitLine_TrendPoints(t *testing.T) {
	line, err := FitLine([]float64{0.2, 0.1}, []float64{0.3, 0.1})
	require.NoError(t, err)

	pts := line.TrendPoints([]float64{0.2, 0.1})
	require.Len(t, pts, 2)
	assert.InDelta(t, 0.2, pts[0].X, 1e-12)
	assert.InDelta(t, 0.3, pts[0].Y, 1e-12)
	assert.InDelta(t, 0.1, pts[1].Y, 1e-12)
}

func TestFitLine_NoisyData(t *testing.T) {
	x := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	y := []float64{0.05, 0.09, 0.16, 0.19, 0.26}

	line, err := FitLine(x, y)
	require.NoError(t, err)

	// closed form: m = cov(x,y)/var(x), b = mean(y) - m*mean(x)
	assert.InDelta(t, 0.52, line.Slope, 1e-9)
	assert.InDelta(t, -0.006, line.Intercept, 1e-9)
}

func TestFitLine_Errors(t *testing.T) {
	_, err := FitLine([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = FitLine([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, ErrTooFewPoints)
	assert.Equal(t, "ERR_TOO_FEW_POINTS", ErrorCode(err))

	_, err = FitLine([]float64{0.3, 0.3, 0.3}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrSingularFit)
	assert.Equal(t, "ERR_SINGULAR_FIT", ErrorCode(err))
}
