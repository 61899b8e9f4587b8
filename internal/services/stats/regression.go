package stats

import (
	"errors"
	"fmt"

	"RiskReturn/internal/domain/models"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrLengthMismatch = errors.New("x and y differ in length")
	ErrTooFewPoints   = errors.New("at least two points are required")
	ErrSingularFit    = errors.New("all x values are equal")
)

// FitLine fits y = m*x + b by ordinary least squares.
func FitLine(x, y []float64) (models.RegressionLine, error) {
	if len(x) != len(y) {
		return models.RegressionLine{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return models.RegressionLine{}, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(x))
	}
	if stat.Variance(x, nil) == 0 {
		return models.RegressionLine{}, ErrSingularFit
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	return models.RegressionLine{Slope: slope, Intercept: intercept}, nil
}

// ErrorCode maps a FitLine error to the code shown to users.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrTooFewPoints):
		return "ERR_TOO_FEW_POINTS"
	case errors.Is(err, ErrSingularFit):
		return "ERR_SINGULAR_FIT"
	case errors.Is(err, ErrLengthMismatch):
		return "ERR_LENGTH_MISMATCH"
	default:
		return "ERR_REGRESSION"
	}
}
