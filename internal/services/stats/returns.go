package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear scales daily volatility to an annual figure.
const TradingDaysPerYear = 252

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrMissingEndpoint  = errors.New("missing price at start or end of window")
	ErrNonPositivePrice = errors.New("non-positive price")
)

// AssetStats is the per-asset outcome of Compute.
type AssetStats struct {
	PeriodReturn         float64
	AnnualizedVolatility float64
	Observations         int
}

// Compute validates a price column and returns its period return and
// annualized volatility. Absent values inside the window are tolerated; an
// absent first or last value is not.
func Compute(prices []null.Float) (AssetStats, error) {
	present := 0
	for i, p := range prices {
		if !p.Valid {
			continue
		}
		if p.Float64 <= 0 || math.IsNaN(p.Float64) || math.IsInf(p.Float64, 0) {
			return AssetStats{}, fmt.Errorf("%w: %v at row %d", ErrNonPositivePrice, p.Float64, i)
		}
		present++
	}
	if present < 2 {
		return AssetStats{}, fmt.Errorf("%w: %d prices", ErrInsufficientData, present)
	}

	ret, err := PeriodReturn(prices)
	if err != nil {
		return AssetStats{}, err
	}
	vol, err := AnnualizedVolatility(LogReturns(prices))
	if err != nil {
		return AssetStats{}, err
	}

	return AssetStats{PeriodReturn: ret, AnnualizedVolatility: vol, Observations: present}, nil
}

// PeriodReturn is last/first - 1 over the first and last rows.
func PeriodReturn(prices []null.Float) (float64, error) {
	if len(prices) < 2 {
		return 0, fmt.Errorf("%w: %d rows", ErrInsufficientData, len(prices))
	}
	first, last := prices[0], prices[len(prices)-1]
	if !first.Valid || !last.Valid {
		return 0, ErrMissingEndpoint
	}
	if first.Float64 <= 0 || last.Float64 <= 0 {
		return 0, ErrNonPositivePrice
	}
	return last.Float64/first.Float64 - 1, nil
}

// LogReturns computes ln(p[t]/p[t-1]) for every consecutive pair where both
// prices are present. Pairs touching a gap produce nothing.
func LogReturns(prices []null.Float) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, cur := prices[i-1], prices[i]
		if !prev.Valid || !cur.Valid || prev.Float64 <= 0 || cur.Float64 <= 0 {
			continue
		}
		out = append(out, math.Log(cur.Float64/prev.Float64))
	}
	return out
}

// AnnualizedVolatility is the sample (n-1) standard deviation of the log
// returns times sqrt(252). A single return has no sample variance.
func AnnualizedVolatility(logReturns []float64) (float64, error) {
	if len(logReturns) < 2 {
		return 0, fmt.Errorf("%w: %d log returns", ErrInsufficientData, len(logReturns))
	}
	return stat.StdDev(logReturns, nil) * math.Sqrt(TradingDaysPerYear), nil
}

// Floats wraps plain prices, all present.
func Floats(prices ...float64) []null.Float {
	out := make([]null.Float, len(prices))
	for i, p := range prices {
		out[i] = null.FloatFrom(p)
	}
	return out
}
