package models

import "time"

// FailureReason classifies why a single asset was left out of a report.
type FailureReason string

const (
	ReasonUnknownTicker    FailureReason = "unknown_ticker"
	ReasonMissingEndpoint  FailureReason = "missing_endpoint"
	ReasonInsufficientData FailureReason = "insufficient_data"
	ReasonNonPositivePrice FailureReason = "non_positive_price"
)

// AnalysisRow is the computed result for one ticker.
type AnalysisRow struct {
	Ticker               string  `json:"ticker"`
	PeriodReturn         float64 `json:"period_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	Observations         int     `json:"observations"`
}

// AssetFailure reports a ticker that could not be computed.
type AssetFailure struct {
	Ticker  string        `json:"ticker"`
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message"`
}

// TrendPoint is one point of the rendered regression line.
type TrendPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RegressionLine is y = Slope*x + Intercept, fit of return on volatility.
type RegressionLine struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Predict evaluates the line at x.
func (l RegressionLine) Predict(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// TrendPoints evaluates the line at each x, in order.
func (l RegressionLine) TrendPoints(xs []float64) []TrendPoint {
	out := make([]TrendPoint, len(xs))
	for i, x := range xs {
		out[i] = TrendPoint{X: x, Y: l.Predict(x)}
	}
	return out
}

// RegressionError explains why no line could be fit.
type RegressionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AnalysisReport struct {
	Tickers         []string         `json:"tickers"`
	PeriodKey       string           `json:"period"`
	PeriodLabel     string           `json:"period_label"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	GeneratedAt     time.Time        `json:"generated_at"`
	Provider        string           `json:"provider"`
	Rows            []AnalysisRow    `json:"rows"`
	Failures        []AssetFailure   `json:"failures"`
	Regression      *RegressionLine  `json:"regression,omitempty"`
	RegressionError *RegressionError `json:"regression_error,omitempty"`
	Trend           []TrendPoint     `json:"trend,omitempty"`
}

// Volatilities returns the x values of the scatter, in row order.
func (r *AnalysisReport) Volatilities() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.AnnualizedVolatility
	}
	return out
}

// Returns returns the y values of the scatter, in row order.
func (r *AnalysisReport) Returns() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.PeriodReturn
	}
	return out
}

// Labels returns the ticker of every row.
func (r *AnalysisReport) Labels() []string {
	out := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Ticker
	}
	return out
}
