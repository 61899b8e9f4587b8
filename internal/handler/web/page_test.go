package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"RiskReturn/internal/domain/models"
	"RiskReturn/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	got    models.AnalysisRequest
	report *models.AnalysisReport
	err    error
}

func (s *stubAnalyzer) Analyze(_ context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	s.got = req
	return s.report, s.err
}

func sampleReport() *models.AnalysisReport {
	line := models.RegressionLine{Slope: 0.5, Intercept: 0.01}
	return &models.AnalysisReport{
		PeriodKey:   "3m",
		PeriodLabel: "Last quarter",
		Rows: []models.AnalysisRow{
			{Ticker: "SPY", PeriodReturn: 0.05, AnnualizedVolatility: 0.12},
			{Ticker: "XLE", PeriodReturn: -0.031, AnnualizedVolatility: 0.22},
		},
		Failures:   []models.AssetFailure{{Ticker: "NOPE", Reason: models.ReasonUnknownTicker}},
		Regression: &line,
		Trend:      line.TrendPoints([]float64{0.12, 0.22}),
	}
}

func newEcho(a *stubAnalyzer) *echo.Echo {
	e := echo.New()
	NewPageHandler(nil, a, models.AnalysisRequest{Tickers: "SPY, QQQ", Period: "1y"}).RegisterRoutes(e)
	return e
}

func TestIndex_PrefillsDefaults(t *testing.T) {
	e := newEcho(&stubAnalyzer{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="SPY, QQQ"`)
	assert.Contains(t, body, `<option value="1y" selected>Last year</option>`)
	assert.NotContains(t, body, "Plotly.newPlot")
}

func TestAnalyze_RendersTableAndChart(t *testing.T) {
	a := &stubAnalyzer{report: sampleReport()}
	e := newEcho(a)

	form := url.Values{"tickers": {"SPY,XLE,NOPE"}, "period": {"3m"}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SPY,XLE,NOPE", a.got.Tickers)

	body := rec.Body.String()
	assert.Contains(t, body, "<th>Asset</th><th>Period return</th><th>Annualized volatility</th>")
	assert.Contains(t, body, "5.00%")
	assert.Contains(t, body, "-3.10%")
	assert.Contains(t, body, "NOPE")
	assert.Contains(t, body, `<option value="3m" selected>Last quarter</option>`)
	assert.Contains(t, body, "Plotly.newPlot")
	assert.Contains(t, body, "Regression line")
	assert.Contains(t, body, "Period return vs. annualized volatility (Last quarter)")
}

func TestAnalyze_FetchErrorIsShown(t *testing.T) {
	e := newEcho(&stubAnalyzer{err: usecase.ErrFetchFailed})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze?tickers=SPY", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not download prices")
	assert.NotContains(t, rec.Body.String(), "Plotly.newPlot")
}

func TestAnalyze_RegressionErrorIsDistinct(t *testing.T) {
	r := sampleReport()
	r.Rows = r.Rows[:1]
	r.Regression, r.Trend = nil, nil
	r.RegressionError = &models.RegressionError{Code: "ERR_TOO_FEW_POINTS", Message: "need at least 2 points"}

	e := newEcho(&stubAnalyzer{report: r})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze?tickers=SPY", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No regression line: need at least 2 points")
	assert.NotContains(t, rec.Body.String(), "Regression line\"")
}

func TestNewFigure(t *testing.T) {
	f := newFigure(sampleReport())

	require.Len(t, f.Data, 2)
	pts := f.Data[0]
	assert.Equal(t, []string{"SPY", "XLE"}, pts.Text)
	assert.Equal(t, "top center", pts.TextPosition)
	assert.Equal(t, 12, pts.Marker.Size)
	assert.Equal(t, 0.8, pts.Marker.Opacity)

	trend := f.Data[1]
	assert.Equal(t, "Regression line", trend.Name)
	assert.Equal(t, "dash", trend.Line.Dash)
	assert.Equal(t, "red", trend.Line.Color)
	assert.Equal(t, 800, f.Layout.Width)
	assert.Equal(t, 600, f.Layout.Height)
}
