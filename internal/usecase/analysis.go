package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RiskReturn/internal/domain/models"
	domrepo "RiskReturn/internal/domain/repository"
	"RiskReturn/internal/services/stats"
	applogger "RiskReturn/pkg/logger"
	"RiskReturn/pkg/util"
)

var (
	ErrFetchFailed    = errors.New("price fetch failed")
	ErrNoUsableAssets = errors.New("no usable assets")
)

// ProgressFunc is called once per requested ticker, in input order.
type ProgressFunc func(models.Progress)

// Analyzer runs one analysis per call. It holds no per-run state.
type Analyzer struct {
	provider domrepo.PriceProvider
	events   domrepo.EventPublisher
	metrics  domrepo.Metrics
	l        *applogger.Logger
	now      func() time.Time
}

type AnalyzerOption func(*Analyzer)

// WithClock replaces time.Now as the anchor of the date range.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

func WithEvents(p domrepo.EventPublisher) AnalyzerOption {
	return func(a *Analyzer) { a.events = p }
}

func WithMetrics(m domrepo.Metrics) AnalyzerOption {
	return func(a *Analyzer) { a.metrics = m }
}

func NewAnalyzer(provider domrepo.PriceProvider, l *applogger.Logger, opts ...AnalyzerOption) *Analyzer {
	if l == nil {
		l = applogger.Nop()
	}
	a := &Analyzer{
		provider: provider,
		metrics:  nopMetrics{},
		l:        l.Component("analyzer"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ParseTickers splits a comma separated list and trims each entry. No
// deduplication or validation happens here.
func ParseTickers(s string) []string {
	return util.SplitAndTrim(s, ",")
}

func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	return a.AnalyzeWithProgress(ctx, req, nil)
}

// AnalyzeWithProgress runs the full pipeline. With ErrNoUsableAssets the
// returned report is still populated with the per-asset failures.
func (a *Analyzer) AnalyzeWithProgress(ctx context.Context, req models.AnalysisRequest, progress ProgressFunc) (*models.AnalysisReport, error) {
	began := time.Now()
	tickers := ParseTickers(req.Tickers)
	period := domrepo.ResolvePeriod(req.Period)

	end := a.now()
	if req.AsOf != "" {
		asOf, ok := util.ParseTime(req.AsOf)
		if !ok {
			return nil, fmt.Errorf("invalid as_of %q", req.AsOf)
		}
		end = asOf
	}
	start := period.StartDate(end)

	report := &models.AnalysisReport{
		Tickers:     tickers,
		PeriodKey:   period.Key,
		PeriodLabel: period.Label,
		Start:       start,
		End:         end,
		GeneratedAt: a.now().UTC(),
		Provider:    a.provider.Name(),
		Rows:        make([]models.AnalysisRow, 0, len(tickers)),
		Failures:    []models.AssetFailure{},
	}

	fetchStart := time.Now()
	table, err := a.provider.FetchAdjustedClose(ctx, tickers, start, end)
	a.metrics.RecordFetchLatency(a.provider.Name(), time.Since(fetchStart).Seconds())
	if err != nil {
		a.metrics.RecordAnalysis(period.Key, "fetch_failed", len(tickers))
		a.metrics.RecordError("fetch")
		a.l.Error("price fetch failed",
			applogger.String("provider", a.provider.Name()),
			applogger.Strings("tickers", tickers),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	for i, ticker := range tickers {
		row, failure := analyzeAsset(table, ticker)
		if failure != nil {
			report.Failures = append(report.Failures, *failure)
			a.metrics.RecordAssetFailure(string(failure.Reason))
		} else {
			report.Rows = append(report.Rows, row)
		}
		if progress != nil {
			p := models.Progress{Ticker: ticker, Index: i + 1, Total: len(tickers), OK: failure == nil}
			if failure != nil {
				p.Reason = failure.Reason
			}
			progress(p)
		}
	}

	if len(report.Rows) == 0 {
		a.metrics.RecordAnalysis(period.Key, "no_usable_assets", len(tickers))
		return report, ErrNoUsableAssets
	}

	line, err := stats.FitLine(report.Volatilities(), report.Returns())
	if err != nil {
		report.RegressionError = &models.RegressionError{Code: stats.ErrorCode(err), Message: err.Error()}
	} else {
		report.Regression = &line
		report.Trend = line.TrendPoints(report.Volatilities())
	}

	a.metrics.RecordAnalysis(period.Key, "ok", len(tickers))
	a.l.Info("analysis completed",
		applogger.String("period", period.Key),
		applogger.Int("rows", len(report.Rows)),
		applogger.Int("failures", len(report.Failures)),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	a.publish(ctx, report, time.Since(began))
	return report, nil
}

func analyzeAsset(table *models.PriceTable, ticker string) (models.AnalysisRow, *models.AssetFailure) {
	if ticker == "" {
		return models.AnalysisRow{}, &models.AssetFailure{
			Ticker:  ticker,
			Reason:  models.ReasonUnknownTicker,
			Message: "empty ticker symbol",
		}
	}
	col, ok := table.Column(ticker)
	if !ok {
		return models.AnalysisRow{}, &models.AssetFailure{
			Ticker:  ticker,
			Reason:  models.ReasonUnknownTicker,
			Message: "no data returned for this symbol",
		}
	}

	s, err := stats.Compute(col)
	if err != nil {
		return models.AnalysisRow{}, &models.AssetFailure{
			Ticker:  ticker,
			Reason:  failureReason(err),
			Message: err.Error(),
		}
	}
	return models.AnalysisRow{
		Ticker:               ticker,
		PeriodReturn:         s.PeriodReturn,
		AnnualizedVolatility: s.AnnualizedVolatility,
		Observations:         s.Observations,
	}, nil
}

func failureReason(err error) models.FailureReason {
	switch {
	case errors.Is(err, stats.ErrMissingEndpoint):
		return models.ReasonMissingEndpoint
	case errors.Is(err, stats.ErrNonPositivePrice):
		return models.ReasonNonPositivePrice
	default:
		return models.ReasonInsufficientData
	}
}

func (a *Analyzer) publish(ctx context.Context, report *models.AnalysisReport, took time.Duration) {
	if a.events == nil {
		return
	}
	// the request may be cancelled as soon as we return
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := a.events.PublishAnalysisCompleted(pctx, models.NewAnalysisCompletedEvent(report, took)); err != nil {
		a.metrics.RecordError("publish")
		a.l.Warn("publish analysis event failed", applogger.Error(err))
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(string, string, int) {}
func (nopMetrics) RecordAssetFailure(string) {}
func (nopMetrics) RecordError(string) {}
func (nopMetrics) RecordFetchLatency(string, float64) {}
