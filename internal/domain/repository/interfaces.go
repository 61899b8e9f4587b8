package repository

import (
	"context"
	"time"

	"RiskReturn/internal/domain/models"
)

// PriceProvider returns adjusted closes for tickers in [start, end].
// Tickers the provider does not know are simply absent from the table; an
// error means the whole fetch failed.
type PriceProvider interface {
	Name() string
	FetchAdjustedClose(ctx context.Context, tickers []string, start, end time.Time) (*models.PriceTable, error)
}

type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, ev *models.AnalysisCompletedEvent) error
	Close() error
}

type Metrics interface {
	RecordAnalysis(period, status string, assets int)
	RecordAssetFailure(reason string)
	RecordError(kind string)
	RecordFetchLatency(provider string, seconds float64)
}
