package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"RiskReturn/internal/domain/models"
	"RiskReturn/pkg/cache"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Name() string { return "stub" }

func (p *countingProvider) FetchAdjustedClose(_ context.Context, tickers []string, _, _ time.Time) (*models.PriceTable, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	series := map[string][]models.PricePoint{}
	for _, t := range tickers {
		series[t] = []models.PricePoint{
			{Date: day, Price: null.FloatFrom(100)},
			{Date: day.AddDate(0, 0, 1), Price: null.Float{}},
		}
	}
	return models.NewPriceTable(series), nil
}

var (
	from = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	to   = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
)

func TestCachedProvider_HitAfterMiss(t *testing.T) {
	next := &countingProvider{}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewCachedProvider(next, mc, time.Minute, nil)
	ctx := context.Background()

	first, err := p.FetchAdjustedClose(ctx, []string{"SPY"}, from, to)
	require.NoError(t, err)
	second, err := p.FetchAdjustedClose(ctx, []string{"SPY"}, from, to.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	require.Len(t, second.Dates, 2)
	assert.True(t, first.Dates[0].Equal(second.Dates[0]))

	col, ok := second.Column("SPY")
	require.True(t, ok)
	assert.InDelta(t, 100, col[0].Float64, 1e-9)
	assert.False(t, col[1].Valid, "absent values survive the cache round trip")
}

func TestCachedProvider_DifferentTickersMiss(t *testing.T) {
	next := &countingProvider{}
	p := NewCachedProvider(next, cache.Noop{}, time.Minute, nil)
	ctx := context.Background()

	_, err := p.FetchAdjustedClose(ctx, []string{"SPY"}, from, to)
	require.NoError(t, err)
	_, err = p.FetchAdjustedClose(ctx, []string{"SPY"}, from, to)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("down")
	next := &countingProvider{err: boom}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewCachedProvider(next, mc, time.Minute, nil)

	_, err := p.FetchAdjustedClose(context.Background(), []string{"SPY"}, from, to)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, mc.Len())
}
