package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"RiskReturn/internal/domain/models"
	domrepo "RiskReturn/internal/domain/repository"
	"RiskReturn/pkg/cache"
	applogger "RiskReturn/pkg/logger"
	"RiskReturn/pkg/util"
)

// CachedProvider memoizes price tables per (provider, tickers, start day,
// end day). Keys use calendar days so repeated requests within a day hit.
type CachedProvider struct {
	next  domrepo.PriceProvider
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedProvider(next domrepo.PriceProvider, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedProvider {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedProvider{next: next, cache: c, ttl: ttl, l: l}
}

func (p *CachedProvider) Name() string { return p.next.Name() }

func (p *CachedProvider) FetchAdjustedClose(ctx context.Context, tickers []string, start, end time.Time) (*models.PriceTable, error) {
	key := cache.GenerateKeyWithParams("prices", p.next.Name(),
		util.FormatDate(start), util.FormatDate(end),
		cache.HashKey(strings.Join(tickers, ",")))

	var table models.PriceTable
	err := p.cache.Get(ctx, key, &table)
	if err == nil {
		p.l.Debug("price cache hit", applogger.String("key", key))
		return &table, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// a broken cache must not break analysis
		p.l.Warn("price cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	fresh, err := p.next.FetchAdjustedClose(ctx, tickers, start, end)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Set(ctx, key, fresh, p.ttl); err != nil {
		p.l.Warn("price cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return fresh, nil
}
