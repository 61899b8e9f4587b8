package di

import (
	"context"
	"fmt"
	"time"

	"RiskReturn/internal/domain/models"
	"RiskReturn/internal/domain/repository"
	"RiskReturn/internal/handler/api"
	"RiskReturn/internal/handler/web"
	"RiskReturn/internal/handler/ws"
	internalrepo "RiskReturn/internal/repository"
	"RiskReturn/internal/service/ratelimit"
	"RiskReturn/internal/service/report"
	"RiskReturn/internal/service/yahoo"
	"RiskReturn/internal/usecase"
	"RiskReturn/pkg/breaker"
	"RiskReturn/pkg/cache"
	pkgch "RiskReturn/pkg/clickhouse"
	"RiskReturn/pkg/config"
	xhttp "RiskReturn/pkg/http"
	pkgkafka "RiskReturn/pkg/kafka"
	applogger "RiskReturn/pkg/logger"
	"RiskReturn/pkg/metrics"
	"RiskReturn/pkg/server"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the root logger. With log shipping enabled, error
// logs are aggregated and published through the Kafka producer.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.Ship.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Ship.Interval,
			CountThreshold: cfg.Logging.Ship.CountThreshold,
			Topic:          cfg.Logging.Ship.Topic,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache selects the price cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	memory := func() *cache.MemoryCache {
		return cache.NewMemoryCache(cache.WithMemoryDefaultTTL(cfg.Cache.TTL))
	}
	redisCache := func() (*cache.RedisCache, error) {
		c, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}

	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.Noop{}, nil
	case config.CacheRedis:
		c, err := redisCache()
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.CacheLayered:
		l2, err := redisCache()
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(l2, time.Minute, cache.WithMemoryDefaultTTL(cfg.Cache.TTL)), nil
	default:
		return memory(), nil
	}
}

// ProvideClickHouseClient connects to ClickHouse and creates the price table.
// It returns nil when prices come from another provider.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Provider.Type != config.ProviderClickHouse {
		return nil, nil
	}
	chCfg := cfg.Provider.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(chCfg.Host),
		pkgch.WithPort(chCfg.Port),
		pkgch.WithDatabase(chCfg.Database),
		pkgch.WithCredentials(chCfg.User, chCfg.Password),
		pkgch.WithMaxConnections(chCfg.MaxOpenConns, chCfg.MaxOpenConns/2),
		pkgch.WithHTTP(chCfg.UseHTTP),
		pkgch.WithTimeouts(chCfg.DialTimeout, chCfg.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(chCfg.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideYahooClient builds the Yahoo provider with its outbound rate limit
// and circuit breaker.
func ProvideYahooClient(cfg *config.Config, l *applogger.Logger) *yahoo.Client {
	y := cfg.Provider.Yahoo
	log := l.Component("yahoo")
	return yahoo.New(y.BaseURL,
		yahoo.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(y.Timeout), xhttp.WithUserAgent(y.UserAgent))),
		yahoo.WithLimiter(ratelimit.New(y.RatePerSecond, y.Burst)),
		yahoo.WithBreaker(breaker.New(breaker.Settings{
			Name:         yahoo.ProviderName,
			MaxRequests:  y.Breaker.MaxRequests,
			Interval:     y.Breaker.Interval,
			Timeout:      y.Breaker.Timeout,
			MinRequests:  y.Breaker.MinRequests,
			FailureRatio: y.Breaker.FailureRatio,
			IsSuccessful: yahoo.IsSuccessful,
		}, log)),
		yahoo.WithLogger(log),
	)
}

// ProvidePriceProvider picks the configured provider and puts the cache in
// front of it.
func ProvidePriceProvider(cfg *config.Config, ch *pkgch.Client, c cache.Service, l *applogger.Logger) (repository.PriceProvider, error) {
	var base repository.PriceProvider
	switch cfg.Provider.Type {
	case config.ProviderClickHouse:
		store, err := internalrepo.NewCHPriceStore(ch, l)
		if err != nil {
			return nil, err
		}
		base = store
	default:
		base = ProvideYahooClient(cfg, l)
	}

	if cfg.Cache.Backend == config.CacheNone {
		return base, nil
	}
	return internalrepo.NewCachedProvider(base, c, cfg.Cache.TTL, l), nil
}

// ProvideEventPublisher publishes analysis events to Kafka when enabled.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NoopEventPublisher{}
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideAnalyzer creates the analysis use case.
func ProvideAnalyzer(
	provider repository.PriceProvider,
	events repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(provider, l, usecase.WithEvents(events), usecase.WithMetrics(m))
}

func ProvideReportService(l *applogger.Logger) *report.Service {
	return report.NewService(l)
}

// ProvideAnalysisDefaults returns the request values used when a client
// omits tickers or period.
func ProvideAnalysisDefaults(cfg *config.Config) models.AnalysisRequest {
	return models.AnalysisRequest{
		Tickers: cfg.Analysis.DefaultTickers,
		Period:  cfg.Analysis.DefaultPeriod,
	}
}

// ProvideHandlers lists every route group served by the HTTP server.
func ProvideHandlers(
	cfg *config.Config,
	l *applogger.Logger,
	analyzer *usecase.Analyzer,
	pdf *report.Service,
	defaults models.AnalysisRequest,
) []xhttp.Handler {
	return []xhttp.Handler{
		web.NewPageHandler(l, analyzer, defaults),
		api.NewAnalysisEchoHandler(l, analyzer, pdf, defaults),
		ws.NewAnalysisStreamHandler(l, analyzer, defaults, cfg.Server.CORSOrigins),
	}
}

// ProvideHTTPServer creates the Echo server with the inbound rate limit.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithLogger(l),
		xhttp.WithMetricsPath(""),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	if cfg.RateLimit.Enabled {
		lim := ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		opts = append(opts, xhttp.WithMiddleware(ratelimit.Middleware(lim)))
	}
	return xhttp.NewServer(handlers, opts...)
}

// ProvideApp assembles the application and the resources it releases on
// shutdown.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	c cache.Service,
) *server.App {
	var closers []server.Closer
	if producer != nil {
		closers = append(closers, server.Closer{Name: "kafka", Close: producer.Close})
		closers = append(closers, server.Closer{Name: "log collector", Close: func() error {
			l.RemoveCollector()
			return nil
		}})
	}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Close: ch.Close})
	}
	closers = append(closers, server.Closer{Name: "cache", Close: c.Close})
	return server.New(cfg, l, srv, closers...)
}
