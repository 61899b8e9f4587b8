//go:build wireinject
// +build wireinject

package di

import (
	"RiskReturn/pkg/config"
	"RiskReturn/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideClickHouseClient,

		// Repositories
		ProvidePriceProvider,
		ProvideEventPublisher,

		// Use cases
		ProvideAnalyzer,
		ProvideReportService,
		ProvideAnalysisDefaults,

		// HTTP
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
