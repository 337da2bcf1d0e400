//go:build wireinject
// +build wireinject

package di

import (
	"panwatch/pkg/config"
	"panwatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config, appVersion string) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideDB,
		ProvideLogSink,
		ProvideMetrics,
		ProvideCache,

		// Repositories
		ProvideStockStore,
		ProvideAgentStore,
		ProvideSettingStore,
		ProvideSuggestionStore,
		ProvideLogStore,

		// Upstream services
		ProvideQuoteService,
		ProvideDirectory,
		ProvideIndicatorService,
		ProvideAIClient,
		ProvideVersionChecker,

		// Agents and scheduling
		ProvideDailyReport,
		ProvideRegistry,
		ProvideRunner,
		ProvideScheduler,

		// Use cases
		ProvideWatchlistUseCase,
		ProvideAgentsUseCase,
		ProvideSettingsUseCase,
		ProvideLogsUseCase,
		ProvideInsightsUseCase,

		// HTTP surface
		ProvideHandlers,
		ProvideServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
