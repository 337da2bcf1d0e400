package di

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"panwatch/internal/agent"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/internal/handler/api"
	internalrepo "panwatch/internal/repository"
	"panwatch/internal/scheduler"
	"panwatch/internal/service/ai"
	"panwatch/internal/service/indicator"
	"panwatch/internal/service/quote"
	"panwatch/internal/service/version"
	"panwatch/internal/usecase"
	"panwatch/pkg/cache"
	"panwatch/pkg/config"
	"panwatch/pkg/logger"
	"panwatch/pkg/metrics"
	"panwatch/pkg/server"
	"panwatch/pkg/web"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

// ProvideDB opens the SQLite database and runs migrations.
func ProvideDB(cfg *config.Config) (*internalrepo.DB, error) {
	db, err := internalrepo.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// ProvideLogSink mirrors info-and-above log lines into the log center.
func ProvideLogSink(cfg *config.Config, log *logger.Logger, logStore *internalrepo.SQLLogStore) *logger.BufferedSink {
	sink := logger.NewBufferedSink(logger.SinkConfig{
		BufferSize:    cfg.Log.BufferSize,
		FlushInterval: cfg.Log.FlushInterval,
		MaxEntries:    cfg.Log.MaxEntries,
		Writer:        internalrepo.NewLogSinkWriter(logStore),
	})
	log.AttachSink(sink)
	return sink
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.NewRecorder()
}

// ProvideCache creates the byte cache backend configured in YAML.
func ProvideCache(cfg *config.Config) (cache.BytesCache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemory(time.Minute), nil
	case "redis":
		return cache.NewRedis(context.Background(), cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	case "layered":
		remote, err := cache.NewRedis(context.Background(), cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return cache.NewLayered(cache.NewMemory(time.Minute), remote, cfg.Cache.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideStockStore creates the watchlist repository.
func ProvideStockStore(db *internalrepo.DB) domrepo.StockStore {
	return internalrepo.NewSQLStockStore(db)
}

// ProvideAgentStore creates the agent config/run repository.
func ProvideAgentStore(db *internalrepo.DB) domrepo.AgentStore {
	return internalrepo.NewSQLAgentStore(db)
}

// ProvideSettingStore creates the settings repository.
func ProvideSettingStore(db *internalrepo.DB) domrepo.SettingStore {
	return internalrepo.NewSQLSettingStore(db)
}

// ProvideSuggestionStore creates the suggestion pool repository.
func ProvideSuggestionStore(db *internalrepo.DB) domrepo.SuggestionStore {
	return internalrepo.NewSQLSuggestionStore(db)
}

// ProvideLogStore creates the log center repository. The concrete type is
// exposed because the buffered sink needs its batch writer.
func ProvideLogStore(db *internalrepo.DB) *internalrepo.SQLLogStore {
	return internalrepo.NewSQLLogStore(db)
}

// ProvideQuoteService creates the live quote client.
func ProvideQuoteService(cfg *config.Config, recorder *metrics.Recorder, log *logger.Logger) *quote.Service {
	return quote.NewService(quote.Config{
		BaseURL:    cfg.Quote.BaseURL,
		Timeout:    cfg.Quote.Timeout,
		RatePerSec: cfg.Quote.RatePerSec,
		Burst:      cfg.Quote.Burst,
	}, recorder, log)
}

// ProvideDirectory creates the symbol directory used by search.
func ProvideDirectory(cfg *config.Config, c cache.BytesCache, recorder *metrics.Recorder, log *logger.Logger) *quote.Directory {
	return quote.NewDirectory(cfg.Quote.ListURL, cfg.Quote.Timeout, c, recorder, log)
}

// ProvideIndicatorService creates the technical summary client.
func ProvideIndicatorService(cfg *config.Config, recorder *metrics.Recorder) *indicator.Service {
	return indicator.NewService(cfg.Indicator.BaseURL, cfg.Indicator.Timeout, recorder)
}

// ProvideAIClient creates the chat-completions client.
func ProvideAIClient(cfg *config.Config, recorder *metrics.Recorder) *ai.Client {
	return ai.NewClient(ai.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, recorder)
}

// ProvideVersionChecker creates the image update checker.
func ProvideVersionChecker(cfg *config.Config, recorder *metrics.Recorder) *version.Checker {
	return version.NewChecker(version.Config{
		Enabled:  cfg.Update.Enabled,
		Repo:     cfg.Update.Repo,
		CacheTTL: cfg.Update.CacheTTL,
	}, recorder)
}

// ProvideDailyReport creates the daily review agent.
func ProvideDailyReport(
	cfg *config.Config,
	stocks domrepo.StockStore,
	suggestions domrepo.SuggestionStore,
	quotes *quote.Service,
	indicators *indicator.Service,
	chat *ai.Client,
	log *logger.Logger,
) *agent.DailyReport {
	return agent.NewDailyReport(stocks, suggestions, quotes, indicators, chat, log, cfg.Agents.SuggestionTTL)
}

// ProvideRegistry registers every built-in agent.
func ProvideRegistry(daily *agent.DailyReport) *agent.Registry {
	r := agent.NewRegistry()
	r.Register(daily)
	return r
}

// ProvideRunner creates the agent runner.
func ProvideRunner(
	cfg *config.Config,
	registry *agent.Registry,
	agents domrepo.AgentStore,
	stocks domrepo.StockStore,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *agent.Runner {
	return agent.NewRunner(registry, agents, stocks, recorder, log, cfg.Agents.HistoryKeep)
}

// ProvideScheduler creates the cron scheduler.
func ProvideScheduler(runner *agent.Runner, agents domrepo.AgentStore, stocks domrepo.StockStore, log *logger.Logger) *scheduler.Scheduler {
	return scheduler.New(runner, agents, stocks, log)
}

// ProvideWatchlistUseCase creates the watchlist use case.
func ProvideWatchlistUseCase(
	stocks domrepo.StockStore,
	directory *quote.Directory,
	registry *agent.Registry,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(stocks, directory, registry, sched, log)
}

// ProvideAgentsUseCase creates the agents use case.
func ProvideAgentsUseCase(agents domrepo.AgentStore, runner *agent.Runner, sched *scheduler.Scheduler, log *logger.Logger) *usecase.AgentsUseCase {
	return usecase.NewAgentsUseCase(agents, runner, sched, log)
}

// ProvideSettingsUseCase creates the settings use case, seeding defaults
// from the server config.
func ProvideSettingsUseCase(cfg *config.Config, settings domrepo.SettingStore, log *logger.Logger) *usecase.SettingsUseCase {
	defaults := map[string]string{
		"ai_base_url":          cfg.AI.BaseURL,
		"ai_model":             cfg.AI.Model,
		"daily_report_cron":    "0 30 9 * * MON-FRI",
		"suggestion_ttl_hours": strconv.Itoa(int(cfg.Agents.SuggestionTTL / time.Hour)),
	}
	return usecase.NewSettingsUseCase(settings, defaults, log)
}

// ProvideLogsUseCase creates the log center use case.
func ProvideLogsUseCase(logStore *internalrepo.SQLLogStore) *usecase.LogsUseCase {
	return usecase.NewLogsUseCase(logStore)
}

// ProvideInsightsUseCase creates the dashboard insights use case.
func ProvideInsightsUseCase(
	stocks domrepo.StockStore,
	suggestions domrepo.SuggestionStore,
	quotes *quote.Service,
	indicators *indicator.Service,
	c cache.BytesCache,
	recorder *metrics.Recorder,
	log *logger.Logger,
) *usecase.InsightsUseCase {
	return usecase.NewInsightsUseCase(stocks, suggestions, quotes, indicators, c, recorder, log)
}

// ProvideHandlers collects every HTTP handler for route registration.
func ProvideHandlers(
	watchlist *usecase.WatchlistUseCase,
	agents *usecase.AgentsUseCase,
	settings *usecase.SettingsUseCase,
	logs *usecase.LogsUseCase,
	insights *usecase.InsightsUseCase,
	checker *version.Checker,
	appVersion string,
) []web.Handler {
	return []web.Handler{
		api.NewStocksHandler(watchlist, agents),
		api.NewAgentsHandler(agents),
		api.NewSettingsHandler(settings),
		api.NewLogsHandler(logs),
		api.NewInsightsHandler(insights),
		api.NewSystemHandler(checker, appVersion),
	}
}

// ProvideServer creates the HTTP server.
func ProvideServer(cfg *config.Config, log *logger.Logger, handlers []web.Handler) *web.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}
	return web.NewServer(log, handlers,
		web.WithPort(cfg.Server.Port),
		web.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		web.WithCORS(cfg.Server.CORS),
		web.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	sink *logger.BufferedSink,
	db *internalrepo.DB,
	registry *agent.Registry,
	agents domrepo.AgentStore,
	settings *usecase.SettingsUseCase,
	runner *agent.Runner,
	sched *scheduler.Scheduler,
	srv *web.Server,
) *server.App {
	return server.New(cfg, log, sink, db, registry, agents, settings, runner, sched, srv)
}
