package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"panwatch/internal/agent"
	domrepo "panwatch/internal/domain/repository"
	internalrepo "panwatch/internal/repository"
	"panwatch/internal/scheduler"
	"panwatch/internal/usecase"
	"panwatch/pkg/config"
	"panwatch/pkg/logger"
	"panwatch/pkg/web"
)

// App encapsulates the application lifecycle: seeding, the cron
// scheduler, and the HTTP server.
type App struct {
	cfg      *config.Config
	log      *logger.Logger
	sink     *logger.BufferedSink
	db       *internalrepo.DB
	registry *agent.Registry
	agents   domrepo.AgentStore
	settings *usecase.SettingsUseCase
	runner   *agent.Runner
	sched    *scheduler.Scheduler
	server   *web.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *logger.Logger,
	sink *logger.BufferedSink,
	db *internalrepo.DB,
	registry *agent.Registry,
	agents domrepo.AgentStore,
	settings *usecase.SettingsUseCase,
	runner *agent.Runner,
	sched *scheduler.Scheduler,
	server *web.Server,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		sink:     sink,
		db:       db,
		registry: registry,
		agents:   agents,
		settings: settings,
		runner:   runner,
		sched:    sched,
		server:   server,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.seed(ctx); err != nil {
		return err
	}

	if err := a.sched.Reload(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.log.Info("scheduler started", logger.Strings("agents", a.registry.Names()))

	if err := a.server.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	if a.cfg.Agents.RunOnStart {
		go a.runAllAgents(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// seed inserts default agent configs and settings, preserving user edits.
func (a *App) seed(ctx context.Context) error {
	if err := a.agents.SeedConfigs(ctx, a.registry.DefaultConfigs()); err != nil {
		return fmt.Errorf("seed agent configs: %w", err)
	}
	if err := a.settings.Seed(ctx); err != nil {
		return err
	}
	return nil
}

// runAllAgents triggers every enabled agent once at startup.
func (a *App) runAllAgents(ctx context.Context) {
	configs, err := a.agents.ListConfigs(ctx)
	if err != nil {
		a.log.Error("list agent configs failed", logger.Error(err))
		return
	}
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		if _, err := a.runner.Run(ctx, cfg.Name, nil); err != nil {
			a.log.Warn("startup agent run failed",
				logger.String("agent", cfg.Name),
				logger.Error(err),
			)
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}

	a.sched.Stop()

	// Flush buffered log entries before the database goes away.
	a.sink.Close()

	if err := a.db.Close(); err != nil {
		a.log.Warn("database close error", logger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
