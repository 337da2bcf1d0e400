package usecase

import (
	"context"
	"errors"
	"fmt"

	"panwatch/internal/agent"
	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/logger"
	"panwatch/pkg/web"
)

// AgentsUseCase exposes agent configuration, history, and manual runs.
type AgentsUseCase struct {
	agents   domrepo.AgentStore
	runner   *agent.Runner
	reloader Reloader
	log      *logger.Logger
}

func NewAgentsUseCase(agents domrepo.AgentStore, runner *agent.Runner, reloader Reloader, log *logger.Logger) *AgentsUseCase {
	return &AgentsUseCase{
		agents:   agents,
		runner:   runner,
		reloader: reloader,
		log:      log.Named("agents"),
	}
}

func (uc *AgentsUseCase) List(ctx context.Context) ([]models.AgentConfig, error) {
	configs, err := uc.agents.ListConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return configs, nil
}

func (uc *AgentsUseCase) Update(ctx context.Context, name string, req models.AgentUpdateRequest) (*models.AgentConfig, error) {
	cfg, err := uc.agents.GetConfig(ctx, name)
	if errors.Is(err, domrepo.ErrNotFound) {
		return nil, web.NotFoundErrorf("agent %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}

	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.Schedule != nil {
		cfg.Schedule = *req.Schedule
	}
	if req.AIModel != nil {
		cfg.AIModel = *req.AIModel
	}
	if req.AIBaseURL != nil {
		cfg.AIBaseURL = *req.AIBaseURL
	}
	if req.Config != nil {
		cfg.Config = req.Config
	}

	updated, err := uc.agents.UpdateConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("update agent: %w", err)
	}
	uc.log.Info("agent updated", logger.String("agent", name))

	if uc.reloader != nil {
		if err := uc.reloader.Reload(ctx); err != nil {
			uc.log.Error("scheduler reload failed", logger.Error(err))
		}
	}
	return updated, nil
}

// Trigger runs the named agent immediately against all bound stocks.
func (uc *AgentsUseCase) Trigger(ctx context.Context, name string) (*models.AgentRun, error) {
	cfg, err := uc.agents.GetConfig(ctx, name)
	if errors.Is(err, domrepo.ErrNotFound) {
		return nil, web.NotFoundErrorf("agent %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	if !cfg.Enabled {
		return nil, web.BadRequestErrorf("agent %s is disabled", name)
	}

	run, err := uc.runner.Run(ctx, name, nil)
	if err != nil && run == nil {
		return nil, fmt.Errorf("run agent: %w", err)
	}
	// A failed run is still a result; the record carries the error.
	return run, nil
}

// TriggerForStock runs the named agent for a single symbol.
func (uc *AgentsUseCase) TriggerForStock(ctx context.Context, name, symbol string) (*models.AgentRun, error) {
	run, err := uc.runner.Run(ctx, name, []string{symbol})
	if err != nil && run == nil {
		return nil, fmt.Errorf("run agent: %w", err)
	}
	return run, nil
}

func (uc *AgentsUseCase) History(ctx context.Context, name string, req models.AgentHistoryRequest) ([]models.AgentRun, error) {
	if _, err := uc.agents.GetConfig(ctx, name); errors.Is(err, domrepo.ErrNotFound) {
		return nil, web.NotFoundErrorf("agent %s not found", name)
	} else if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}

	runs, err := uc.agents.ListRuns(ctx, name, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
