package agent

import (
	"context"
	"fmt"
	"time"

	"panwatch/internal/domain/models"
	"panwatch/internal/domain/repository"
	"panwatch/pkg/logger"
	"panwatch/pkg/metrics"

	"github.com/google/uuid"
)

// Runner executes agents against their stored configuration, records the
// run history, and keeps it pruned.
type Runner struct {
	registry *Registry
	agents   repository.AgentStore
	stocks   repository.StockStore
	recorder *metrics.Recorder
	log      *logger.Logger
	keepRuns int
}

func NewRunner(registry *Registry, agents repository.AgentStore, stocks repository.StockStore, recorder *metrics.Recorder, log *logger.Logger, keepRuns int) *Runner {
	if keepRuns <= 0 {
		keepRuns = 50
	}
	return &Runner{
		registry: registry,
		agents:   agents,
		stocks:   stocks,
		recorder: recorder,
		log:      log.Named("agent"),
		keepRuns: keepRuns,
	}
}

// Run executes the named agent for the given symbols. A nil symbols
// slice means "all enabled stocks bound to this agent". The run record
// is written regardless of outcome.
func (r *Runner) Run(ctx context.Context, name string, symbols []string) (*models.AgentRun, error) {
	a, err := r.registry.Get(name)
	if err != nil {
		return nil, err
	}

	cfg, err := r.agents.GetConfig(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load agent config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("agent %q is disabled", name)
	}

	if symbols == nil {
		bindings, err := r.stocks.ListAgentBindings(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load bindings: %w", err)
		}
		symbols = make([]string, 0, len(bindings))
		for symbol := range bindings {
			symbols = append(symbols, symbol)
		}
	}

	r.log.Info("agent run started",
		logger.String("agent", name),
		logger.Int("symbols", len(symbols)),
	)

	start := time.Now()
	result, runErr := a.Run(ctx, Context{Config: *cfg, Symbols: symbols})
	elapsed := time.Since(start)

	run := &models.AgentRun{
		ID:         uuid.NewString(),
		AgentName:  name,
		Status:     models.RunStatusSuccess,
		Result:     result,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}
	r.recorder.AgentRun(name, run.Status, elapsed)

	if err := r.agents.RecordRun(ctx, run); err != nil {
		r.log.Error("record agent run failed", logger.String("agent", name), logger.Error(err))
	}
	if err := r.agents.PruneRuns(ctx, name, r.keepRuns); err != nil {
		r.log.Warn("prune agent runs failed", logger.String("agent", name), logger.Error(err))
	}

	if runErr != nil {
		r.log.Error("agent run failed",
			logger.String("agent", name),
			logger.Duration("elapsed", elapsed),
			logger.Error(runErr),
		)
		return run, runErr
	}
	r.log.Info("agent run finished",
		logger.String("agent", name),
		logger.Duration("elapsed", elapsed),
	)
	return run, nil
}
