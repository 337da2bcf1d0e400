package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"panwatch/internal/agent"
	"panwatch/internal/domain/repository"
	"panwatch/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler drives agent execution from the stored configs. Each enabled
// agent gets one cron job per distinct effective schedule: stocks with a
// per-binding override run on their own spec, the rest on the agent
// default.
type Scheduler struct {
	runner *agent.Runner
	agents repository.AgentStore
	stocks repository.StockStore
	log    *logger.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func New(runner *agent.Runner, agents repository.AgentStore, stocks repository.StockStore, log *logger.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		agents: agents,
		stocks: stocks,
		log:    log.Named("scheduler"),
	}
}

// Reload rebuilds all cron jobs from the stored configuration and
// (re)starts the scheduler. Call it at startup and after any change to
// agent configs or stock bindings.
func (s *Scheduler) Reload(ctx context.Context) error {
	configs, err := s.agents.ListConfigs(ctx)
	if err != nil {
		return fmt.Errorf("list agent configs: %w", err)
	}

	c := cron.New(cron.WithSeconds())
	jobs := 0
	for _, cfg := range configs {
		if !cfg.Enabled || cfg.Schedule == "" {
			continue
		}

		bindings, err := s.stocks.ListAgentBindings(ctx, cfg.Name)
		if err != nil {
			return fmt.Errorf("list bindings for %s: %w", cfg.Name, err)
		}

		for spec, symbols := range groupBySchedule(cfg.Schedule, bindings) {
			normalized, err := normalizeSpec(spec)
			if err != nil {
				s.log.Error("invalid schedule, skipping",
					logger.String("agent", cfg.Name),
					logger.String("schedule", spec),
					logger.Error(err),
				)
				continue
			}
			name, syms := cfg.Name, symbols
			if _, err := c.AddFunc(normalized, func() { s.execute(name, syms) }); err != nil {
				s.log.Error("register job failed",
					logger.String("agent", name),
					logger.String("schedule", normalized),
					logger.Error(err),
				)
				continue
			}
			jobs++
			s.log.Info("job registered",
				logger.String("agent", name),
				logger.String("schedule", normalized),
				logger.Int("symbols", len(syms)),
			)
		}
	}

	s.mu.Lock()
	old := s.cron
	s.cron = c
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	c.Start()
	s.log.Info("scheduler reloaded", logger.Int("jobs", jobs))
	return nil
}

// Stop halts the scheduler, letting running jobs finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

func (s *Scheduler) execute(agentName string, symbols []string) {
	ctx := context.Background()
	if _, err := s.runner.Run(ctx, agentName, symbols); err != nil {
		s.log.Error("scheduled run failed",
			logger.String("agent", agentName),
			logger.Error(err),
		)
	}
}

// groupBySchedule buckets bound symbols by their effective cron spec.
// An empty override means the agent default.
func groupBySchedule(defaultSpec string, bindings map[string]string) map[string][]string {
	out := make(map[string][]string)
	for symbol, override := range bindings {
		spec := override
		if spec == "" {
			spec = defaultSpec
		}
		out[spec] = append(out[spec], symbol)
	}
	for spec := range out {
		sort.Strings(out[spec])
	}
	return out
}

// normalizeSpec accepts three schedule notations:
//
//	interval:30s / interval:3m / interval:1h
//	5-field cron (minute granularity)
//	6-field cron (second granularity)
func normalizeSpec(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if rest, ok := strings.CutPrefix(spec, "interval:"); ok {
		if rest == "" {
			return "", fmt.Errorf("empty interval in %q", spec)
		}
		return "@every " + rest, nil
	}
	if strings.HasPrefix(spec, "@") {
		return spec, nil
	}
	switch len(strings.Fields(spec)) {
	case 5:
		return "0 " + spec, nil
	case 6:
		return spec, nil
	}
	return "", fmt.Errorf("unrecognized schedule %q", spec)
}
