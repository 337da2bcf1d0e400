package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"panwatch/internal/domain/models"
)

// Context carries everything one agent execution needs. It is rebuilt
// for every run so config edits take effect without a restart.
type Context struct {
	Config  models.AgentConfig
	Symbols []string // watchlist symbols bound to this run
}

// Agent is one schedulable analysis job.
type Agent interface {
	Name() string
	DisplayName() string
	Description() string
	// Defaults seeds the stored config on first start.
	Defaults() models.AgentConfig
	Run(ctx context.Context, ac Context) (result string, err error)
}

// Registry holds the implemented agents by name.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

func (r *Registry) Register(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Name()] = a
}

func (r *Registry) Get(name string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", name)
	}
	return a, nil
}

// Names returns the registered agent names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfigs collects each registered agent's seed config.
func (r *Registry) DefaultConfigs() []models.AgentConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.AgentConfig, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a.Defaults())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
