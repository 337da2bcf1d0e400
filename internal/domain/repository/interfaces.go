package repository

import (
	"context"
	"errors"
	"time"

	"panwatch/internal/domain/models"
)

// ErrNotFound is returned when a requested row does not exist. Usecases
// map it to a 404.
var ErrNotFound = errors.New("not found")

// StockStore persists the watchlist and per-stock agent bindings.
type StockStore interface {
	Create(ctx context.Context, stock *models.Stock) (*models.Stock, error)
	GetBySymbol(ctx context.Context, symbol string) (*models.Stock, error)
	List(ctx context.Context, enabledOnly bool) ([]models.Stock, error)
	Update(ctx context.Context, stock *models.Stock) (*models.Stock, error)
	Delete(ctx context.Context, symbol string) error
	ReplaceAgents(ctx context.Context, symbol string, agents []models.StockAgentBinding) error
	ListAgentBindings(ctx context.Context, agentName string) (map[string]string, error)
}

// AgentStore persists agent configurations and their run history.
type AgentStore interface {
	SeedConfigs(ctx context.Context, configs []models.AgentConfig) error
	GetConfig(ctx context.Context, name string) (*models.AgentConfig, error)
	ListConfigs(ctx context.Context) ([]models.AgentConfig, error)
	UpdateConfig(ctx context.Context, config *models.AgentConfig) (*models.AgentConfig, error)
	RecordRun(ctx context.Context, run *models.AgentRun) error
	ListRuns(ctx context.Context, agentName string, limit int) ([]models.AgentRun, error)
	PruneRuns(ctx context.Context, agentName string, keep int) error
}

// SettingStore persists the key/value settings exposed on the dashboard.
type SettingStore interface {
	SeedDefaults(ctx context.Context, defaults []models.Setting) error
	Get(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// SuggestionStore persists agent-produced suggestions. Expiry is a
// read-time property: expired rows stay queryable until pruned.
type SuggestionStore interface {
	Add(ctx context.Context, suggestion *models.AgentSuggestion) (*models.AgentSuggestion, error)
	LatestBySymbol(ctx context.Context, symbol string, now time.Time) (*models.AgentSuggestion, error)
	ListBySymbol(ctx context.Context, symbol string, limit int, now time.Time) ([]models.AgentSuggestion, error)
	PruneExpired(ctx context.Context, before time.Time) (int64, error)
}

// LogQuery filters the log center listing. Zero values mean "no filter".
type LogQuery struct {
	Level    string
	Logger   string
	Contains string
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// LogStore persists buffered application logs for the log center.
type LogStore interface {
	WriteLogs(ctx context.Context, entries []models.LogEntry) error
	QueryLogs(ctx context.Context, q LogQuery) ([]models.LogEntry, error)
	CountLogs(ctx context.Context, q LogQuery) (int64, error)
	PruneLogs(ctx context.Context, keep int) error
	ClearLogs(ctx context.Context) error
}
