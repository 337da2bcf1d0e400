package models

import "time"

// AgentConfig describes a registered AI agent and its scheduling.
type AgentConfig struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	Enabled     bool           `json:"enabled"`
	Schedule    string         `json:"schedule"`
	AIModel     string         `json:"ai_model"`
	AIBaseURL   string         `json:"ai_base_url"`
	Config      map[string]any `json:"config"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Agent run statuses.
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// AgentRun is one execution record of an agent.
type AgentRun struct {
	ID         string    `json:"id"`
	AgentName  string    `json:"agent_name"`
	Status     string    `json:"status"`
	Result     string    `json:"result"`
	Error      string    `json:"error"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Setting is one key/value configuration entry editable from the dashboard.
type Setting struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// LogEntry is one row in the log center.
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Logger    string    `json:"logger_name"`
	Message   string    `json:"message"`
}
