package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/util"
)

// SQLAgentStore implements AgentStore backed by SQLite.
type SQLAgentStore struct {
	db *sql.DB
}

func NewSQLAgentStore(d *DB) *SQLAgentStore {
	return &SQLAgentStore{db: d.db}
}

// SeedConfigs inserts configs that do not exist yet. Existing rows keep
// their user-edited values.
func (s *SQLAgentStore) SeedConfigs(ctx context.Context, configs []models.AgentConfig) error {
	now := util.FormatTime(time.Now().UTC())
	for _, c := range configs {
		raw, err := json.Marshal(c.Config)
		if err != nil {
			return fmt.Errorf("marshal config %s: %w", c.Name, err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO agent_configs (name, display_name, description, enabled, schedule, ai_model, ai_base_url, config, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			c.Name, c.DisplayName, c.Description, boolToInt(c.Enabled),
			c.Schedule, c.AIModel, c.AIBaseURL, string(raw), now, now,
		); err != nil {
			return fmt.Errorf("seed agent %s: %w", c.Name, err)
		}
	}
	return nil
}

func (s *SQLAgentStore) GetConfig(ctx context.Context, name string) (*models.AgentConfig, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, display_name, description, enabled, schedule, ai_model, ai_base_url, config, created_at, updated_at
		 FROM agent_configs WHERE name = ?`, name)
	cfg, err := scanAgentConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan agent config: %w", err)
	}
	return cfg, nil
}

func (s *SQLAgentStore) ListConfigs(ctx context.Context) ([]models.AgentConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, display_name, description, enabled, schedule, ai_model, ai_base_url, config, created_at, updated_at
		 FROM agent_configs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list agent configs: %w", err)
	}
	defer rows.Close()

	out := make([]models.AgentConfig, 0, 8)
	for rows.Next() {
		cfg, err := scanAgentConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent config: %w", err)
		}
		out = append(out, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQLAgentStore) UpdateConfig(ctx context.Context, config *models.AgentConfig) (*models.AgentConfig, error) {
	raw, err := json.Marshal(config.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE agent_configs SET enabled = ?, schedule = ?, ai_model = ?, ai_base_url = ?, config = ?, updated_at = ?
		 WHERE name = ?`,
		boolToInt(config.Enabled), config.Schedule, config.AIModel, config.AIBaseURL,
		string(raw), util.FormatTime(time.Now().UTC()), config.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("update agent config: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domrepo.ErrNotFound
	}
	return s.GetConfig(ctx, config.Name)
}

func (s *SQLAgentStore) RecordRun(ctx context.Context, run *models.AgentRun) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_runs (id, agent_name, status, result, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.AgentName, run.Status, run.Result, run.Error, run.DurationMS,
		util.FormatTime(run.CreatedAt.UTC()),
	); err != nil {
		return fmt.Errorf("insert agent run: %w", err)
	}
	return nil
}

func (s *SQLAgentStore) ListRuns(ctx context.Context, agentName string, limit int) ([]models.AgentRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_name, status, result, error, duration_ms, created_at
		 FROM agent_runs WHERE agent_name = ?
		 ORDER BY created_at DESC LIMIT ?`, agentName, limit)
	if err != nil {
		return nil, fmt.Errorf("list agent runs: %w", err)
	}
	defer rows.Close()

	out := make([]models.AgentRun, 0, limit)
	for rows.Next() {
		var (
			run       models.AgentRun
			createdAt string
		)
		if err := rows.Scan(&run.ID, &run.AgentName, &run.Status, &run.Result,
			&run.Error, &run.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan agent run: %w", err)
		}
		run.CreatedAt = util.ParseTimeDefault(createdAt, time.Time{})
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// PruneRuns keeps the newest `keep` runs per agent and deletes the rest.
func (s *SQLAgentStore) PruneRuns(ctx context.Context, agentName string, keep int) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM agent_runs WHERE agent_name = ? AND id NOT IN (
			SELECT id FROM agent_runs WHERE agent_name = ?
			ORDER BY created_at DESC LIMIT ?
		)`, agentName, agentName, keep,
	); err != nil {
		return fmt.Errorf("prune agent runs: %w", err)
	}
	return nil
}

func scanAgentConfig(row rowScanner) (*models.AgentConfig, error) {
	var (
		cfg                models.AgentConfig
		enabled            int
		raw                string
		createdAt, updated string
	)
	if err := row.Scan(&cfg.ID, &cfg.Name, &cfg.DisplayName, &cfg.Description,
		&enabled, &cfg.Schedule, &cfg.AIModel, &cfg.AIBaseURL, &raw, &createdAt, &updated); err != nil {
		return nil, err
	}
	cfg.Enabled = enabled != 0
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config for %s: %w", cfg.Name, err)
		}
	}
	cfg.CreatedAt = util.ParseTimeDefault(createdAt, time.Time{})
	cfg.UpdatedAt = util.ParseTimeDefault(updated, time.Time{})
	return &cfg, nil
}
