package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/util"
)

// SQLSuggestionStore implements SuggestionStore backed by SQLite.
type SQLSuggestionStore struct {
	db *sql.DB
}

func NewSQLSuggestionStore(d *DB) *SQLSuggestionStore {
	return &SQLSuggestionStore{db: d.db}
}

func (s *SQLSuggestionStore) Add(ctx context.Context, suggestion *models.AgentSuggestion) (*models.AgentSuggestion, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestions (symbol, agent_name, label, reason, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		suggestion.Symbol, suggestion.AgentName, suggestion.Label, suggestion.Reason,
		util.FormatTime(suggestion.CreatedAt.UTC()), util.FormatTime(suggestion.ExpiresAt.UTC()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert suggestion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	out := *suggestion
	out.ID = id
	return &out, nil
}

// LatestBySymbol returns the newest suggestion for a symbol regardless of
// expiry; Expired is computed against now.
func (s *SQLSuggestionStore) LatestBySymbol(ctx context.Context, symbol string, now time.Time) (*models.AgentSuggestion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, agent_name, label, reason, created_at, expires_at
		 FROM suggestions WHERE symbol = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, symbol)

	sg, err := scanSuggestion(row, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan suggestion: %w", err)
	}
	return sg, nil
}

func (s *SQLSuggestionStore) ListBySymbol(ctx context.Context, symbol string, limit int, now time.Time) ([]models.AgentSuggestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, agent_name, label, reason, created_at, expires_at
		 FROM suggestions WHERE symbol = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	out := make([]models.AgentSuggestion, 0, limit)
	for rows.Next() {
		sg, err := scanSuggestion(rows, now)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, *sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// PruneExpired deletes suggestions whose expiry is before the cutoff.
func (s *SQLSuggestionStore) PruneExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM suggestions WHERE expires_at < ?`, util.FormatTime(before.UTC()))
	if err != nil {
		return 0, fmt.Errorf("prune suggestions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func scanSuggestion(row rowScanner, now time.Time) (*models.AgentSuggestion, error) {
	var (
		sg                 models.AgentSuggestion
		createdAt, expires string
	)
	if err := row.Scan(&sg.ID, &sg.Symbol, &sg.AgentName, &sg.Label, &sg.Reason,
		&createdAt, &expires); err != nil {
		return nil, err
	}
	sg.CreatedAt = util.ParseTimeDefault(createdAt, time.Time{})
	sg.ExpiresAt = util.ParseTimeDefault(expires, time.Time{})
	sg.Expired = now.UTC().After(sg.ExpiresAt)
	return &sg, nil
}
