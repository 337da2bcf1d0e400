package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
)

// SQLSettingStore implements SettingStore backed by SQLite.
type SQLSettingStore struct {
	db *sql.DB
}

func NewSQLSettingStore(d *DB) *SQLSettingStore {
	return &SQLSettingStore{db: d.db}
}

// SeedDefaults inserts settings that do not exist yet without touching
// user-edited values.
func (s *SQLSettingStore) SeedDefaults(ctx context.Context, defaults []models.Setting) error {
	for _, st := range defaults {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO settings (key, value, description) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO NOTHING`,
			st.Key, st.Value, st.Description,
		); err != nil {
			return fmt.Errorf("seed setting %s: %w", st.Key, err)
		}
	}
	return nil
}

func (s *SQLSettingStore) Get(ctx context.Context, key string) (*models.Setting, error) {
	var st models.Setting
	err := s.db.QueryRowContext(ctx,
		`SELECT key, value, description FROM settings WHERE key = ?`, key,
	).Scan(&st.Key, &st.Value, &st.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	return &st, nil
}

func (s *SQLSettingStore) List(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, description FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Setting, 0, 16)
	for rows.Next() {
		var st models.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.Description); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQLSettingStore) Upsert(ctx context.Context, setting *models.Setting) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, description) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			description = CASE WHEN excluded.description = '' THEN settings.description ELSE excluded.description END`,
		setting.Key, setting.Value, setting.Description,
	); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}
