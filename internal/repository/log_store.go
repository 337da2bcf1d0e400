package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/logger"
	"panwatch/pkg/util"
)

// SQLLogStore implements LogStore backed by SQLite.
type SQLLogStore struct {
	db *sql.DB
}

func NewSQLLogStore(d *DB) *SQLLogStore {
	return &SQLLogStore{db: d.db}
}

func (s *SQLLogStore) WriteLogs(ctx context.Context, entries []models.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO logs (timestamp, level, logger_name, message) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			util.FormatTime(e.Timestamp.UTC()), e.Level, e.Logger, e.Message,
		); err != nil {
			return fmt.Errorf("insert log: %w", err)
		}
	}
	return tx.Commit()
}

func logConditions(q domrepo.LogQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Level != "" {
		// Comma-separated list, e.g. "ERROR,WARNING".
		var placeholders []string
		for _, level := range strings.Split(q.Level, ",") {
			level = strings.TrimSpace(level)
			if level == "" {
				continue
			}
			placeholders = append(placeholders, "?")
			args = append(args, strings.ToUpper(level))
		}
		if len(placeholders) > 0 {
			conds = append(conds, "level IN ("+strings.Join(placeholders, ",")+")")
		}
	}
	if q.Logger != "" {
		conds = append(conds, "logger_name LIKE ?")
		args = append(args, "%"+q.Logger+"%")
	}
	if q.Contains != "" {
		conds = append(conds, "message LIKE ?")
		args = append(args, "%"+q.Contains+"%")
	}
	if !q.Since.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, util.FormatTime(q.Since.UTC()))
	}
	if !q.Until.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, util.FormatTime(q.Until.UTC()))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *SQLLogStore) QueryLogs(ctx context.Context, q domrepo.LogQuery) ([]models.LogEntry, error) {
	where, args := logConditions(q)
	query := `SELECT id, timestamp, level, logger_name, message FROM logs` + where +
		` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	out := make([]models.LogEntry, 0, q.Limit)
	for rows.Next() {
		var (
			e  models.LogEntry
			ts string
		)
		if err := rows.Scan(&e.ID, &ts, &e.Level, &e.Logger, &e.Message); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		e.Timestamp = util.ParseTimeDefault(ts, time.Time{})
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQLLogStore) CountLogs(ctx context.Context, q domrepo.LogQuery) (int64, error) {
	where, args := logConditions(q)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count logs: %w", err)
	}
	return count, nil
}

// PruneLogs keeps the newest `keep` rows and deletes the rest.
func (s *SQLLogStore) PruneLogs(ctx context.Context, keep int) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM logs WHERE id NOT IN (
			SELECT id FROM logs ORDER BY id DESC LIMIT ?
		)`, keep,
	); err != nil {
		return fmt.Errorf("prune logs: %w", err)
	}
	return nil
}

func (s *SQLLogStore) ClearLogs(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM logs`); err != nil {
		return fmt.Errorf("clear logs: %w", err)
	}
	return nil
}

// LogSinkWriter adapts SQLLogStore to the buffered sink's EntryWriter so
// the logger package stays free of repository imports.
type LogSinkWriter struct {
	store *SQLLogStore
}

func NewLogSinkWriter(store *SQLLogStore) *LogSinkWriter {
	return &LogSinkWriter{store: store}
}

func (w *LogSinkWriter) WriteLogs(ctx context.Context, entries []logger.Entry) error {
	rows := make([]models.LogEntry, len(entries))
	for i, e := range entries {
		rows[i] = models.LogEntry{
			Timestamp: e.Timestamp,
			Level:     e.Level,
			Logger:    e.Logger,
			Message:   e.Message,
		}
	}
	return w.store.WriteLogs(ctx, rows)
}

func (w *LogSinkWriter) PruneLogs(ctx context.Context, keep int) error {
	return w.store.PruneLogs(ctx, keep)
}
