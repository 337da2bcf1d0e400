package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the shared SQLite handle the stores are built on.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs
// migrations. WAL mode keeps dashboard reads cheap while agents write.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// modernc's driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent agent runs.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %s: %w", pragma, err)
		}
	}

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// Close closes the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stocks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			market      TEXT NOT NULL,
			cost_price  REAL,
			quantity    INTEGER,
			enabled     INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS stock_agents (
			stock_id   INTEGER NOT NULL REFERENCES stocks(id) ON DELETE CASCADE,
			agent_name TEXT NOT NULL,
			schedule   TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (stock_id, agent_name)
		)`,

		`CREATE TABLE IF NOT EXISTS agent_configs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name         TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			enabled      INTEGER NOT NULL DEFAULT 1,
			schedule     TEXT NOT NULL DEFAULT '',
			ai_model     TEXT NOT NULL DEFAULT '',
			ai_base_url  TEXT NOT NULL DEFAULT '',
			config       TEXT NOT NULL DEFAULT '{}',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS agent_runs (
			id          TEXT PRIMARY KEY,
			agent_name  TEXT NOT NULL,
			status      TEXT NOT NULL,
			result      TEXT NOT NULL DEFAULT '',
			error       TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agent_runs_name ON agent_runs(agent_name, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key         TEXT PRIMARY KEY,
			value       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS suggestions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT NOT NULL,
			agent_name TEXT NOT NULL,
			label      TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_suggestions_symbol ON suggestions(symbol, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS logs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   TEXT NOT NULL,
			level       TEXT NOT NULL,
			logger_name TEXT NOT NULL DEFAULT '',
			message     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_ts ON logs(timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_level ON logs(level)`,
	}

	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("exec %.40q: %w", s, err)
		}
	}
	return nil
}
