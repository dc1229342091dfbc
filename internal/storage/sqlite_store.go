package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists game data in a SQLite database. Records are stored as
// JSON documents keyed by ID, matching the JSON store's shapes exactly so
// the backends are interchangeable.
type SQLiteStore struct {
	sqlDB *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  data TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  data TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);`

// OpenSQLite opens a SQLite store and bootstraps its schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveMeta stores the meta-progression record.
func (s *SQLiteStore) SaveMeta(ctx context.Context, meta *MetaProgression) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO meta (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}

// LoadMeta returns the meta-progression record.
func (s *SQLiteStore) LoadMeta(ctx context.Context) (*MetaProgression, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM meta WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	var meta MetaProgression
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	return &meta, nil
}

// SaveRun stores an active run by ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *ActiveRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO runs (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		run.ID, string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// LoadRun returns the active run with the given ID.
func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (*ActiveRun, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM runs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	var run ActiveRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &run, nil
}

// DeleteRun removes the active run with the given ID.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
