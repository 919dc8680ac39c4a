package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite wraps a database/sql handle backed by modernc.org/sqlite.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite opens the database at path and applies the embedded schema.
// ":memory:" opens a private in-memory database.
func NewSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	migrations, err := loadMigrations(sqliteMigrationsDir)
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}

	logger.Info("sqlite store initialized", zap.String("path", path))
	return &SQLite{DB: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("sqlite not configured")
	}
	return s.DB.PingContext(ctx)
}
