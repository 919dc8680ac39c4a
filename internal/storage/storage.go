// Package storage opens the API token store selected by configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/annotation-auth/internal/config"
	"github.com/spec-kit/annotation-auth/internal/persistence"
	"github.com/spec-kit/annotation-auth/internal/repository"
)

// Handle bundles an open token store with its lifecycle hooks.
type Handle struct {
	Tokens repository.TokenRepository
	pinger interface{ Ping(context.Context) error }
	close  func()
}

// Open connects to the configured backend and applies migrations.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Handle, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.Store.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &Handle{
			Tokens: repository.NewSQLiteTokenRepository(db.DB),
			pinger: db,
			close:  db.Close,
		}, nil
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &Handle{
			Tokens: repository.NewTokenRepository(pg.PoolHandle()),
			pinger: pg,
			close:  pg.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// Ping checks the underlying database.
func (h *Handle) Ping(ctx context.Context) error {
	return h.pinger.Ping(ctx)
}

// Close releases the underlying connections.
func (h *Handle) Close() {
	if h != nil && h.close != nil {
		h.close()
	}
}
