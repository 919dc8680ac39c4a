package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

const (
	postgresMigrationsDir = "migrations/postgres"
	sqliteMigrationsDir   = "migrations/sqlite"
)

// RunMigrations executes the embedded Postgres migrations in file name order.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	migrations, err := loadMigrations(postgresMigrationsDir)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		logger.Info("applying migration", zap.String("file", m.name))
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(migrations)))
	return nil
}

type migration struct {
	name string
	sql  string
}

func loadMigrations(dir string) ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)

	out := make([]migration, 0, len(filenames))
	for _, name := range filenames {
		content, err := fs.ReadFile(migrationsFS, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, migration{name: name, sql: string(content)})
	}
	return out, nil
}
