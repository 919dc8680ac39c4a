package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/annotation-auth/internal/domain"
)

type sqliteTokenRepository struct {
	db *sql.DB
}

// NewSQLiteTokenRepository returns a TokenRepository over a SQLite database
// prepared by persistence.NewSQLite.
func NewSQLiteTokenRepository(db *sql.DB) TokenRepository {
	return &sqliteTokenRepository{db: db}
}

func (r *sqliteTokenRepository) FindByValue(ctx context.Context, value string) (*domain.APIToken, error) {
	const query = `
        SELECT id, owner, value, created_at
        FROM api_tokens WHERE value = ?`

	var token domain.APIToken
	var owner string
	var createdAt int64
	if err := r.db.QueryRowContext(ctx, query, value).Scan(
		&token.ID,
		&owner,
		&token.Value,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	token.Owner = domain.Identity(owner)
	token.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &token, nil
}

func (r *sqliteTokenRepository) Insert(ctx context.Context, token *domain.APIToken) error {
	const query = `
        INSERT INTO api_tokens (id, owner, value, created_at)
        VALUES (?, ?, ?, ?)`

	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	createdAt := time.Now().UTC().Truncate(time.Second)

	if _, err := r.db.ExecContext(ctx, query, token.ID, token.Owner.String(), token.Value, createdAt.Unix()); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateTokenValue
		}
		return err
	}
	token.CreatedAt = createdAt
	return nil
}
