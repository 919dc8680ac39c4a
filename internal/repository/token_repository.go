package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/annotation-auth/internal/domain"
)

// ErrDuplicateTokenValue is returned when an insert collides with an existing value.
var ErrDuplicateTokenValue = errors.New("api token value already exists")

const pgUniqueViolation = "23505"

// DBTX is the subset of pgxpool.Pool used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TokenRepository defines persistence access for API tokens.
type TokenRepository interface {
	FindByValue(ctx context.Context, value string) (*domain.APIToken, error)
	Insert(ctx context.Context, token *domain.APIToken) error
}

type tokenRepository struct {
	db DBTX
}

// NewTokenRepository returns a Postgres-backed implementation.
func NewTokenRepository(db DBTX) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) FindByValue(ctx context.Context, value string) (*domain.APIToken, error) {
	const query = `
        SELECT id, owner, value, created_at
        FROM api_tokens WHERE value=$1`

	var token domain.APIToken
	var owner string
	if err := r.db.QueryRow(ctx, query, value).Scan(
		&token.ID,
		&owner,
		&token.Value,
		&token.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	token.Owner = domain.Identity(owner)
	return &token, nil
}

func (r *tokenRepository) Insert(ctx context.Context, token *domain.APIToken) error {
	const query = `
        INSERT INTO api_tokens (id, owner, value)
        VALUES ($1, $2, $3)
        RETURNING created_at`

	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, query,
		token.ID,
		token.Owner.String(),
		token.Value,
	).Scan(&token.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateTokenValue
	}
	return err
}
