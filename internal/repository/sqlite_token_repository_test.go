package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/annotation-auth/internal/domain"
	"github.com/spec-kit/annotation-auth/internal/persistence"
)

func newSQLiteRepo(t *testing.T) TokenRepository {
	t.Helper()
	db, err := persistence.NewSQLite(context.Background(), ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return NewSQLiteTokenRepository(db.DB)
}

func TestSQLiteTokenRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	token := &domain.APIToken{Owner: "acct:foo@example.com", Value: "6879-abc"}
	require.NoError(t, repo.Insert(ctx, token))
	assert.NotEmpty(t, token.ID)
	assert.False(t, token.CreatedAt.IsZero())

	found, err := repo.FindByValue(ctx, "6879-abc")
	require.NoError(t, err)
	assert.Equal(t, token.ID, found.ID)
	assert.Equal(t, domain.Identity("acct:foo@example.com"), found.Owner)
	assert.True(t, token.CreatedAt.Equal(found.CreatedAt))
}

func TestSQLiteTokenRepositoryExactMatchOnly(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	require.NoError(t, repo.Insert(ctx, &domain.APIToken{Owner: "acct:foo@example.com", Value: "6879-AbC"}))

	for _, value := range []string{"6879-abc", "6879-ABC", "6879-Ab", "6879-AbC ", "6879-%"} {
		_, err := repo.FindByValue(ctx, value)
		assert.ErrorIs(t, err, domain.ErrTokenNotFound, "value %q", value)
	}
}

func TestSQLiteTokenRepositoryRejectsDuplicateValue(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	require.NoError(t, repo.Insert(ctx, &domain.APIToken{Owner: "acct:foo@example.com", Value: "6879-abc"}))

	err := repo.Insert(ctx, &domain.APIToken{Owner: "acct:bar@example.com", Value: "6879-abc"})
	require.ErrorIs(t, err, ErrDuplicateTokenValue)

	found, err := repo.FindByValue(ctx, "6879-abc")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity("acct:foo@example.com"), found.Owner)
}

func TestSQLiteTokenRepositoryConcurrentInsertSameValue(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	owners := []domain.Identity{"acct:a@example.com", "acct:b@example.com", "acct:c@example.com", "acct:d@example.com"}
	var wg sync.WaitGroup
	errs := make([]error, len(owners))
	for i, owner := range owners {
		wg.Add(1)
		go func(i int, owner domain.Identity) {
			defer wg.Done()
			errs[i] = repo.Insert(ctx, &domain.APIToken{Owner: owner, Value: "6879-race"})
		}(i, owner)
	}
	wg.Wait()

	succeeded := 0
	var winner domain.Identity
	for i, err := range errs {
		if err == nil {
			succeeded++
			winner = owners[i]
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateTokenValue)
	}
	require.Equal(t, 1, succeeded)

	found, err := repo.FindByValue(ctx, "6879-race")
	require.NoError(t, err)
	assert.Equal(t, winner, found.Owner)
}

func TestSQLiteTokenRepositoryCanceledContext(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByValue(ctx, "6879-abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTokenNotFound)
}
