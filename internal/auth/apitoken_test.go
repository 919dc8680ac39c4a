package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/annotation-auth/internal/domain"
)

func TestGenerateAPITokenValue(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		value, err := GenerateAPITokenValue()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(value, domain.APITokenPrefix))
		assert.Len(t, value, len(domain.APITokenPrefix)+43)
		_, dup := seen[value]
		assert.False(t, dup)
		seen[value] = struct{}{}
	}
}

func TestResolveWithoutPrefixSkipsStore(t *testing.T) {
	store := &failingStore{err: errors.New("store must not be queried")}
	resolver := NewAPITokenResolver(store)

	for _, value := range []string{"not-a-token-at-all", "abc123", "", "6879", " 6879-abc"} {
		owner, ok, err := resolver.Resolve(context.Background(), value)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, owner.IsZero())
	}
	assert.Zero(t, store.calls)
}

func TestResolveUnprefixedValueEvenIfStored(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.Insert(context.Background(), &domain.APIToken{Owner: "acct:foo@example.com", Value: "abc123"}))

	_, ok, err := NewAPITokenResolver(store).Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.lookups)
}

func TestResolveUnknownToken(t *testing.T) {
	resolver := NewAPITokenResolver(newMemoryStore())

	owner, ok, err := resolver.Resolve(context.Background(), domain.APITokenPrefix+"123abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, owner.IsZero())
}

func TestResolveKnownToken(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	value, err := GenerateAPITokenValue()
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, &domain.APIToken{Owner: "acct:foo@example.com", Value: value}))

	resolver := NewAPITokenResolver(store)

	owner, ok, err := resolver.Resolve(ctx, value)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Identity("acct:foo@example.com"), owner)

	for _, other := range []string{
		domain.APITokenPrefix + "made-up-value",
		value[:len(value)-1],
		value + "x",
		strings.ToUpper(value),
	} {
		_, ok, err := resolver.Resolve(ctx, other)
		require.NoError(t, err)
		assert.False(t, ok, "value %q", other)
	}
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	cause := errors.New("connection refused")
	resolver := NewAPITokenResolver(&failingStore{err: cause})

	_, ok, err := resolver.Resolve(context.Background(), domain.APITokenPrefix+"abc")
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestResolvePropagatesCancellation(t *testing.T) {
	resolver := NewAPITokenResolver(&failingStore{err: context.DeadlineExceeded})

	_, _, err := resolver.Resolve(context.Background(), domain.APITokenPrefix+"abc")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
