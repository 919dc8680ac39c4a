package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/annotation-auth/internal/domain"
)

// ErrStoreUnavailable wraps any token store failure other than "not found".
var ErrStoreUnavailable = errors.New("token store unavailable")

const apiTokenEntropyBytes = 32

// TokenStore is the persistence the resolver and token creation flow depend on.
type TokenStore interface {
	FindByValue(ctx context.Context, value string) (*domain.APIToken, error)
	Insert(ctx context.Context, token *domain.APIToken) error
}

// IsAPIToken reports whether value carries the API token prefix.
func IsAPIToken(value string) bool {
	return strings.HasPrefix(value, domain.APITokenPrefix)
}

// GenerateAPITokenValue returns a fresh prefixed token value.
func GenerateAPITokenValue() (string, error) {
	buf := make([]byte, apiTokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api token: %w", err)
	}
	return domain.APITokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// APITokenResolver maps API token values to their owners.
type APITokenResolver struct {
	store TokenStore
}

// NewAPITokenResolver constructs a resolver over store.
func NewAPITokenResolver(store TokenStore) *APITokenResolver {
	return &APITokenResolver{store: store}
}

// Resolve returns the owner of value. ok is false when value is not an API
// token or no record matches it exactly. Store failures are returned as
// errors wrapping ErrStoreUnavailable and never reported as a missing token.
func (r *APITokenResolver) Resolve(ctx context.Context, value string) (owner domain.Identity, ok bool, err error) {
	if !IsAPIToken(value) {
		return "", false, nil
	}

	token, err := r.store.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if token == nil || token.Value != value {
		return "", false, nil
	}
	return token.Owner, true, nil
}
