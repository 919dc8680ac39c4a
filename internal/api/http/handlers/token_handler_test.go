package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/annotation-auth/internal/auth"
	"github.com/spec-kit/annotation-auth/internal/domain"
	"github.com/spec-kit/annotation-auth/internal/repository"
	"github.com/spec-kit/annotation-auth/internal/service"
	apperrors "github.com/spec-kit/annotation-auth/pkg/util"
)

const ownerValue = domain.APITokenPrefix + "owner"

// insertFailingStore resolves a single token and fails every insert with err.
type insertFailingStore struct {
	err error
}

func (s insertFailingStore) FindByValue(_ context.Context, value string) (*domain.APIToken, error) {
	if value != ownerValue {
		return nil, domain.ErrTokenNotFound
	}
	return &domain.APIToken{ID: "1", Owner: "acct:foo@example.com", Value: value}, nil
}

func (s insertFailingStore) Insert(context.Context, *domain.APIToken) error {
	return s.err
}

func createTokenStatus(t *testing.T, insertErr error) (int, string) {
	t.Helper()
	store := insertFailingStore{err: insertErr}
	codec, err := auth.NewSessionCodec([]byte("secret"))
	require.NoError(t, err)

	tokens := service.NewTokenService(time.Hour, service.TokenDependencies{Sessions: codec, Store: store})
	handler := NewTokenHandler(tokens, "")
	middleware := auth.NewAuthMiddleware(auth.NewDispatcher(codec, auth.NewAPITokenResolver(store)), "", nil, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	app.Post("/developer/token", middleware.Handle, auth.RequireAuthenticated(), handler.CreateAPIToken)

	req := httptest.NewRequest(http.MethodPost, "/developer/token", nil)
	req.Header.Set("Authorization", "Bearer "+ownerValue)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestCreateAPITokenErrors(t *testing.T) {
	tests := []struct {
		name       string
		insertErr  error
		wantStatus int
		wantCode   string
	}{
		{"value collisions exhausted", repository.ErrDuplicateTokenValue, http.StatusConflict, "CONFLICT"},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := createTokenStatus(t, tt.insertErr)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
