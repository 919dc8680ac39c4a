package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/annotation-auth/internal/domain"
	"github.com/spec-kit/annotation-auth/internal/observability"
	apperrors "github.com/spec-kit/annotation-auth/pkg/util"
)

type whoami struct {
	Kind     string `json:"kind"`
	Identity string `json:"identity"`
}

func newTestApp(t *testing.T, store TokenStore, audience string) (*fiber.App, *SessionCodec, *observability.Metrics) {
	t.Helper()
	dispatcher, codec := newTestDispatcher(t, store)
	metrics := observability.NewMetrics()
	mw := NewAuthMiddleware(dispatcher, audience, metrics, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code}})
		},
	})
	app.Use(mw.Handle)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		cred := CredentialFromContext(c)
		return c.JSON(whoami{Kind: cred.Kind.String(), Identity: cred.Identity.String()})
	})
	app.Get("/private", RequireAuthenticated(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, codec, metrics
}

func doWhoami(t *testing.T, app *fiber.App, header, value string) (int, whoami) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "http://example.org/whoami", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body whoami
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestMiddlewareBearerSessionToken(t *testing.T) {
	app, codec, metrics := newTestApp(t, newMemoryStore(), "example.org")
	token, _, err := codec.Issue("acct:testuser@hypothes.is", time.Hour, "example.org")
	require.NoError(t, err)

	status, body := doWhoami(t, app, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "authenticated", body.Kind)
	assert.Equal(t, "acct:testuser@hypothes.is", body.Identity)
	assert.Equal(t, int64(1), metrics.Snapshot()["credentials|authenticated"])
}

func TestMiddlewareLegacyHeader(t *testing.T) {
	app, codec, _ := newTestApp(t, newMemoryStore(), "example.org")
	token, _, err := codec.Issue("acct:testuser@hypothes.is", time.Hour, "example.org")
	require.NoError(t, err)

	_, body := doWhoami(t, app, LegacyTokenHeader, token)
	assert.Equal(t, "authenticated", body.Kind)
}

func TestMiddlewareDefaultsAudienceToBaseURL(t *testing.T) {
	app, codec, _ := newTestApp(t, newMemoryStore(), "")

	good, _, err := codec.Issue("acct:testuser@hypothes.is", time.Hour, "http://example.org")
	require.NoError(t, err)
	_, body := doWhoami(t, app, "Authorization", "Bearer "+good)
	assert.Equal(t, "authenticated", body.Kind)

	other, _, err := codec.Issue("acct:testuser@hypothes.is", time.Hour, "http://other.example")
	require.NoError(t, err)
	_, body = doWhoami(t, app, "Authorization", "Bearer "+other)
	assert.Equal(t, "none", body.Kind)
}

func TestMiddlewareAPIToken(t *testing.T) {
	store := newMemoryStore()
	value, err := GenerateAPITokenValue()
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), &domain.APIToken{Owner: "acct:foo@example.com", Value: value}))

	app, _, _ := newTestApp(t, store, "example.org")

	_, body := doWhoami(t, app, "Authorization", "Bearer "+value)
	assert.Equal(t, "authenticated", body.Kind)
	assert.Equal(t, "acct:foo@example.com", body.Identity)
}

func TestMiddlewareUnauthenticatedRequestsPassThrough(t *testing.T) {
	app, _, _ := newTestApp(t, newMemoryStore(), "example.org")

	cases := map[string][2]string{
		"no header":      {"", ""},
		"basic auth":     {"Authorization", "Basic dXNlcjpwYXNz"},
		"garbage bearer": {"Authorization", "Bearer abc123"},
	}
	for name, hv := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := doWhoami(t, app, hv[0], hv[1])
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, "none", body.Kind)
		})
	}
}

func TestMiddlewareStoreFailureIsServiceUnavailable(t *testing.T) {
	app, _, metrics := newTestApp(t, &failingStore{err: errors.New("down")}, "example.org")

	status, _ := doWhoami(t, app, "Authorization", "Bearer "+domain.APITokenPrefix+"abc")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, int64(1), metrics.Snapshot()["credentials|store_error"])
}

func TestRequireAuthenticated(t *testing.T) {
	app, codec, _ := newTestApp(t, newMemoryStore(), "example.org")

	anon, _, err := codec.Issue("", time.Hour, "example.org")
	require.NoError(t, err)
	user, _, err := codec.Issue("acct:testuser@hypothes.is", time.Hour, "example.org")
	require.NoError(t, err)

	for token, want := range map[string]int{
		"":   http.StatusUnauthorized,
		anon: http.StatusUnauthorized,
		user: http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "http://example.org/private", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode)
	}
}
