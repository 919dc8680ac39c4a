package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/annotation-auth/internal/api/dto"
	"github.com/spec-kit/annotation-auth/internal/auth"
	"github.com/spec-kit/annotation-auth/internal/repository"
	"github.com/spec-kit/annotation-auth/internal/service"
	apperrors "github.com/spec-kit/annotation-auth/pkg/util"
)

// TokenHandler exposes session and API token endpoints.
type TokenHandler struct {
	tokens   *service.TokenService
	audience string
}

// NewTokenHandler constructs handler. An empty audience binds session
// tokens to the request base URL.
func NewTokenHandler(tokens *service.TokenService, audience string) *TokenHandler {
	return &TokenHandler{tokens: tokens, audience: audience}
}

// Profile handles GET /api/profile.
func (h *TokenHandler) Profile(c *fiber.Ctx) error {
	cred := auth.CredentialFromContext(c)
	resp := dto.ProfileResponse{Authenticated: cred.Kind == auth.Authenticated}
	if resp.Authenticated {
		userID := cred.Identity.String()
		resp.UserID = &userID
	}
	return c.JSON(resp)
}

// IssueSession handles POST /api/token. Callers without an identity get an
// anonymous token.
func (h *TokenHandler) IssueSession(c *fiber.Ctx) error {
	cred := auth.CredentialFromContext(c)

	issued, err := h.tokens.IssueSessionToken(c.UserContext(), cred.Identity, auth.RequestAudience(c, h.audience))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{
		"data": dto.SessionTokenResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt},
	})
}

// CreateAPIToken handles POST /api/developer/token.
func (h *TokenHandler) CreateAPIToken(c *fiber.Ctx) error {
	cred := auth.CredentialFromContext(c)

	token, err := h.tokens.CreateAPIToken(c.UserContext(), cred.Identity)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrStoreUnavailable):
			return apperrors.NewServiceUnavailable("token store unavailable", err)
		case errors.Is(err, repository.ErrDuplicateTokenValue):
			return apperrors.NewConflict("could not allocate a unique token value", nil)
		}
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.APITokenResponse{
			ID:        token.ID,
			Token:     token.Value,
			Owner:     token.Owner.String(),
			CreatedAt: token.CreatedAt,
		},
	})
}
