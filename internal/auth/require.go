package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/annotation-auth/pkg/util"
)

// RequireAuthenticated rejects requests without an authenticated identity.
// Anonymous session tokens do not satisfy it.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CredentialFromContext(c).Kind != Authenticated {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
