package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/annotation-auth/internal/observability"
	apperrors "github.com/spec-kit/annotation-auth/pkg/util"
)

const (
	credentialKey = "auth_credential"

	// LegacyTokenHeader carries a session token for clients that cannot set Authorization.
	LegacyTokenHeader = "X-Annotator-Auth-Token"
)

// AuthMiddleware resolves request credentials and stores the result in locals.
// It does not reject unauthenticated requests; see RequireAuthenticated.
type AuthMiddleware struct {
	dispatcher *Dispatcher
	audience   string
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuthMiddleware constructs middleware. An empty audience means the
// request base URL is used.
func NewAuthMiddleware(dispatcher *Dispatcher, audience string, metrics *observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{dispatcher: dispatcher, audience: audience, metrics: metrics, logger: logger}
}

// Handle authenticates the request.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw := credentialFromRequest(c)

	cred, err := m.dispatcher.Authenticate(c.UserContext(), raw, RequestAudience(c, m.audience))
	if err != nil {
		m.metrics.RecordCredential("store_error")
		m.logger.Error("credential lookup failed", zap.String("path", c.Path()), zap.Error(err))
		return apperrors.NewServiceUnavailable("authentication temporarily unavailable", err)
	}

	m.metrics.RecordCredential(cred.Kind.String())
	c.Locals(credentialKey, cred)
	return c.Next()
}

// CredentialFromContext returns the credential resolved for this request.
// Requests that did not pass through the middleware report NoCredential.
func CredentialFromContext(c *fiber.Ctx) Credential {
	cred, ok := c.Locals(credentialKey).(Credential)
	if !ok {
		return Credential{Kind: NoCredential}
	}
	return cred
}

// RequestAudience returns the audience session tokens are bound to for this request.
func RequestAudience(c *fiber.Ctx, configured string) string {
	if configured != "" {
		return configured
	}
	return c.BaseURL()
}

func credentialFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Get(LegacyTokenHeader)
}
