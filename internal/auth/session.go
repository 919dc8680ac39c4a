package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/annotation-auth/internal/domain"
)

// DefaultLeeway is the clock skew tolerated between issuer and verifier.
const DefaultLeeway = 240 * time.Second

// ErrMissingSecret is returned when a codec is built without a signing secret.
var ErrMissingSecret = errors.New("session token secret is empty")

// SessionStatus is the outcome of verifying a session token.
type SessionStatus int

const (
	// SessionRejected covers malformed, forged, expired and audience-mismatched tokens alike.
	SessionRejected SessionStatus = iota
	// SessionAnonymous is a validly signed token that carries no subject.
	SessionAnonymous
	// SessionAuthenticated is a validly signed token for an identity.
	SessionAuthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case SessionAuthenticated:
		return "authenticated"
	case SessionAnonymous:
		return "anonymous"
	default:
		return "rejected"
	}
}

// SessionResult is returned by SessionCodec.Verify.
type SessionResult struct {
	Status  SessionStatus
	Subject domain.Identity
}

// SessionClaims describes the session token payload.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionCodec issues and verifies HS256 session tokens.
type SessionCodec struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// SessionOption customizes a SessionCodec.
type SessionOption func(*SessionCodec)

// WithLeeway overrides DefaultLeeway.
func WithLeeway(leeway time.Duration) SessionOption {
	return func(c *SessionCodec) { c.leeway = leeway }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) SessionOption {
	return func(c *SessionCodec) { c.now = now }
}

// WithLogger sets the logger used for rejection reasons.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(c *SessionCodec) { c.logger = logger }
}

// NewSessionCodec builds a codec. An empty secret is refused.
func NewSessionCodec(secret []byte, opts ...SessionOption) (*SessionCodec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	c := &SessionCodec{
		secret: append([]byte(nil), secret...),
		leeway: DefaultLeeway,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for subject, valid for ttl and bound to audience.
// An empty subject produces an anonymous token. ttl is not validated.
func (c *SessionCodec) Issue(subject domain.Identity, ttl time.Duration, audience string) (string, time.Time, error) {
	now := c.now()
	exp := jwt.NewNumericDate(ceilSecond(now.Add(ttl)))
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: exp,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, exp.Time, nil
}

// ceilSecond rounds t up to a whole second, so the signed exp never lands
// before the requested expiry.
func ceilSecond(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Before(t) {
		return truncated.Add(time.Second)
	}
	return truncated
}

// Verify checks signature, algorithm, audience and expiry. A token stays
// valid while exp+leeway >= now. Every failure yields SessionRejected; the
// reason is only logged.
func (c *SessionCodec) Verify(tokenStr, audience string) SessionResult {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		c.reject(rejectReason(err), err)
		return SessionResult{Status: SessionRejected}
	}
	if !parsed.Valid {
		c.reject("invalid", nil)
		return SessionResult{Status: SessionRejected}
	}
	if claims.ExpiresAt == nil {
		c.reject("missing exp", nil)
		return SessionResult{Status: SessionRejected}
	}
	now := c.now()
	if now.After(claims.ExpiresAt.Add(c.leeway)) {
		c.reject("expired", nil)
		return SessionResult{Status: SessionRejected}
	}
	if claims.NotBefore != nil && now.Add(c.leeway).Before(claims.NotBefore.Time) {
		c.reject("not yet valid", nil)
		return SessionResult{Status: SessionRejected}
	}
	// aud must be exactly the expected value, not merely contain it.
	if len(claims.Audience) != 1 || claims.Audience[0] != audience {
		c.reject("audience", nil)
		return SessionResult{Status: SessionRejected}
	}

	if claims.Subject == "" {
		return SessionResult{Status: SessionAnonymous}
	}
	return SessionResult{Status: SessionAuthenticated, Subject: domain.Identity(claims.Subject)}
}

func (c *SessionCodec) reject(reason string, err error) {
	fields := []zap.Field{zap.String("reason", reason)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	c.logger.Debug("session token rejected", fields...)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "algorithm"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
