package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/annotation-auth/internal/auth"
	"github.com/spec-kit/annotation-auth/internal/domain"
	"github.com/spec-kit/annotation-auth/internal/events"
	"github.com/spec-kit/annotation-auth/internal/repository"
)

// ErrOwnerRequired is returned when creating an API token without an owner.
var ErrOwnerRequired = errors.New("api token owner is required")

// maxValueAttempts bounds retries after a generated value collides.
const maxValueAttempts = 3

// IssuedSessionToken is a signed session token and its expiry.
type IssuedSessionToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenService coordinates session token issuance and API token creation.
type TokenService struct {
	sessions   *auth.SessionCodec
	store      auth.TokenStore
	dispatcher events.Dispatcher
	sessionTTL time.Duration
	logger     *zap.Logger
}

// TokenDependencies encapsulates collaborators for the token service.
type TokenDependencies struct {
	Sessions   *auth.SessionCodec
	Store      auth.TokenStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTokenService builds the service.
func NewTokenService(sessionTTL time.Duration, deps TokenDependencies) *TokenService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{
		sessions:   deps.Sessions,
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// IssueSessionToken signs a session token for subject bound to audience.
// An empty subject yields an anonymous token.
func (s *TokenService) IssueSessionToken(ctx context.Context, subject domain.Identity, audience string) (*IssuedSessionToken, error) {
	token, expiresAt, err := s.sessions.Issue(subject, s.sessionTTL, audience)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.EventSessionTokenIssued, subject, events.SessionTokenIssuedPayload{
		Audience:  audience,
		Anonymous: subject.IsZero(),
		ExpiresAt: expiresAt,
	}))
	return &IssuedSessionToken{Token: token, ExpiresAt: expiresAt}, nil
}

// CreateAPIToken generates and stores a new API token for owner.
func (s *TokenService) CreateAPIToken(ctx context.Context, owner domain.Identity) (*domain.APIToken, error) {
	if owner.IsZero() {
		return nil, ErrOwnerRequired
	}

	var lastErr error
	for attempt := 0; attempt < maxValueAttempts; attempt++ {
		value, err := auth.GenerateAPITokenValue()
		if err != nil {
			return nil, err
		}
		token := &domain.APIToken{Owner: owner, Value: value}
		err = s.store.Insert(ctx, token)
		if err == nil {
			s.publish(ctx, events.NewEvent(events.EventAPITokenCreated, owner, events.APITokenCreatedPayload{TokenID: token.ID}))
			return token, nil
		}
		if !errors.Is(err, repository.ErrDuplicateTokenValue) {
			return nil, fmt.Errorf("%w: %w", auth.ErrStoreUnavailable, err)
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *TokenService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
