package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/annotation-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAPITokenCreated    EventType = "api_token_created"
	EventSessionTokenIssued EventType = "session_token_issued"
)

// Event represents an auth event emitted by services. Payloads never carry token values.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Actor     domain.Identity `json:"actor,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType EventType, actor domain.Identity, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// APITokenCreatedPayload payload.
type APITokenCreatedPayload struct {
	TokenID string `json:"token_id"`
}

// SessionTokenIssuedPayload payload.
type SessionTokenIssuedPayload struct {
	Audience  string    `json:"audience"`
	Anonymous bool      `json:"anonymous"`
	ExpiresAt time.Time `json:"expires_at"`
}
