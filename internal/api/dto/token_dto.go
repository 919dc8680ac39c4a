package dto

import "time"

// SessionTokenResponse is returned by POST /api/token.
type SessionTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APITokenResponse is returned by POST /api/developer/token.
type APITokenResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse is returned by GET /api/profile.
type ProfileResponse struct {
	UserID        *string `json:"userid"`
	Authenticated bool    `json:"authenticated"`
}

// LinksRequest describes the annotation to build links for.
type LinksRequest struct {
	ID         string   `json:"id"`
	References []string `json:"references"`
	TargetURI  string   `json:"target_uri"`
}

// LinksResponse holds generated annotation links.
type LinksResponse struct {
	HTML      string  `json:"html"`
	InContext *string `json:"incontext"`
}
