package auth

import (
	"context"

	"github.com/spec-kit/annotation-auth/internal/domain"
)

// CredentialKind is the unified result of authenticating a raw credential.
type CredentialKind int

const (
	// NoCredential means the credential was missing, unknown or rejected.
	NoCredential CredentialKind = iota
	// Anonymous means a valid session token without a subject.
	Anonymous
	// Authenticated means the credential resolved to an identity.
	Authenticated
)

func (k CredentialKind) String() string {
	switch k {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "none"
	}
}

// Credential is what the dispatcher made of a raw credential string.
type Credential struct {
	Kind     CredentialKind
	Identity domain.Identity
}

// Dispatcher routes a raw credential to the API token resolver or the
// session codec. The prefix is the only discriminator; a prefixed string is
// never tried as a session token.
type Dispatcher struct {
	sessions *SessionCodec
	apiToken *APITokenResolver
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(sessions *SessionCodec, apiTokens *APITokenResolver) *Dispatcher {
	return &Dispatcher{sessions: sessions, apiToken: apiTokens}
}

// Authenticate resolves raw for the given audience. The error is non-nil only
// when the token store could not be consulted.
func (d *Dispatcher) Authenticate(ctx context.Context, raw, audience string) (Credential, error) {
	if raw == "" {
		return Credential{Kind: NoCredential}, nil
	}

	if IsAPIToken(raw) {
		owner, ok, err := d.apiToken.Resolve(ctx, raw)
		if err != nil {
			return Credential{Kind: NoCredential}, err
		}
		if !ok {
			return Credential{Kind: NoCredential}, nil
		}
		return Credential{Kind: Authenticated, Identity: owner}, nil
	}

	result := d.sessions.Verify(raw, audience)
	switch result.Status {
	case SessionAuthenticated:
		return Credential{Kind: Authenticated, Identity: result.Subject}, nil
	case SessionAnonymous:
		return Credential{Kind: Anonymous}, nil
	default:
		return Credential{Kind: NoCredential}, nil
	}
}
