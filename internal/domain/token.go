package domain

import (
	"errors"
	"time"
)

// APITokenPrefix is the fixed, publicly known prefix every API token value starts with.
const APITokenPrefix = "6879-"

// ErrTokenNotFound is returned by token stores when no record has the requested value.
var ErrTokenNotFound = errors.New("api token not found")

// APIToken is a long-lived opaque credential owned by an identity.
type APIToken struct {
	ID        string
	Owner     Identity
	Value     string
	CreatedAt time.Time
}
