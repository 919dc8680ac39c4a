package domain

// Identity identifies a principal, e.g. "acct:user@example.com".
// It is compared for equality and never parsed. The zero value means no identity.
type Identity string

// IsZero reports whether the identity is absent.
func (i Identity) IsZero() bool {
	return i == ""
}

func (i Identity) String() string {
	return string(i)
}
