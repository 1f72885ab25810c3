package domain

// Identity is a resolved tenant+user pair. Every operation in the timer core
// is scoped by one; resolving it is the caller's concern.
type Identity struct {
	TenantID string
	UserID   string
}

// IsZero reports whether either half of the identity is missing.
func (id Identity) IsZero() bool {
	return id.TenantID == "" || id.UserID == ""
}
