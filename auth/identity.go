package auth

import (
	"slices"
	"time"
)

// Method indicates how a caller was authenticated.
type Method string

const (
	MethodJWT       Method = "jwt"
	MethodAPIKey    Method = "api_key"
	MethodAnonymous Method = "anonymous"
)

// Identity is an authenticated caller.
type Identity struct {
	// Principal identifies the caller (token subject or key owner).
	Principal string

	Roles  []string
	Method Method

	// Claims holds token claims or key metadata.
	Claims map[string]any

	// ExpiresAt is zero when the credential never expires.
	ExpiresAt time.Time
}

// HasRole reports whether the identity holds role.
func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// HasAnyRole reports whether the identity holds at least one of roles.
func (id *Identity) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if id.HasRole(r) {
			return true
		}
	}
	return false
}

// AnonymousIdentity returns the identity used when authentication is
// disabled. It holds every dispatcher role.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Roles:     []string{RoleAdmin},
		Method:    MethodAnonymous,
	}
}
