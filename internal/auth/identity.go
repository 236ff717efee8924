package auth

import "time"

// Principal is a validated identity with its authorization attributes.
// It is immutable once created; ExpiresAt is always in the future at
// creation time.
type Principal struct {
	ID          string
	Username    string
	Roles       []string
	Permissions []string
	ExpiresAt   time.Time
}

// Default attributes granted when a credential carries none.
var (
	defaultRoles       = []string{"user"}
	defaultPermissions = []string{"predict"}
)

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the principal holds the given permission.
func (p *Principal) HasPermission(permission string) bool {
	for _, perm := range p.Permissions {
		if perm == permission {
			return true
		}
	}
	return false
}

// Expired reports whether the principal's validity window has passed.
func (p *Principal) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}
