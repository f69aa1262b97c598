package domain

import "time"

// Role classifies what a user is allowed to do across the portal.
// It is distinct from AccessLevel, which describes capabilities on a
// single piece of software.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleAdmin    Role = "Admin"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return Role(raw), true
	}
	return "", false
}

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID   string
	Username string
	Role     Role
}

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
