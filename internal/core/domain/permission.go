package domain

import "time"

// UserPermission is a granted access level, created when a manager or
// admin approves an access request. Live permissions block catalog
// deletion of the software they refer to.
type UserPermission struct {
	ID         string
	UserID     string
	SoftwareID string
	AccessType AccessLevel
	GrantedBy  string
	RequestID  string
	GrantedAt  time.Time
}
