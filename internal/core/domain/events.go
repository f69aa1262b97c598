package domain

import "time"

// UserRegisteredEvent represents the payload for uap.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Role         Role
	RegisteredAt time.Time
}

// RequestCreatedEvent represents the payload for uap.request.created messages.
type RequestCreatedEvent struct {
	EventID      string
	RequestID    string
	UserID       string
	SoftwareID   string
	SoftwareName string
	AccessType   AccessLevel
	CreatedAt    time.Time
}

// RequestDecidedEvent represents the payload for uap.request.decided messages.
type RequestDecidedEvent struct {
	EventID    string
	RequestID  string
	UserID     string
	SoftwareID string
	AccessType AccessLevel
	Status     RequestStatus
	DecidedBy  string
	Comments   *string
	DecidedAt  time.Time
}

// SoftwareDeletedEvent represents the payload for uap.software.deleted messages.
type SoftwareDeletedEvent struct {
	EventID         string
	SoftwareID      string
	Name            string
	RemovedRequests int
	DeletedBy       string
	DeletedAt       time.Time
}
