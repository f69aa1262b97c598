package domain

import "time"

// RequestStatus enumerates the access request state machine. Pending is
// initial; Approved and Rejected are terminal.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusApproved RequestStatus = "Approved"
	RequestStatusRejected RequestStatus = "Rejected"
)

// ParseDecision validates a raw status string as a terminal decision.
func ParseDecision(raw string) (RequestStatus, bool) {
	switch RequestStatus(raw) {
	case RequestStatusApproved, RequestStatusRejected:
		return RequestStatus(raw), true
	}
	return "", false
}

// IsTerminal reports whether the status permits no further transitions.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// AccessRequest records one employee's petition for an access level on a
// piece of software. User and software are held as foreign keys; Username
// and SoftwareName are denormalized for listings and not persisted on the
// requests table itself.
type AccessRequest struct {
	ID           string
	UserID       string
	SoftwareID   string
	AccessType   AccessLevel
	Reason       string
	Status       RequestStatus
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	ProcessedBy  *string
	Comments     *string
	Username     string
	SoftwareName string
}
