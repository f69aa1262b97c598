package port

import (
	"context"
	"time"

	"github.com/arklim/software-access-portal/internal/core/domain"
)

// RequestDecision carries the inputs for resolving a pending request.
type RequestDecision struct {
	Status    domain.RequestStatus
	DecidedBy string
	Comments  *string
	DecidedAt time.Time
}

// AccessRequestRepository handles access request persistence. The write
// operations enforce the lifecycle invariants transactionally: CreatePending
// refuses a second pending request for the same (user, software) pair, and
// Decide only moves requests out of Pending, recording the granted
// permission in the same transaction when the decision is an approval.
type AccessRequestRepository interface {
	CreatePending(ctx context.Context, request domain.AccessRequest) error
	List(ctx context.Context) ([]domain.AccessRequest, error)
	ListByUser(ctx context.Context, userID string) ([]domain.AccessRequest, error)
	ListPending(ctx context.Context) ([]domain.AccessRequest, error)
	GetByID(ctx context.Context, id string) (*domain.AccessRequest, error)
	Decide(ctx context.Context, id string, decision RequestDecision) (*domain.AccessRequest, error)
}
