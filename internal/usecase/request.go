package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
	"github.com/arklim/software-access-portal/internal/repository"
)

var (
	// ErrRequestNotFound indicates the access request does not exist.
	ErrRequestNotFound = errors.New("request not found")
	// ErrPendingRequestExists indicates the user already has a pending
	// request for the software.
	ErrPendingRequestExists = errors.New("you already have a pending request for this software")
	// ErrAccessLevelUnsupported indicates the software does not offer the
	// requested access level.
	ErrAccessLevelUnsupported = errors.New("the software does not support this access level")
	// ErrRequestResolved indicates the request already left the Pending
	// state; the wrapped message names the current status.
	ErrRequestResolved = errors.New("request already resolved")
	// ErrAccessDenied indicates an employee touched a request that is not
	// theirs.
	ErrAccessDenied = errors.New("access denied")
)

// CreateRequestInput captures the payload for submitting a request.
type CreateRequestInput struct {
	SoftwareID string
	AccessType string
	Reason     string
}

// DecideRequestInput captures the payload for resolving a request.
type DecideRequestInput struct {
	Status   string
	Comments *string
}

// RequestService drives the access request lifecycle: Pending on creation,
// resolved exactly once to Approved or Rejected by a manager or admin.
type RequestService struct {
	requests port.AccessRequestRepository
	software port.SoftwareRepository
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewRequestService constructs a RequestService.
func NewRequestService(
	requests port.AccessRequestRepository,
	software port.SoftwareRepository,
	events port.EventPublisher,
	logger *zap.Logger,
) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requests: requests,
		software: software,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock injects a custom clock, primarily for testing.
func (s *RequestService) WithClock(now func() time.Time) *RequestService {
	if now != nil {
		s.now = now
	}
	return s
}

// Create submits a new access request in the Pending state. The requested
// access type must be one of the software's supported levels at creation
// time; later catalog edits do not retroactively invalidate requests.
func (s *RequestService) Create(ctx context.Context, requesterID string, input CreateRequestInput) (domain.AccessRequest, error) {
	if strings.TrimSpace(input.SoftwareID) == "" {
		return domain.AccessRequest{}, fmt.Errorf("%w: software id is required", ErrValidation)
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return domain.AccessRequest{}, fmt.Errorf("%w: reason is required", ErrValidation)
	}

	accessType, ok := domain.ParseAccessLevel(input.AccessType)
	if !ok {
		return domain.AccessRequest{}, fmt.Errorf("%w: access type must be Read, Write, or Admin", ErrValidation)
	}

	software, err := s.software.GetByID(ctx, input.SoftwareID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.AccessRequest{}, ErrSoftwareNotFound
		}
		return domain.AccessRequest{}, fmt.Errorf("lookup software: %w", err)
	}

	if !software.SupportsLevel(accessType) {
		return domain.AccessRequest{}, fmt.Errorf("%w: %q", ErrAccessLevelUnsupported, accessType)
	}

	request := domain.AccessRequest{
		ID:         uuid.NewString(),
		UserID:     requesterID,
		SoftwareID: software.ID,
		AccessType: accessType,
		Reason:     reason,
		Status:     domain.RequestStatusPending,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.requests.CreatePending(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return domain.AccessRequest{}, ErrPendingRequestExists
		}
		return domain.AccessRequest{}, fmt.Errorf("create request: %w", err)
	}

	created, err := s.requests.GetByID(ctx, request.ID)
	if err != nil {
		return domain.AccessRequest{}, fmt.Errorf("load created request: %w", err)
	}

	if s.events != nil {
		event := domain.RequestCreatedEvent{
			RequestID:    created.ID,
			UserID:       created.UserID,
			SoftwareID:   created.SoftwareID,
			SoftwareName: created.SoftwareName,
			AccessType:   created.AccessType,
			CreatedAt:    created.CreatedAt,
		}
		if err := s.events.PublishRequestCreated(ctx, event); err != nil {
			s.logger.Warn("publish request created event failed", zap.Error(err))
		}
	}

	return *created, nil
}

// List returns requests visible to the identity: employees see their own,
// managers and admins see everything. Newest first.
func (s *RequestService) List(ctx context.Context, identity domain.Identity) ([]domain.AccessRequest, error) {
	if identity.Role.CanSeeAllRequests() {
		return s.requests.List(ctx)
	}
	return s.requests.ListByUser(ctx, identity.UserID)
}

// ListPending returns the triage queue, oldest first.
func (s *RequestService) ListPending(ctx context.Context) ([]domain.AccessRequest, error) {
	return s.requests.ListPending(ctx)
}

// Get returns one request, refusing employees access to requests that are
// not theirs.
func (s *RequestService) Get(ctx context.Context, identity domain.Identity, id string) (domain.AccessRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.AccessRequest{}, ErrRequestNotFound
		}
		return domain.AccessRequest{}, fmt.Errorf("lookup request: %w", err)
	}

	if !identity.Role.CanSeeAllRequests() && request.UserID != identity.UserID {
		return domain.AccessRequest{}, ErrAccessDenied
	}

	return *request, nil
}

// Decide resolves a pending request to Approved or Rejected. Resolved
// requests cannot be transitioned again.
func (s *RequestService) Decide(ctx context.Context, actorID, id string, input DecideRequestInput) (domain.AccessRequest, error) {
	status, ok := domain.ParseDecision(input.Status)
	if !ok {
		return domain.AccessRequest{}, fmt.Errorf("%w: status must be Approved or Rejected", ErrValidation)
	}

	var comments *string
	if input.Comments != nil {
		trimmed := strings.TrimSpace(*input.Comments)
		if trimmed != "" {
			comments = &trimmed
		}
	}

	decision := port.RequestDecision{
		Status:    status,
		DecidedBy: actorID,
		Comments:  comments,
		DecidedAt: s.now().UTC(),
	}

	request, err := s.requests.Decide(ctx, id, decision)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.AccessRequest{}, ErrRequestNotFound
		}
		var stateErr *repository.RequestStateError
		if errors.As(err, &stateErr) {
			return domain.AccessRequest{}, fmt.Errorf("%w: request is already %s",
				ErrRequestResolved, strings.ToLower(string(stateErr.Status)))
		}
		return domain.AccessRequest{}, fmt.Errorf("decide request: %w", err)
	}

	if s.events != nil {
		event := domain.RequestDecidedEvent{
			RequestID:  request.ID,
			UserID:     request.UserID,
			SoftwareID: request.SoftwareID,
			AccessType: request.AccessType,
			Status:     request.Status,
			DecidedBy:  actorID,
			Comments:   comments,
			DecidedAt:  decision.DecidedAt,
		}
		if err := s.events.PublishRequestDecided(ctx, event); err != nil {
			s.logger.Warn("publish request decided event failed", zap.Error(err))
		}
	}

	return *request, nil
}
