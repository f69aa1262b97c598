package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs uap.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"role":          event.Role,
		"registered_at": event.RegisteredAt,
	}
	p.logEvent(eventUserRegistered, event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishRequestCreated logs uap.request.created events.
func (p *StubPublisher) PublishRequestCreated(_ context.Context, event domain.RequestCreatedEvent) error {
	payload := map[string]any{
		"request_id":    event.RequestID,
		"user_id":       event.UserID,
		"software_id":   event.SoftwareID,
		"software_name": event.SoftwareName,
		"access_type":   event.AccessType,
		"created_at":    event.CreatedAt,
	}
	p.logEvent(eventRequestCreated, event.UserID, event.CreatedAt, payload)
	return nil
}

// PublishRequestDecided logs uap.request.decided events.
func (p *StubPublisher) PublishRequestDecided(_ context.Context, event domain.RequestDecidedEvent) error {
	payload := map[string]any{
		"request_id":  event.RequestID,
		"user_id":     event.UserID,
		"software_id": event.SoftwareID,
		"access_type": event.AccessType,
		"status":      event.Status,
		"decided_by":  event.DecidedBy,
		"decided_at":  event.DecidedAt,
	}
	p.logEvent(eventRequestDecided, event.UserID, event.DecidedAt, payload)
	return nil
}

// PublishSoftwareDeleted logs uap.software.deleted events.
func (p *StubPublisher) PublishSoftwareDeleted(_ context.Context, event domain.SoftwareDeletedEvent) error {
	payload := map[string]any{
		"software_id":      event.SoftwareID,
		"name":             event.Name,
		"removed_requests": event.RemovedRequests,
		"deleted_by":       event.DeletedBy,
		"deleted_at":       event.DeletedAt,
	}
	p.logEvent(eventSoftwareDeleted, event.DeletedBy, event.DeletedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
