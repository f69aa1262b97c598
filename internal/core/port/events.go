package port

import (
	"context"

	"github.com/arklim/software-access-portal/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishRequestCreated(ctx context.Context, event domain.RequestCreatedEvent) error
	PublishRequestDecided(ctx context.Context, event domain.RequestDecidedEvent) error
	PublishSoftwareDeleted(ctx context.Context, event domain.SoftwareDeletedEvent) error
}
