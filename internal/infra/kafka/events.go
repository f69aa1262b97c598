package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/core/port"
	"github.com/arklim/software-access-portal/internal/infra/config"
)

const schemaVersion = "1.0"

const (
	eventUserRegistered  = "user.registered"
	eventRequestCreated  = "request.created"
	eventRequestDecided  = "request.decided"
	eventSoftwareDeleted = "software.deleted"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes uap.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string      `json:"user_id"`
		Username     string      `json:"username"`
		Role         domain.Role `json:"role"`
		RegisteredAt time.Time   `json:"registered_at"`
	}{event.UserID, event.Username, event.Role, event.RegisteredAt}

	return p.publish(ctx, event.EventID, eventUserRegistered, event.UserID, event.RegisteredAt, payload)
}

// PublishRequestCreated publishes uap.request.created events.
func (p *EventPublisher) PublishRequestCreated(ctx context.Context, event domain.RequestCreatedEvent) error {
	payload := struct {
		RequestID    string             `json:"request_id"`
		UserID       string             `json:"user_id"`
		SoftwareID   string             `json:"software_id"`
		SoftwareName string             `json:"software_name"`
		AccessType   domain.AccessLevel `json:"access_type"`
		CreatedAt    time.Time          `json:"created_at"`
	}{event.RequestID, event.UserID, event.SoftwareID, event.SoftwareName, event.AccessType, event.CreatedAt}

	return p.publish(ctx, event.EventID, eventRequestCreated, event.UserID, event.CreatedAt, payload)
}

// PublishRequestDecided publishes uap.request.decided events.
func (p *EventPublisher) PublishRequestDecided(ctx context.Context, event domain.RequestDecidedEvent) error {
	payload := struct {
		RequestID  string               `json:"request_id"`
		UserID     string               `json:"user_id"`
		SoftwareID string               `json:"software_id"`
		AccessType domain.AccessLevel   `json:"access_type"`
		Status     domain.RequestStatus `json:"status"`
		DecidedBy  string               `json:"decided_by"`
		Comments   *string              `json:"comments,omitempty"`
		DecidedAt  time.Time            `json:"decided_at"`
	}{event.RequestID, event.UserID, event.SoftwareID, event.AccessType, event.Status, event.DecidedBy, event.Comments, event.DecidedAt}

	return p.publish(ctx, event.EventID, eventRequestDecided, event.UserID, event.DecidedAt, payload)
}

// PublishSoftwareDeleted publishes uap.software.deleted events.
func (p *EventPublisher) PublishSoftwareDeleted(ctx context.Context, event domain.SoftwareDeletedEvent) error {
	payload := struct {
		SoftwareID      string    `json:"software_id"`
		Name            string    `json:"name"`
		RemovedRequests int       `json:"removed_requests"`
		DeletedBy       string    `json:"deleted_by"`
		DeletedAt       time.Time `json:"deleted_at"`
	}{event.SoftwareID, event.Name, event.RemovedRequests, event.DeletedBy, event.DeletedAt}

	return p.publish(ctx, event.EventID, eventSoftwareDeleted, event.DeletedBy, event.DeletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
