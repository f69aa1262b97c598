package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "uap",
		},
		done: make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "software-access-portal",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishRequestDecided(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	decidedAt := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)
	comments := "granted for the quarter"
	event := domain.RequestDecidedEvent{
		EventID:    "event-123",
		RequestID:  "req-456",
		UserID:     "user-789",
		SoftwareID: "sw-1",
		AccessType: domain.AccessLevelWrite,
		Status:     domain.RequestStatusApproved,
		DecidedBy:  "manager-1",
		Comments:   &comments,
		DecidedAt:  decidedAt,
	}

	if err := publisher.PublishRequestDecided(context.Background(), event); err != nil {
		t.Fatalf("PublishRequestDecided returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "uap.request.decided" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "request.decided" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		if got := envelope["event_id"]; got != event.EventID {
			t.Fatalf("unexpected event_id: %v", got)
		}

		if got := envelope["user_id"]; got != event.UserID {
			t.Fatalf("unexpected user_id: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not an object: %T", envelope["payload"])
		}

		if got := payload["status"]; got != string(domain.RequestStatusApproved) {
			t.Fatalf("unexpected status: %v", got)
		}

		if got := payload["comments"]; got != comments {
			t.Fatalf("unexpected comments: %v", got)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("metadata not an object: %T", envelope["metadata"])
		}

		if got := metadata["service"]; got != "software-access-portal" {
			t.Fatalf("unexpected service metadata: %v", got)
		}
	default:
		t.Fatalf("expected a produced message")
	}
}

func TestPublishUserRegisteredGeneratesEventID(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	event := domain.UserRegisteredEvent{
		UserID:       "user-1",
		Username:     "alice",
		Role:         domain.RoleEmployee,
		RegisteredAt: time.Date(2026, 7, 14, 9, 0, 0, 0, time.UTC),
	}

	if err := publisher.PublishUserRegistered(context.Background(), event); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "uap.user.registered" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		id, ok := envelope["event_id"].(string)
		if !ok || id == "" {
			t.Fatalf("expected generated event_id, got %v", envelope["event_id"])
		}
	default:
		t.Fatalf("expected a produced message")
	}
}
