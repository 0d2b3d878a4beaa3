package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/student-service/internal/models"
)

// Topics for enrollment lifecycle events.
const (
	TopicEnrollmentCreated = "enrollment.created"
	TopicEnrollmentDropped = "enrollment.dropped"
	TopicEnrollmentUpdated = "enrollment.updated"
)

// EnrollmentEvent is the payload published on every enrollment state
// change.
type EnrollmentEvent struct {
	EnrollmentID uint                    `json:"enrollment_id"`
	StudentID    uint                    `json:"student_id"`
	CourseID     uint                    `json:"course_id"`
	Status       models.EnrollmentStatus `json:"status"`
	Grade        *float64                `json:"grade,omitempty"`
	OccurredAt   time.Time               `json:"occurred_at"`
}

// EventPublisher publishes enrollment lifecycle events. Publishing is
// best-effort: enrollment state changes must not fail because a broker is
// down, so callers log and continue on error.
type EventPublisher interface {
	PublishEnrollmentEvent(ctx context.Context, topic string, event EnrollmentEvent) error
	Close() error
}

type watermillPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

// NewKafkaPublisher creates an EventPublisher backed by Kafka.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &watermillPublisher{publisher: publisher, logger: logger}, nil
}

// NewGoChannelPublisher creates an in-process EventPublisher for local
// development and environments without Kafka.
func NewGoChannelPublisher(logger *slog.Logger) EventPublisher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &watermillPublisher{publisher: pubsub, logger: logger}
}

func (p *watermillPublisher) PublishEnrollmentEvent(ctx context.Context, topic string, event EnrollmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("topic", topic)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("published enrollment event",
		"topic", topic,
		"enrollment_id", event.EnrollmentID)
	return nil
}

func (p *watermillPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

type PublishedEvent struct {
	Topic string
	Event EnrollmentEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) PublishEnrollmentEvent(_ context.Context, topic string, event EnrollmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) GetPublishedEvents() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
