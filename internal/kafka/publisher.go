package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ms-reminders/internal/models"
)

const eventNotificationCreated = "notification.created"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NotificationPublisher emits a notification.created event for every recorded
// reminder so realtime clients can pick it up without polling.
type NotificationPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewNotificationPublisher returns nil when Kafka is not configured.
func NewNotificationPublisher(kafkaURL, topic string, logger *zap.Logger) *NotificationPublisher {
	if kafkaURL == "" || topic == "" {
		logger.Info("Empty Kafka topic or URL provided, notification events disabled")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kafkaURL),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(msg, args...))
		}),
	}

	return &NotificationPublisher{
		writer: writer,
		topic:  topic,
		logger: logger.With(zap.String("component", "kafka"), zap.String("topic", topic)),
	}
}

// Dispatch publishes n keyed by user so one user's events stay ordered.
func (p *NotificationPublisher) Dispatch(ctx context.Context, n models.Notification) error {
	event := models.NotificationCreatedEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		RelatedID:      n.RelatedID,
		Title:          n.Title,
		Message:        n.Message,
	}
	if n.SentAt != nil {
		event.SentAt = *n.SentAt
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding notification event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(eventNotificationCreated)},
		},
	})
	if err != nil {
		return fmt.Errorf("publishing notification %s: %w", n.ID, err)
	}

	p.logger.Debug("Published notification event", zap.String("notification_id", n.ID))
	return nil
}

func (p *NotificationPublisher) Close() error {
	return p.writer.Close()
}
