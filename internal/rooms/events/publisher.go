// Package events emits booking audit events to Kafka. The stream is
// observational: it carries no delivery guarantee and is not the mechanism
// that keeps the user-side booking mirror consistent (that is the notifier).
// Stronger delivery semantics belong to consumers of the topic, not here.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"roomsvc/pkg/logger"
	"roomsvc/pkg/model"
)

const (
	TypeBookingCreated = "booking.created"
	TypeBookingDeleted = "booking.deleted"

	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

type BookingEvent struct {
	Type      string    `json:"type"`
	RoomID    string    `json:"room_id"`
	BookingID string    `json:"booking_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Leader    string    `json:"leader"`
	Users     []string  `json:"users"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Publisher writes booking events keyed by room so events for one room stay
// ordered within a partition. A nil Publisher is valid and publishes nothing,
// which is how deployments without Kafka run.
type Publisher struct {
	writer  *kafka.Writer
	source  string
	timeout time.Duration
	log     *logger.Logger
}

func NewPublisher(brokers []string, topic, source string, timeout time.Duration, log *logger.Logger) *Publisher {
	if len(brokers) == 0 {
		log.Info("Kafka brokers not configured, booking events disabled")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger:  kafka.LoggerFunc(func(msg string, args ...any) { log.Error("kafka: "+msg, "args", args) }),
	}

	log.Info("Booking event publisher configured", "topic", topic)
	return &Publisher{
		writer:  writer,
		source:  source,
		timeout: timeout,
		log:     log,
	}
}

// Publish emits the event asynchronously, best-effort. Failures are logged
// and never reach the booking operation that produced the event.
func (p *Publisher) Publish(eventType, roomID string, booking *model.Booking) {
	if p == nil {
		return
	}

	event := BookingEvent{
		Type:      eventType,
		RoomID:    roomID,
		BookingID: booking.ID,
		Start:     booking.Start,
		End:       booking.End,
		Leader:    booking.Leader,
		Users:     booking.Users,
		EmittedAt: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to encode booking event", "type", eventType, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(roomID),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.NewString())},
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderSource, Value: []byte(p.source)},
		},
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.log.Error("Failed to publish booking event",
				"type", eventType,
				"room_id", roomID,
				"booking_id", booking.ID,
				"error", err,
			)
		}
	}()
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
