package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BookingEventHandler processes one decoded booking event. A returned error
// stops the consumer and leaves the message uncommitted.
type BookingEventHandler func(context.Context, BookingEvent) error

// BookingConsumer reads booking events from a consumer group. Offsets are
// committed only after the handler succeeds, so delivery is at-least-once.
type BookingConsumer struct {
	reader messageReader
	log    *zap.Logger
}

func NewBookingConsumer(brokers []string, groupID, topic string, log *zap.Logger) *BookingConsumer {
	return &BookingConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log.Named("booking-consumer").With(zap.String("topic", topic)),
	}
}

func (c *BookingConsumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Run blocks until ctx is done, the reader fails or handle returns an error.
// Messages that do not decode are logged and committed so they cannot wedge
// the partition.
func (c *BookingConsumer) Run(ctx context.Context, handle BookingEventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		event, err := DecodeBookingEvent(msg)
		if err != nil {
			c.log.Warn("skipping undecodable event",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		} else if err := handle(ctx, event); err != nil {
			return fmt.Errorf("handle booking event %s: %w", event.BookingID, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// DecodeBookingEvent unmarshals a booking topic message.
func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event %q: %w", string(msg.Key), err)
	}
	return event, nil
}
