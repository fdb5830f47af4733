package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/surgefare/internal/kafka"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers booking confirmations. Delivery is a structured log line;
// there is no mail transport configured.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func Compose(event kafka.BookingEvent) Message {
	body := fmt.Sprintf("Dear %s,\n\nYour booking %s on flight %s is confirmed.\nAmount charged: %d\n",
		event.PassengerName, event.PNR, event.FlightID, event.FinalPrice)
	if event.SurgeApplied {
		body += "Surge pricing was in effect for this fare.\n"
	}
	return Message{
		To:      event.UserID,
		Subject: fmt.Sprintf("Booking confirmed: PNR %s", event.PNR),
		Body:    body,
	}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Type != kafka.EventBookingConfirmed {
		s.log.Debug("skipping event", zap.String("type", event.Type))
		return nil
	}
	msg := Compose(event)
	s.log.Info("sending booking email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("booking_id", event.BookingID),
	)
	return nil
}
