package booking

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/kafka"
	"github.com/Domenick1991/surgefare/internal/repository"
	"github.com/Domenick1991/surgefare/internal/ticket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxAttempts = 5

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (*BookingResult, error)
	History(ctx context.Context, userID string) ([]domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	Ticket(ctx context.Context, pnr string) ([]byte, error)
}

// Wallet is the part of the ledger a booking needs.
type Wallet interface {
	Debit(ctx context.Context, userID string, amount int64, reference string) (int64, error)
	Credit(ctx context.Context, userID string, amount int64, reference string) (int64, error)
}

type BookInput struct {
	UserID        string
	PassengerName string
	FlightID      string
}

type BookingResult struct {
	Booking      domain.Booking
	SurgeApplied bool
	Balance      int64
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	wallet             Wallet
	renderer           ticket.Renderer
	producer           kafka.Publisher
	bookingTopic       string
	notificationsTopic string
	maxAttempts        int
	log                *zap.Logger
	newPNR             func() (string, error)
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithProducer(producer kafka.Publisher, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithRenderer(r ticket.Renderer) BookingServiceOption {
	return func(s *BookingService) {
		s.renderer = r
	}
}

func WithMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	wallet Wallet,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:    bookings,
		flights:     flights,
		wallet:      wallet,
		producer:    kafka.NopPublisher{},
		maxAttempts: defaultMaxAttempts,
		log:         zap.NewNop(),
		newPNR:      NewPNR,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (in BookInput) validate() (BookInput, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.PassengerName = strings.TrimSpace(in.PassengerName)
	in.FlightID = strings.ToUpper(strings.TrimSpace(in.FlightID))

	if in.UserID == "" || in.PassengerName == "" || in.FlightID == "" {
		return in, domain.ValidationError{Msg: "user_id, passenger_name, and flight_id are required"}
	}
	if utf8.RuneCountInString(in.PassengerName) < 2 {
		return in, domain.ValidationError{Field: "passenger_name", Msg: "passenger name must be at least 2 characters"}
	}
	return in, nil
}

// Book charges the flight's current price and records the booking. Once the
// debit succeeds the booking either persists or the amount is credited back.
func (s *BookingService) Book(ctx context.Context, input BookInput) (*BookingResult, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, domain.DependencyError{Dependency: "flight store", Err: err}
	}
	price := flight.CurrentPrice

	// From the debit on, client cancellation must not strand funds: a cancel
	// racing the debit reply could report failure for a committed debit.
	ctx = context.WithoutCancel(ctx)

	bookingID := uuid.NewString()
	balance, err := s.wallet.Debit(ctx, input.UserID, price, bookingID)
	if err != nil {
		return nil, err
	}

	booking := domain.Booking{
		BookingID:     bookingID,
		UserID:        input.UserID,
		FlightID:      flight.FlightID,
		PassengerName: input.PassengerName,
		FinalPrice:    price,
		BookedAt:      s.now().UTC(),
	}
	if err := s.persist(ctx, &booking, *flight); err != nil {
		s.compensate(ctx, booking, err)
		return nil, domain.DependencyError{Dependency: "booking store", Err: err}
	}

	result := &BookingResult{
		Booking:      booking,
		SurgeApplied: price > flight.BasePrice,
		Balance:      balance,
	}
	s.log.Info("booking confirmed",
		zap.String("booking_id", booking.BookingID),
		zap.String("pnr", booking.PNR),
		zap.String("user_id", booking.UserID),
		zap.String("flight_id", booking.FlightID),
		zap.Int64("final_price", price),
		zap.Bool("surge_applied", result.SurgeApplied),
	)
	if err := s.publish(ctx, kafka.EventBookingConfirmed, result); err != nil {
		s.log.Warn("failed to publish booking event", zap.String("booking_id", booking.BookingID), zap.Error(err))
	}
	return result, nil
}

// persist assigns a PNR, renders the ticket and inserts the booking. Only a
// PNR collision is retried.
func (s *BookingService) persist(ctx context.Context, booking *domain.Booking, flight domain.FlightPrice) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		pnr, err := s.newPNR()
		if err != nil {
			return err
		}
		booking.PNR = pnr
		booking.TicketReference = s.render(ctx, *booking, flight)

		err = s.bookings.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !domain.IsConflict(err) {
			return err
		}
		s.log.Debug("booking identity collision", zap.String("pnr", pnr), zap.Int("attempt", attempt))
		lastErr = err
	}
	return lastErr
}

func (s *BookingService) render(ctx context.Context, booking domain.Booking, flight domain.FlightPrice) string {
	if s.renderer == nil {
		return ""
	}
	ref, err := s.renderer.Render(ctx, domain.NewTicketFields(booking, flight))
	if err != nil {
		s.log.Warn("ticket rendering failed", zap.String("booking_id", booking.BookingID), zap.Error(err))
		return ""
	}
	return ref
}

func (s *BookingService) compensate(ctx context.Context, booking domain.Booking, cause error) {
	reference := "compensation:" + booking.BookingID
	if _, err := s.wallet.Credit(ctx, booking.UserID, booking.FinalPrice, reference); err != nil {
		s.log.Error("compensating credit failed, manual reconciliation required",
			zap.String("booking_id", booking.BookingID),
			zap.String("user_id", booking.UserID),
			zap.String("flight_id", booking.FlightID),
			zap.Int64("amount", booking.FinalPrice),
			zap.String("reference", reference),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}
	s.log.Warn("booking not persisted, debit refunded",
		zap.String("booking_id", booking.BookingID),
		zap.String("user_id", booking.UserID),
		zap.Int64("amount", booking.FinalPrice),
		zap.Error(cause),
	)
}

func (s *BookingService) History(ctx context.Context, userID string) ([]domain.Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ValidationError{Field: "user_id", Msg: "user_id is required"}
	}
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.DependencyError{Dependency: "booking store", Err: err}
	}
	return bookings, nil
}

func (s *BookingService) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	pnr = strings.ToUpper(strings.TrimSpace(pnr))
	if pnr == "" {
		return nil, domain.ValidationError{Field: "pnr", Msg: "pnr is required"}
	}
	b, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, domain.DependencyError{Dependency: "booking store", Err: err}
	}
	return b, nil
}

// Ticket renders the PDF for a stored booking.
func (s *BookingService) Ticket(ctx context.Context, pnr string) ([]byte, error) {
	b, err := s.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByID(ctx, b.FlightID)
	if err != nil {
		return nil, domain.DependencyError{Dependency: "flight store", Err: err}
	}
	return ticket.BuildPDF(domain.NewTicketFields(*b, *flight))
}

func (s *BookingService) publish(ctx context.Context, eventType string, result *BookingResult) error {
	if s.bookingTopic == "" {
		return nil
	}
	b := result.Booking
	event := kafka.BookingEvent{
		Type:          eventType,
		BookingID:     b.BookingID,
		PNR:           b.PNR,
		UserID:        b.UserID,
		FlightID:      b.FlightID,
		PassengerName: b.PassengerName,
		FinalPrice:    b.FinalPrice,
		SurgeApplied:  result.SurgeApplied,
		BookedAt:      b.BookedAt,
	}
	err := s.producer.Publish(ctx, s.bookingTopic, b.BookingID, event)
	if s.notificationsTopic != "" {
		err = errors.Join(err, s.producer.Publish(ctx, s.notificationsTopic, b.BookingID, event))
	}
	return err
}

var _ BookingUseCase = (*BookingService)(nil)
