package repository

import (
	"context"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	// Create inserts an immutable booking. A duplicate PNR yields
	// domain.ConflictError so the caller can retry with a fresh identity.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, bookingID string) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `booking_id, pnr, user_id, flight_id, passenger_name, final_price, booked_at, ticket_reference`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.BookingID, &b.PNR, &b.UserID, &b.FlightID, &b.PassengerName, &b.FinalPrice, &b.BookedAt, &b.TicketReference); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	_, err := r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.BookingID, booking.PNR, booking.UserID, booking.FlightID, booking.PassengerName,
		booking.FinalPrice, booking.BookedAt, booking.TicketReference)
	if pgErr, ok := isUniqueViolation(err); ok {
		field := "booking_id"
		if pgErr.ConstraintName == "bookings_pnr_key" {
			field = "pnr"
		}
		return domain.ConflictError{Resource: "booking", Field: field, Err: err}
	}
	return err
}

func (r *PGBookingRepository) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=$1`, bookingID))
	if err != nil {
		return nil, notFound(err, "booking", "")
	}
	return b, nil
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr))
	if err != nil {
		return nil, notFound(err, "booking", "")
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY booked_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
