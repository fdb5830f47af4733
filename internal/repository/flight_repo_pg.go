package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/jackc/pgx/v5"
)

// FlightRepository stores FlightPrice rows. Price mutations are conditional
// writes so concurrent evaluations collapse into one effective change.
type FlightRepository interface {
	ListByRoute(ctx context.Context, route domain.Route, limit int) ([]domain.FlightPrice, error)
	GetByID(ctx context.Context, flightID string) (*domain.FlightPrice, error)
	// ResetExpiredSurges returns surged flights on route whose last price
	// update is at or before idleBefore to base price.
	ResetExpiredSurges(ctx context.Context, route domain.Route, idleBefore, now time.Time) ([]string, error)
	ResetAllExpiredSurges(ctx context.Context, idleBefore, now time.Time) ([]string, error)
	// EscalateRoute surges every flight on route still at base price.
	EscalateRoute(ctx context.Context, route domain.Route, m domain.Multiplier, now time.Time) ([]string, error)
	Upsert(ctx context.Context, flights []domain.FlightPrice) error
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `flight_id, airline, departure_city, arrival_city, base_price, current_price, last_price_update, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.FlightPrice, error) {
	var f domain.FlightPrice
	if err := row.Scan(&f.FlightID, &f.Airline, &f.Route.From, &f.Route.To, &f.BasePrice, &f.CurrentPrice, &f.LastPriceUpdate, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) ListByRoute(ctx context.Context, route domain.Route, limit int) ([]domain.FlightPrice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE departure_city=$1 AND arrival_city=$2 ORDER BY flight_id LIMIT $3`, route.From, route.To, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.FlightPrice, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, flightID string) (*domain.FlightPrice, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_id=$1`, flightID))
	if err != nil {
		return nil, notFound(err, "flight", flightID)
	}
	return f, nil
}

func (r *PGFlightRepository) ResetExpiredSurges(ctx context.Context, route domain.Route, idleBefore, now time.Time) ([]string, error) {
	return r.collectIDs(ctx, `UPDATE flights
		SET current_price = base_price, last_price_update = $3, updated_at = now()
		WHERE departure_city=$1 AND arrival_city=$2 AND current_price <> base_price AND last_price_update <= $4
		RETURNING flight_id`, route.From, route.To, now, idleBefore)
}

func (r *PGFlightRepository) ResetAllExpiredSurges(ctx context.Context, idleBefore, now time.Time) ([]string, error) {
	return r.collectIDs(ctx, `UPDATE flights
		SET current_price = base_price, last_price_update = $1, updated_at = now()
		WHERE current_price <> base_price AND last_price_update <= $2
		RETURNING flight_id`, now, idleBefore)
}

func (r *PGFlightRepository) EscalateRoute(ctx context.Context, route domain.Route, m domain.Multiplier, now time.Time) ([]string, error) {
	return r.collectIDs(ctx, `UPDATE flights
		SET current_price = (base_price * $3 + 5000) / 10000, last_price_update = $4, updated_at = now()
		WHERE departure_city=$1 AND arrival_city=$2 AND current_price = base_price
		RETURNING flight_id`, route.From, route.To, int64(m), now)
}

func (r *PGFlightRepository) Upsert(ctx context.Context, flights []domain.FlightPrice) error {
	for _, f := range flights {
		if _, err := r.db.Exec(ctx, `INSERT INTO flights (flight_id, airline, departure_city, arrival_city, base_price, current_price, last_price_update)
			VALUES ($1, $2, $3, $4, $5, $5, $6)
			ON CONFLICT (flight_id) DO UPDATE SET airline = EXCLUDED.airline, departure_city = EXCLUDED.departure_city,
				arrival_city = EXCLUDED.arrival_city, base_price = EXCLUDED.base_price, current_price = EXCLUDED.base_price,
				last_price_update = EXCLUDED.last_price_update, updated_at = now()`,
			f.FlightID, f.Airline, f.Route.From, f.Route.To, f.BasePrice, f.LastPriceUpdate); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGFlightRepository) collectIDs(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
