package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
)

// SearchEventRepository is the append-only search log read by the pressure
// tracker.
type SearchEventRepository interface {
	Append(ctx context.Context, event *domain.SearchEvent) error
	CountSince(ctx context.Context, routeKey, userID string, since time.Time) (int, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PGSearchEventRepository struct {
	db DB
}

func NewSearchEventRepository(db DB) SearchEventRepository {
	return &PGSearchEventRepository{db: db}
}

func (r *PGSearchEventRepository) Append(ctx context.Context, event *domain.SearchEvent) error {
	_, err := r.db.Exec(ctx, `INSERT INTO search_events (id, route_key, user_id, ts) VALUES ($1, $2, $3, $4)`,
		event.ID, event.RouteKey, event.UserID, event.Timestamp)
	return err
}

func (r *PGSearchEventRepository) CountSince(ctx context.Context, routeKey, userID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM search_events WHERE route_key=$1 AND user_id=$2 AND ts >= $3`,
		routeKey, userID, since).Scan(&count)
	return count, err
}

func (r *PGSearchEventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM search_events WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ SearchEventRepository = (*PGSearchEventRepository)(nil)
