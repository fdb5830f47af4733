package pricing

import (
	"context"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/repository"
	"github.com/google/uuid"
)

// Tracker records route searches and counts them per user over a sliding
// window.
type Tracker struct {
	events    repository.SearchEventRepository
	window    time.Duration
	retention time.Duration
	newID     func() string
}

func NewTracker(events repository.SearchEventRepository, window, retention time.Duration) *Tracker {
	if retention < window {
		retention = window
	}
	return &Tracker{
		events:    events,
		window:    window,
		retention: retention,
		newID:     uuid.NewString,
	}
}

func (t *Tracker) Window() time.Duration {
	return t.window
}

// Record appends one search event. It returns only after the event is stored,
// so a following CountSince on the same store observes it.
func (t *Tracker) Record(ctx context.Context, route domain.Route, userID string, now time.Time) (string, error) {
	event := &domain.SearchEvent{
		ID:        t.newID(),
		RouteKey:  route.Key(),
		UserID:    userID,
		Timestamp: now,
	}
	if err := t.events.Append(ctx, event); err != nil {
		return "", domain.DependencyError{Dependency: "search log", Err: err}
	}
	return event.ID, nil
}

func (t *Tracker) CountSince(ctx context.Context, route domain.Route, userID string, windowStart time.Time) (int, error) {
	count, err := t.events.CountSince(ctx, route.Key(), userID, windowStart)
	if err != nil {
		return 0, domain.DependencyError{Dependency: "search log", Err: err}
	}
	return count, nil
}

func (t *Tracker) WindowStart(now time.Time) time.Time {
	return now.Add(-t.window)
}

// Prune deletes events older than the retention period.
func (t *Tracker) Prune(ctx context.Context, now time.Time) (int64, error) {
	deleted, err := t.events.DeleteBefore(ctx, now.Add(-t.retention))
	if err != nil {
		return 0, domain.DependencyError{Dependency: "search log", Err: err}
	}
	return deleted, nil
}
