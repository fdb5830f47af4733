package domain

import "time"

// SearchEvent is an append-only record of one route search by one user.
type SearchEvent struct {
	ID        string
	RouteKey  string
	UserID    string
	Timestamp time.Time
}
