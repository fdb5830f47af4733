package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
)

// MemoryStore keeps every table in process memory behind one mutex. Each
// method body is one critical section, which gives the same conditional
// write guarantees as the SQL stores.
type MemoryStore struct {
	mu        sync.Mutex
	flights   map[string]domain.FlightPrice
	searches  []domain.SearchEvent
	wallets   map[string]domain.Wallet
	entries   []domain.WalletEntry
	nextEntry int64
	bookings  map[string]domain.Booking
	pnrs      map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flights:  make(map[string]domain.FlightPrice),
		wallets:  make(map[string]domain.Wallet),
		bookings: make(map[string]domain.Booking),
		pnrs:     make(map[string]string),
	}
}

func (s *MemoryStore) Flights() FlightRepository       { return memFlights{s} }
func (s *MemoryStore) Searches() SearchEventRepository { return memSearches{s} }
func (s *MemoryStore) Wallets() WalletRepository       { return memWallets{s} }
func (s *MemoryStore) Bookings() BookingRepository     { return memBookings{s} }

type memFlights struct{ s *MemoryStore }

func (m memFlights) ListByRoute(_ context.Context, route domain.Route, limit int) ([]domain.FlightPrice, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	flights := make([]domain.FlightPrice, 0)
	for _, f := range m.s.flights {
		if f.Route == route {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(i, j int) bool { return flights[i].FlightID < flights[j].FlightID })
	if limit > 0 && len(flights) > limit {
		flights = flights[:limit]
	}
	return flights, nil
}

func (m memFlights) GetByID(_ context.Context, flightID string) (*domain.FlightPrice, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	f, ok := m.s.flights[flightID]
	if !ok {
		return nil, domain.NotFoundError{Resource: "flight", ID: flightID}
	}
	return &f, nil
}

func (m memFlights) ResetExpiredSurges(_ context.Context, route domain.Route, idleBefore, now time.Time) ([]string, error) {
	return m.reset(func(f domain.FlightPrice) bool { return f.Route == route }, idleBefore, now), nil
}

func (m memFlights) ResetAllExpiredSurges(_ context.Context, idleBefore, now time.Time) ([]string, error) {
	return m.reset(func(domain.FlightPrice) bool { return true }, idleBefore, now), nil
}

func (m memFlights) reset(match func(domain.FlightPrice) bool, idleBefore, now time.Time) []string {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var ids []string
	for id, f := range m.s.flights {
		if !match(f) || f.CurrentPrice == f.BasePrice || f.LastPriceUpdate.After(idleBefore) {
			continue
		}
		f.CurrentPrice = f.BasePrice
		f.LastPriceUpdate = now
		f.UpdatedAt = now
		m.s.flights[id] = f
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m memFlights) EscalateRoute(_ context.Context, route domain.Route, mult domain.Multiplier, now time.Time) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var ids []string
	for id, f := range m.s.flights {
		if f.Route != route || f.CurrentPrice != f.BasePrice {
			continue
		}
		f.CurrentPrice = mult.Apply(f.BasePrice)
		f.LastPriceUpdate = now
		f.UpdatedAt = now
		m.s.flights[id] = f
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m memFlights) Upsert(_ context.Context, flights []domain.FlightPrice) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := time.Now().UTC()
	for _, f := range flights {
		f.CurrentPrice = f.BasePrice
		if f.LastPriceUpdate.IsZero() {
			f.LastPriceUpdate = now
		}
		if existing, ok := m.s.flights[f.FlightID]; ok {
			f.CreatedAt = existing.CreatedAt
		} else {
			f.CreatedAt = now
		}
		f.UpdatedAt = now
		m.s.flights[f.FlightID] = f
	}
	return nil
}

type memSearches struct{ s *MemoryStore }

func (m memSearches) Append(_ context.Context, event *domain.SearchEvent) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.s.searches = append(m.s.searches, *event)
	return nil
}

func (m memSearches) CountSince(_ context.Context, routeKey, userID string, since time.Time) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	count := 0
	for _, e := range m.s.searches {
		if e.RouteKey == routeKey && e.UserID == userID && !e.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m memSearches) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	kept := m.s.searches[:0]
	var deleted int64
	for _, e := range m.s.searches {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.s.searches = kept
	return deleted, nil
}

type memWallets struct{ s *MemoryStore }

func (m memWallets) Ensure(_ context.Context, userID string, initial int64) (*domain.Wallet, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	w, ok := m.s.wallets[userID]
	if !ok {
		now := time.Now().UTC()
		w = domain.Wallet{UserID: userID, Balance: initial, CreatedAt: now, UpdatedAt: now}
		m.s.wallets[userID] = w
	}
	return &w, nil
}

func (m memWallets) Debit(_ context.Context, userID string, amount int64, reference string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	w, ok := m.s.wallets[userID]
	if !ok {
		return 0, domain.NotFoundError{Resource: "wallet", ID: userID}
	}
	if w.Balance < amount {
		return 0, domain.InsufficientFundsError{Balance: w.Balance, Required: amount}
	}
	return m.apply(w, domain.WalletEntryDebit, -amount, reference), nil
}

func (m memWallets) Credit(_ context.Context, userID string, amount int64, reference string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	w, ok := m.s.wallets[userID]
	if !ok {
		return 0, domain.NotFoundError{Resource: "wallet", ID: userID}
	}
	return m.apply(w, domain.WalletEntryCredit, amount, reference), nil
}

// apply must be called with the store lock held.
func (m memWallets) apply(w domain.Wallet, kind domain.WalletEntryKind, delta int64, reference string) int64 {
	now := time.Now().UTC()
	w.Balance += delta
	w.UpdatedAt = now
	m.s.wallets[w.UserID] = w

	amount := delta
	if amount < 0 {
		amount = -amount
	}
	m.s.nextEntry++
	m.s.entries = append(m.s.entries, domain.WalletEntry{
		ID:           m.s.nextEntry,
		UserID:       w.UserID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: w.Balance,
		Reference:    reference,
		CreatedAt:    now,
	})
	return w.Balance
}

func (m memWallets) Entries(_ context.Context, userID string, limit int) ([]domain.WalletEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	entries := make([]domain.WalletEntry, 0)
	for i := len(m.s.entries) - 1; i >= 0; i-- {
		if m.s.entries[i].UserID != userID {
			continue
		}
		entries = append(entries, m.s.entries[i])
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}

type memBookings struct{ s *MemoryStore }

func (m memBookings) Create(_ context.Context, booking *domain.Booking) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.pnrs[booking.PNR]; ok {
		return domain.ConflictError{Resource: "booking", Field: "pnr"}
	}
	if _, ok := m.s.bookings[booking.BookingID]; ok {
		return domain.ConflictError{Resource: "booking", Field: "booking_id"}
	}
	if _, ok := m.s.flights[booking.FlightID]; !ok {
		return domain.NotFoundError{Resource: "flight", ID: booking.FlightID}
	}
	m.s.bookings[booking.BookingID] = *booking
	m.s.pnrs[booking.PNR] = booking.BookingID
	return nil
}

func (m memBookings) GetByID(_ context.Context, bookingID string) (*domain.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	b, ok := m.s.bookings[bookingID]
	if !ok {
		return nil, domain.NotFoundError{Resource: "booking"}
	}
	return &b, nil
}

func (m memBookings) GetByPNR(_ context.Context, pnr string) (*domain.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	id, ok := m.s.pnrs[pnr]
	if !ok {
		return nil, domain.NotFoundError{Resource: "booking"}
	}
	b := m.s.bookings[id]
	return &b, nil
}

func (m memBookings) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range m.s.bookings {
		if b.UserID == userID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].BookedAt.Equal(bookings[j].BookedAt) {
			return bookings[i].BookingID > bookings[j].BookingID
		}
		return bookings[i].BookedAt.After(bookings[j].BookedAt)
	})
	return bookings, nil
}

var (
	_ FlightRepository      = memFlights{}
	_ SearchEventRepository = memSearches{}
	_ WalletRepository      = memWallets{}
	_ BookingRepository     = memBookings{}
)
