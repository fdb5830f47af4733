package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var delBom = domain.Route{From: "DEL", To: "BOM"}

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, store.Flights().Upsert(context.Background(), []domain.FlightPrice{
		{FlightID: "IN1000", Airline: "IndiGo", Route: delBom, BasePrice: 2500},
		{FlightID: "AI1001", Airline: "Air India", Route: delBom, BasePrice: 2005},
		{FlightID: "SP1002", Airline: "SpiceJet", Route: domain.Route{From: "BLR", To: "HYD"}, BasePrice: 2100},
	}))
	return store
}

func TestMemoryFlights_EscalateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	flights := store.Flights()
	now := time.Now()

	ids, err := flights.EscalateRoute(ctx, delBom, domain.NewMultiplier(1.10), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"AI1001", "IN1000"}, ids)

	ids, err = flights.EscalateRoute(ctx, delBom, domain.NewMultiplier(1.10), now.Add(time.Second))
	require.NoError(t, err)
	assert.Empty(t, ids)

	f, err := flights.GetByID(ctx, "IN1000")
	require.NoError(t, err)
	assert.Equal(t, int64(2750), f.CurrentPrice)
	assert.Equal(t, now, f.LastPriceUpdate)

	other, err := flights.GetByID(ctx, "SP1002")
	require.NoError(t, err)
	assert.Equal(t, domain.SurgeStateNormal, other.State())
}

func TestMemoryFlights_ConcurrentEscalationAppliesOnce(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	flights := store.Flights()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = flights.EscalateRoute(ctx, delBom, domain.NewMultiplier(1.10), time.Now())
		}()
	}
	wg.Wait()

	f, err := flights.GetByID(ctx, "AI1001")
	require.NoError(t, err)
	assert.Equal(t, int64(2206), f.CurrentPrice)
}

func TestMemoryFlights_ResetExpiredSurges(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	flights := store.Flights()
	surgedAt := time.Now().Add(-11 * time.Minute)

	_, err := flights.EscalateRoute(ctx, delBom, domain.NewMultiplier(1.10), surgedAt)
	require.NoError(t, err)

	ids, err := flights.ResetExpiredSurges(ctx, delBom, surgedAt.Add(-time.Second), time.Now())
	require.NoError(t, err)
	assert.Empty(t, ids, "surge younger than the idle cutoff stays")

	now := time.Now()
	ids, err = flights.ResetExpiredSurges(ctx, delBom, now.Add(-10*time.Minute), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"AI1001", "IN1000"}, ids)

	f, err := flights.GetByID(ctx, "IN1000")
	require.NoError(t, err)
	assert.Equal(t, f.BasePrice, f.CurrentPrice)
	assert.Equal(t, now, f.LastPriceUpdate)

	ids, err = flights.ResetAllExpiredSurges(ctx, now, now)
	require.NoError(t, err)
	assert.Empty(t, ids, "normal flights are never reset")
}

func TestMemoryFlights_ListByRoute(t *testing.T) {
	store := seededStore(t)

	flights, err := store.Flights().ListByRoute(context.Background(), delBom, 1)
	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "AI1001", flights[0].FlightID)

	flights, err = store.Flights().ListByRoute(context.Background(), domain.Route{From: "CCU", To: "AMD"}, 10)
	require.NoError(t, err)
	assert.NotNil(t, flights)
	assert.Empty(t, flights)
}

func TestMemorySearches(t *testing.T) {
	ctx := context.Background()
	searches := NewMemoryStore().Searches()
	now := time.Now()

	for i, ts := range []time.Time{now.Add(-6 * time.Minute), now.Add(-5 * time.Minute), now.Add(-time.Minute), now} {
		require.NoError(t, searches.Append(ctx, &domain.SearchEvent{ID: string(rune('a' + i)), RouteKey: "DEL-BOM", UserID: "u1", Timestamp: ts}))
	}
	require.NoError(t, searches.Append(ctx, &domain.SearchEvent{ID: "z", RouteKey: "DEL-BOM", UserID: "u2", Timestamp: now}))

	count, err := searches.CountSince(ctx, "DEL-BOM", "u1", now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, count, "window start is inclusive")

	deleted, err := searches.DeleteBefore(ctx, now.Add(-2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err = searches.CountSince(ctx, "DEL-BOM", "u1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryWallets_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	wallets := NewMemoryStore().Wallets()
	_, err := wallets.Ensure(ctx, "u1", 10000)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := wallets.Debit(ctx, "u1", 3000, "concurrent")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if domain.IsInsufficientFunds(err) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 7, rejected)

	w, err := wallets.Ensure(ctx, "u1", 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), w.Balance)

	entries, err := wallets.Entries(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestMemoryWallets_CreditAndEntries(t *testing.T) {
	ctx := context.Background()
	wallets := NewMemoryStore().Wallets()

	_, err := wallets.Credit(ctx, "nobody", 10, "x")
	assert.True(t, domain.IsNotFound(err))

	w, err := wallets.Ensure(ctx, "u1", 50000)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), w.Balance)

	balance, err := wallets.Debit(ctx, "u1", 2500, "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(47500), balance)

	balance, err = wallets.Credit(ctx, "u1", 2500, "compensation:b1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), balance)

	entries, err := wallets.Entries(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.WalletEntryCredit, entries[0].Kind)
	assert.Equal(t, "compensation:b1", entries[0].Reference)
	assert.Equal(t, domain.WalletEntryDebit, entries[1].Kind)
	assert.Equal(t, int64(47500), entries[1].BalanceAfter)
}

func TestMemoryBookings(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	bookings := store.Bookings()
	first := time.Now().Add(-time.Hour)

	require.NoError(t, bookings.Create(ctx, &domain.Booking{BookingID: "b1", PNR: "ABC234", UserID: "u1", FlightID: "IN1000", BookedAt: first}))
	require.NoError(t, bookings.Create(ctx, &domain.Booking{BookingID: "b2", PNR: "XYZ789", UserID: "u1", FlightID: "AI1001", BookedAt: first.Add(time.Minute)}))

	err := bookings.Create(ctx, &domain.Booking{BookingID: "b3", PNR: "ABC234", UserID: "u2", FlightID: "IN1000"})
	assert.True(t, domain.IsConflict(err))

	err = bookings.Create(ctx, &domain.Booking{BookingID: "b4", PNR: "QQQ222", UserID: "u2", FlightID: "NOPE"})
	assert.True(t, domain.IsNotFound(err))

	list, err := bookings.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b2", list[0].BookingID)

	b, err := bookings.GetByPNR(ctx, "ABC234")
	require.NoError(t, err)
	assert.Equal(t, "b1", b.BookingID)

	_, err = bookings.GetByID(ctx, "b3")
	assert.True(t, domain.IsNotFound(err))
}
