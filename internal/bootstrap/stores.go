package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Domenick1991/surgefare/config"
	"github.com/Domenick1991/surgefare/internal/cache"
	"github.com/Domenick1991/surgefare/internal/repository"
	"github.com/Domenick1991/surgefare/internal/seed"
	"github.com/Domenick1991/surgefare/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Stores is the storage wiring shared by the binaries.
type Stores struct {
	Flights  repository.FlightRepository
	Searches repository.SearchEventRepository
	Wallets  repository.WalletRepository
	Bookings repository.BookingRepository
	// Cache is nil when no Redis address is configured.
	Cache flights.RouteCache
	Pool  *pgxpool.Pool

	redis *cache.RedisCache
}

// OpenStores connects the configured backends. The memory driver is seeded
// with a fresh flight catalogue.
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	s := &Stores{}

	switch cfg.Database.Driver {
	case "memory":
		mem := repository.NewMemoryStore()
		s.Flights, s.Searches, s.Wallets, s.Bookings = mem.Flights(), mem.Searches(), mem.Wallets(), mem.Bookings()
		catalogue := seed.Flights(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)), seed.DefaultFlightCount, time.Now().UTC())
		if err := s.Flights.Upsert(ctx, catalogue); err != nil {
			return nil, fmt.Errorf("seed flights: %w", err)
		}
		log.Info("using in-memory store", zap.Int("flights", len(catalogue)))
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		s.Pool = pool
		s.Flights = repository.NewFlightRepository(pool)
		s.Searches = repository.NewSearchEventRepository(pool)
		s.Wallets = repository.NewWalletRepository(pool)
		s.Bookings = repository.NewBookingRepository(pool)
	}

	if cfg.Redis.Addr != "" {
		s.redis = cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
		if err := s.redis.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		s.Cache = s.redis
	}

	if cfg.Pricing.TrackerBackend == "redis" {
		if s.redis == nil {
			s.Close()
			return nil, errors.New("pricing.tracker_backend redis requires redis.addr")
		}
		s.Searches = cache.NewRedisSearchLog(s.redis.Client(), cfg.Pricing.SearchRetention())
		log.Info("search log backed by redis")
	}

	return s, nil
}

func (s *Stores) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}
