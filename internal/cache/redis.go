package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/surgefare/config"
	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds short-lived route listings. Entries are dropped whenever a
// search changes a price on the route, so the TTL only bounds staleness from
// writers in other processes.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), flightsTTL)
}

func NewRedisCacheWithClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetRouteFlights returns nil, nil on a cache miss.
func (c *RedisCache) GetRouteFlights(ctx context.Context, route domain.Route) ([]domain.FlightPrice, error) {
	data, err := c.client.Get(ctx, routeFlightsKey(route)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.FlightPrice
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetRouteFlights(ctx context.Context, route domain.Route, flights []domain.FlightPrice) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routeFlightsKey(route), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateRoute(ctx context.Context, route domain.Route) error {
	return c.client.Del(ctx, routeFlightsKey(route)).Err()
}

func routeFlightsKey(route domain.Route) string {
	return fmt.Sprintf("cache:flights:%s", route.Key())
}
