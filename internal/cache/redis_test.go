package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var delBom = domain.Route{From: "DEL", To: "BOM"}

func TestRedisCache_RouteFlights(t *testing.T) {
	ctx := context.Background()
	db, mockRedis := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, 30*time.Second)

	flights := []domain.FlightPrice{{FlightID: "IN1000", Airline: "IndiGo", Route: delBom, BasePrice: 2500, CurrentPrice: 2750}}
	payload, err := json.Marshal(flights)
	require.NoError(t, err)

	mockRedis.ExpectGet("cache:flights:DEL-BOM").RedisNil()
	mockRedis.ExpectSet("cache:flights:DEL-BOM", payload, 30*time.Second).SetVal("OK")
	mockRedis.ExpectGet("cache:flights:DEL-BOM").SetVal(string(payload))
	mockRedis.ExpectDel("cache:flights:DEL-BOM").SetVal(1)

	cached, err := c.GetRouteFlights(ctx, delBom)
	require.NoError(t, err)
	assert.Nil(t, cached)

	require.NoError(t, c.SetRouteFlights(ctx, delBom, flights))

	cached, err = c.GetRouteFlights(ctx, delBom)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, int64(2750), cached[0].CurrentPrice)
	assert.Equal(t, domain.SurgeStateSurged, cached[0].State())

	require.NoError(t, c.InvalidateRoute(ctx, delBom))

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRedisCache_GetRouteFlightsError(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Second)

	mockRedis.ExpectGet("cache:flights:DEL-BOM").SetErr(errors.New("connection refused"))

	_, err := c.GetRouteFlights(context.Background(), delBom)
	assert.EqualError(t, err, "connection refused")
}

func TestRedisSearchLog(t *testing.T) {
	ctx := context.Background()
	db, mockRedis := redismock.NewClientMock()
	log := NewRedisSearchLog(db, 24*time.Hour)

	now := time.UnixMilli(1_700_000_000_000)
	since := now.Add(-5 * time.Minute)
	key := "search:DEL-BOM:u1"

	mockRedis.ExpectZAdd(key, redis.Z{Score: float64(now.UnixMilli()), Member: "evt-1"}).SetVal(1)
	mockRedis.ExpectExpire(key, 24*time.Hour).SetVal(true)
	mockRedis.ExpectZCount(key, strconv.FormatInt(since.UnixMilli(), 10), "+inf").SetVal(3)
	mockRedis.ExpectScan(0, "search:*", 100).SetVal([]string{key, "search:BLR-HYD:u2"}, 0)
	mockRedis.ExpectZRemRangeByScore(key, "-inf", "("+strconv.FormatInt(since.UnixMilli(), 10)).SetVal(2)
	mockRedis.ExpectZRemRangeByScore("search:BLR-HYD:u2", "-inf", "("+strconv.FormatInt(since.UnixMilli(), 10)).SetVal(1)

	require.NoError(t, log.Append(ctx, &domain.SearchEvent{ID: "evt-1", RouteKey: "DEL-BOM", UserID: "u1", Timestamp: now}))

	count, err := log.CountSince(ctx, "DEL-BOM", "u1", since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	deleted, err := log.DeleteBefore(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
