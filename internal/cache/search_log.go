package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/Domenick1991/surgefare/internal/repository"
	"github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "search:"

// RedisSearchLog keeps one sorted set per (route, user), scored by event time
// in milliseconds. Keys expire after the retention period of inactivity.
type RedisSearchLog struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisSearchLog(client *redis.Client, retention time.Duration) *RedisSearchLog {
	return &RedisSearchLog{client: client, retention: retention}
}

func (l *RedisSearchLog) Append(ctx context.Context, event *domain.SearchEvent) error {
	key := searchKey(event.RouteKey, event.UserID)
	if err := l.client.ZAdd(ctx, key, redis.Z{Score: float64(event.Timestamp.UnixMilli()), Member: event.ID}).Err(); err != nil {
		return err
	}
	return l.client.Expire(ctx, key, l.retention).Err()
}

func (l *RedisSearchLog) CountSince(ctx context.Context, routeKey, userID string, since time.Time) (int, error) {
	n, err := l.client.ZCount(ctx, searchKey(routeKey, userID), strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (l *RedisSearchLog) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	max := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	var (
		deleted int64
		cursor  uint64
	)
	for {
		keys, next, err := l.client.Scan(ctx, cursor, searchKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		for _, key := range keys {
			n, err := l.client.ZRemRangeByScore(ctx, key, "-inf", max).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

func searchKey(routeKey, userID string) string {
	return fmt.Sprintf("%s%s:%s", searchKeyPrefix, routeKey, userID)
}

var _ repository.SearchEventRepository = (*RedisSearchLog)(nil)
