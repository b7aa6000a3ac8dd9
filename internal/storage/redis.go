package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore handles scan deduplication marks and per-user usage counters.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MarkScanned sets a key with a TTL to prevent re-scanning a keyword.
func (s *RedisStore) MarkScanned(ctx context.Context, keyword string, ttl time.Duration) error {
	key := fmt.Sprintf("scanned:%s", keyword)
	return s.client.Set(ctx, key, "1", ttl).Err()
}

// IsRecentlyScanned checks whether a keyword was scanned within the TTL.
func (s *RedisStore) IsRecentlyScanned(ctx context.Context, keyword string) (bool, error) {
	key := fmt.Sprintf("scanned:%s", keyword)
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// IncrementUsage bumps a user's daily counter for a feature and returns the
// new total. Counters roll over at UTC midnight via key naming, with the TTL
// as a sweep for abandoned keys.
func (s *RedisStore) IncrementUsage(ctx context.Context, userID, feature string) (int64, error) {
	key := usageKey(userID, feature)
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	s.client.Expire(ctx, key, 48*time.Hour)
	return count, nil
}

// Usage reads a user's current daily counter without changing it.
func (s *RedisStore) Usage(ctx context.Context, userID, feature string) (int64, error) {
	count, err := s.client.Get(ctx, usageKey(userID, feature)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func usageKey(userID, feature string) string {
	return fmt.Sprintf("usage:%s:%s:%s", userID, feature, time.Now().UTC().Format("2006-01-02"))
}
