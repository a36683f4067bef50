package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"siteguard/internal/domain"
)

// RedisStore handles interactions with Redis for scan deduplication and
// live progress.
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

// MarkAsScanned sets a key with a TTL so repeat scan requests for the same
// target can be skipped unless forced.
func (s *RedisStore) MarkAsScanned(ctx context.Context, targetURL string, ttl time.Duration) error {
	key := fmt.Sprintf("scanned:%s", targetURL)
	return s.client.Set(ctx, key, "1", ttl).Err()
}

// IsRecentlyScanned checks if a target has been scanned within the TTL.
func (s *RedisStore) IsRecentlyScanned(ctx context.Context, targetURL string) (bool, error) {
	key := fmt.Sprintf("scanned:%s", targetURL)
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// SetProgress publishes the latest progress snapshot for a running scan.
// Keys expire on their own so dead runs don't leave stale entries.
func (s *RedisStore) SetProgress(ctx context.Context, runID string, p domain.Progress) error {
	key := fmt.Sprintf("progress:%s", runID)
	fields := map[string]interface{}{
		"scanned":          p.Scanned,
		"discovered":       p.Discovered,
		"total_estimate":   p.TotalEstimate,
		"avg_page_time_ms": p.AvgPageMS,
	}
	if p.ETASeconds != nil {
		fields["eta_seconds"] = *p.ETASeconds
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, time.Hour).Err()
}

// GetProgress reads the latest progress snapshot for a run, or nil when no
// snapshot exists.
func (s *RedisStore) GetProgress(ctx context.Context, runID string) (map[string]string, error) {
	key := fmt.Sprintf("progress:%s", runID)
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return vals, nil
}
