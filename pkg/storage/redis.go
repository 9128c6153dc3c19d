package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists snapshots in Redis under "loadcast:forecast:{zone}",
// letting several forecaster instances (or a forecaster/API split) share the
// latest forecasts. Entries expire after the configured TTL so consumers
// never read a forecast from a dead producer forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
// A ttl of 0 defaults to 6 hours, a sensible bound for day-ahead snapshots
// refreshed hourly.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("redis database number must be >= 0")
	}
	if ttl == 0 {
		ttl = 6 * time.Hour
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func snapshotKey(zone string) string {
	return "loadcast:forecast:" + zone
}

// Put stores a snapshot with TTL-based expiration.
func (r *RedisStore) Put(ctx context.Context, s Snapshot) error {
	if s.Zone == "" {
		return errors.New("snapshot zone cannot be empty")
	}
	for _, c := range s.Zone {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '-' || c == '_') {
			return fmt.Errorf("invalid zone %q: only alphanumeric, hyphens, and underscores allowed", s.Zone)
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(s.Zone), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot in redis: %w", err)
	}
	return nil
}

// GetLatest returns the stored snapshot for a zone. A missing key is not an
// error; it is reported through found=false.
func (r *RedisStore) GetLatest(ctx context.Context, zone string) (Snapshot, bool, error) {
	if zone == "" {
		return Snapshot{}, false, errors.New("zone required")
	}

	data, err := r.client.Get(ctx, snapshotKey(zone)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("get snapshot from redis: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snapshot, true, nil
}

// Ping checks the Redis connection health.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
