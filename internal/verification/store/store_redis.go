package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"donorprofile/pkg/platform/sentinel"
)

var (
	redisOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "donorprofile_session_store_redis_duration_ms",
		Help:    "Latency of session store Redis operations in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	}, []string{"op"})
)

const (
	// Redis key prefix for session records
	sessionKeyPrefix = "session:"
)

// RedisStore keeps session records in Redis so several instances can share
// them. Each write resets the record TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisStoreOption configures a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithRedisTTL sets the idle expiry applied on each write.
func WithRedisTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	defer observe("get", time.Now())
	b, err := s.client.Get(ctx, sessionKeyPrefix+recordKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w: %w", sentinel.ErrUnavailable, err)
	}
	return b, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, key string, value []byte) error {
	defer observe("set", time.Now())
	if err := s.client.Set(ctx, sessionKeyPrefix+recordKey(sessionID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	defer observe("delete", time.Now())
	if err := s.client.Del(ctx, sessionKeyPrefix+recordKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func observe(op string, start time.Time) {
	redisOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
