package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Snapshot is the precomputed-list layer. Entries are written by the snapshot
// builder for every segment combination over the fixed rolling window and
// carry no expiry: the reader trusts whatever the last build produced, and
// the builder alone is responsible for freshness.
type Snapshot struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewSnapshot creates the snapshot layer.
func NewSnapshot(redisClient *redis.Client) *Snapshot {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Snapshot{
		redis:  redisClient,
		logger: log.With().Str("component", "cache-snapshot").Logger(),
	}
}

// Get returns the snapshot entry for key. Store or decode failures are a
// miss.
func (s *Snapshot) Get(ctx context.Context, key string) (Entry, bool) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Entry{}, false
	}
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Snapshot read failed")
		return Entry{}, false
	}

	e, err := Decode(data)
	if err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Malformed snapshot payload")
		return Entry{}, false
	}
	return e, true
}

// Set stores a snapshot entry without expiry. Unlike shared-layer writes this
// error matters: the builder reports failed combinations.
func (s *Snapshot) Set(ctx context.Context, key string, e Entry) error {
	data, err := Encode(e)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return err
	}
	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return err
	}
	return nil
}
