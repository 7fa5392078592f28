package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Shared layer defaults.
const (
	// DefaultSharedFreshFor is how long a shared entry counts as fresh.
	DefaultSharedFreshFor = 30 * time.Minute

	// DefaultSharedRetention is the Redis TTL. It deliberately outlives the
	// freshness bound so logically expired entries remain readable for the
	// stale-on-error path.
	DefaultSharedRetention = 24 * time.Hour
)

// Shared is the cross-process cache layer backed by Redis. Store failures are
// logged and reported as misses; nothing here ever propagates an error to the
// query path.
type Shared struct {
	redis     *redis.Client
	freshFor  time.Duration
	retention time.Duration
	logger    zerolog.Logger
}

// NewShared creates the shared layer. Non-positive durations fall back to the
// defaults; a retention shorter than the freshness bound is stretched to
// cover it.
func NewShared(redisClient *redis.Client, freshFor, retention time.Duration) *Shared {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if freshFor <= 0 {
		freshFor = DefaultSharedFreshFor
	}
	if retention <= 0 {
		retention = DefaultSharedRetention
	}
	if retention < freshFor {
		retention = freshFor * 2
	}
	return &Shared{
		redis:     redisClient,
		freshFor:  freshFor,
		retention: retention,
		logger:    log.With().Str("component", "cache-shared").Logger(),
	}
}

// Get returns the entry for key if it exists and is still fresh.
func (s *Shared) Get(ctx context.Context, key string) (Entry, bool) {
	e, ok := s.load(ctx, key)
	if !ok || !e.IsFresh() {
		return Entry{}, false
	}
	return e, true
}

// GetStale returns the entry for key regardless of freshness, as long as the
// retention TTL has not removed it.
func (s *Shared) GetStale(ctx context.Context, key string) (Entry, bool) {
	return s.load(ctx, key)
}

// Set stores an entry under key with the retention TTL, stamping the
// freshness bound if the caller has not. The write is best-effort: the error
// is returned for logging but safe to ignore.
func (s *Shared) Set(ctx context.Context, key string, e Entry) error {
	if e.FreshUntil.IsZero() {
		e.FreshUntil = e.StoredAt.Add(s.freshFor)
	}

	data, err := Encode(e)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return err
	}
	if err := s.redis.Set(ctx, key, data, s.retention).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Shared cache write failed")
		return err
	}
	return nil
}

func (s *Shared) load(ctx context.Context, key string) (Entry, bool) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Entry{}, false
	}
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Shared cache read failed")
		return Entry{}, false
	}

	e, err := Decode(data)
	if err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("Malformed shared cache payload")
		return Entry{}, false
	}
	return e, true
}
