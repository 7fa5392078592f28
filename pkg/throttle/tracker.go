package throttle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for call-limit tracking.
var (
	callsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shop_calls_remaining",
		Help: "Remaining calls in the upstream API call-limit bucket",
	})

	throttleBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_throttle_blocks_total",
		Help: "Total number of requests blocked by the call-limit gate",
	})

	throttleWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_throttle_waits_total",
		Help: "Total number of requests delayed to let the call bucket drain",
	})
)

// HeaderCallLimit is the upstream response header carrying the bucket state.
const HeaderCallLimit = "X-Api-Call-Limit"

// throttleDelay is the pause applied in the warning band.
const throttleDelay = 500 * time.Millisecond

// Tracker gates upstream requests on the shared call-limit bucket state.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a call-limit tracker backed by the given Redis client.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the shared bucket state from Redis. When no state exists
// (or it has expired) a wide-open default is returned: optimism is correct
// here, the first response will correct it.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	data, err := t.redis.Get(ctx, RedisKeyState).Bytes()
	if err == redis.Nil {
		return &State{UpdatedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get throttle state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse throttle state: %w", err)
	}
	if state.IsStale() {
		return &State{UpdatedAt: time.Now()}, nil
	}
	return &state, nil
}

// UpdateFromHeaders parses the call-limit header of an upstream response and
// stores the bucket state in Redis. Responses without the header are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	raw := headers.Get(HeaderCallLimit)
	if raw == "" {
		return nil
	}

	used, max, err := ParseCallLimit(raw)
	if err != nil {
		return err
	}

	state := &State{
		Used:      used,
		Max:       max,
		UpdatedAt: time.Now(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal throttle state: %w", err)
	}
	if err := t.redis.Set(ctx, RedisKeyState, data, stateMaxAge).Err(); err != nil {
		return fmt.Errorf("store throttle state: %w", err)
	}

	callsRemaining.Set(float64(state.Remaining()))

	if state.NeedsBlock() {
		t.logger.Warn().
			Int("used", used).
			Int("max", max).
			Msg("Upstream call limit critical")
	} else {
		t.logger.Debug().
			Int("used", used).
			Int("max", max).
			Msg("Upstream call limit updated")
	}
	return nil
}

// ShouldAllowRequest checks whether an upstream request may proceed. In the
// warning band it sleeps briefly to let the bucket drain; at the critical
// threshold it refuses the request.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get throttle state: %w", err)
	}

	if state.NeedsBlock() {
		t.logger.Warn().
			Int("remaining", state.Remaining()).
			Msg("Call limit critical, blocking request")
		throttleBlocksTotal.Inc()
		return false, nil
	}

	if state.NeedsThrottling() {
		t.logger.Debug().
			Int("remaining", state.Remaining()).
			Msg("Call limit low, delaying request")
		throttleWaitsTotal.Inc()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(throttleDelay):
		}
	}

	return true, nil
}
