// Package throttle implements upstream call-limit tracking and request gating.
// Commerce platforms advertise a leaky-bucket budget via the X-Api-Call-Limit
// header ("32/40"); the tracker mirrors that budget into Redis so every process
// talking to the same shop shares one view of the remaining headroom.
package throttle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RedisKeyState is the Redis key holding the shared call-limit state.
const RedisKeyState = "bestsellers:throttle:state"

// Thresholds for gating decisions, expressed as remaining calls in the bucket.
const (
	// CriticalRemaining blocks requests outright: the next call would likely
	// be answered with 429 and burn a retry.
	CriticalRemaining = 2

	// WarningRemaining slows the caller down to let the bucket drain.
	WarningRemaining = 8
)

// stateMaxAge bounds how long a Redis snapshot of the bucket is trusted.
// The bucket drains continuously upstream, so old data is useless.
const stateMaxAge = 30 * time.Second

// State is the shared view of the upstream call-limit bucket.
type State struct {
	// Used is the number of calls currently counted against the bucket.
	Used int `json:"used"`

	// Max is the bucket capacity.
	Max int `json:"max"`

	// UpdatedAt is when this state was read from a response header.
	UpdatedAt time.Time `json:"updated_at"`
}

// Remaining returns the headroom left in the bucket.
func (s *State) Remaining() int {
	r := s.Max - s.Used
	if r < 0 {
		return 0
	}
	return r
}

// IsStale reports whether the state is too old to act on.
func (s *State) IsStale() bool {
	return time.Since(s.UpdatedAt) > stateMaxAge
}

// NeedsBlock reports whether requests should be held back entirely.
func (s *State) NeedsBlock() bool {
	return s.Max > 0 && s.Remaining() < CriticalRemaining
}

// NeedsThrottling reports whether requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.Max > 0 && !s.NeedsBlock() && s.Remaining() < WarningRemaining
}

// ParseCallLimit parses an "X-Api-Call-Limit" header value of the form
// "used/max".
func ParseCallLimit(v string) (used, max int, err error) {
	parts := strings.SplitN(strings.TrimSpace(v), "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed call limit %q", v)
	}
	used, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse call limit used: %w", err)
	}
	max, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse call limit max: %w", err)
	}
	return used, max, nil
}
