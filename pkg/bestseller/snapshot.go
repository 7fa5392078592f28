package bestseller

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storeline/bestsellers/pkg/cache"
	"github.com/storeline/bestsellers/pkg/rank"
	"github.com/storeline/bestsellers/pkg/segment"
	"github.com/storeline/bestsellers/pkg/shop"
)

var (
	snapshotBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bestsellers_snapshot_builds_total",
		Help: "Total snapshot build runs by outcome",
	}, []string{"status"}) // "ok", "error", "unauthorized"

	snapshotBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bestsellers_snapshot_build_duration_seconds",
		Help:    "Duration of a full snapshot build run",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})
)

// SnapshotSummary reports what a snapshot build run produced.
type SnapshotSummary struct {
	OK           bool      `json:"ok"`
	At           time.Time `json:"snapshot_at"`
	Window       string    `json:"window"`
	Combinations []string  `json:"combinations"`
	Limit        int       `json:"limit"`
}

// Snapshot precomputes bestseller lists for every combination of the segment
// vocabulary (the power set, including "all") over the fixed rolling window
// and writes them to the snapshot layer. The order window is fetched from
// upstream exactly once; each combination reuses the materialized order set,
// so cost is one full order scan plus one resolver call per combination.
//
// The secret check happens before anything else; a mismatch, or a missing
// secret on either side, returns ErrUnauthorized with zero side effects.
// Any upstream failure aborts the whole run.
func (s *Service) Snapshot(ctx context.Context, secret string, limit int) (SnapshotSummary, error) {
	if s.cfg.SnapshotSecret == "" || secret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.SnapshotSecret)) != 1 {
		snapshotBuildsTotal.WithLabelValues("unauthorized").Inc()
		return SnapshotSummary{}, ErrUnauthorized
	}

	if limit <= 0 {
		limit = s.cfg.SnapshotLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	start := time.Now()
	window := shop.LastDays(s.cfg.WindowDays)

	orders, pages, err := s.shop.FetchOrders(ctx, window, s.cfg.FinancialStatus)
	if err != nil {
		snapshotBuildsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("window", window.String()).Msg("Snapshot build aborted: order fetch failed")
		return SnapshotSummary{}, err
	}

	combos := powerSet(segment.Vocabulary())
	labels := make([]string, 0, len(combos))

	for _, set := range combos {
		totals, _ := rank.Aggregate(orders, set, nil)
		ids := totals.Top(limit)

		handles, err := s.shop.ResolveHandles(ctx, ids)
		if err != nil {
			snapshotBuildsTotal.WithLabelValues("error").Inc()
			s.logger.Error().
				Err(err).
				Str("segments", set.Canonical()).
				Msg("Snapshot build aborted: handle resolution failed")
			return SnapshotSummary{}, err
		}

		list := rank.Build(ids, handles, window, set, limit)
		key := cache.Key{Segments: set, Limit: limit}
		if err := s.cache.WriteSnapshot(ctx, key, list); err != nil {
			snapshotBuildsTotal.WithLabelValues("error").Inc()
			s.logger.Error().
				Err(err).
				Str("segments", set.Canonical()).
				Msg("Snapshot build aborted: snapshot write failed")
			return SnapshotSummary{}, err
		}

		labels = append(labels, set.Canonical())
	}

	snapshotBuildsTotal.WithLabelValues("ok").Inc()
	snapshotBuildDuration.Observe(time.Since(start).Seconds())

	s.logger.Info().
		Int("orders", len(orders)).
		Int("pages", pages).
		Int("combinations", len(labels)).
		Str("window", window.String()).
		Dur("duration", time.Since(start)).
		Msg("Snapshot build complete")

	return SnapshotSummary{
		OK:           true,
		At:           time.Now().UTC(),
		Window:       window.String(),
		Combinations: labels,
		Limit:        limit,
	}, nil
}

// powerSet enumerates every subset of the vocabulary, the empty ("all")
// subset first, in a deterministic order.
func powerSet(vocab []segment.Segment) []segment.Set {
	sets := make([]segment.Set, 0, 1<<len(vocab))
	for mask := 0; mask < 1<<len(vocab); mask++ {
		var members []segment.Segment
		for i, s := range vocab {
			if mask&(1<<i) != 0 {
				members = append(members, s)
			}
		}
		set, _ := segment.NewSet(members...)
		sets = append(sets, set)
	}
	return sets
}
