package cache

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storeline/bestsellers/pkg/rank"
)

// Source tags where a returned list came from.
type Source string

const (
	// SourceSnapshot means the precomputed snapshot layer answered.
	SourceSnapshot Source = "snapshot"

	// SourceMemory means the process-local layer answered.
	SourceMemory Source = "memory"

	// SourceShared means the shared Redis layer answered.
	SourceShared Source = "redis"

	// SourceLive means the full pipeline computed the result.
	SourceLive Source = "live"

	// SourceStale means a logically expired value was served after a
	// pipeline failure.
	SourceStale Source = "stale"
)

// LocalStore is the process-local layer contract.
type LocalStore interface {
	Get(key string) (Entry, bool)
	GetStale(key string) (Entry, bool)
	Set(key string, e Entry)
}

// SharedStore is the cross-process layer contract.
type SharedStore interface {
	Get(ctx context.Context, key string) (Entry, bool)
	GetStale(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry) error
}

// SnapshotStore is the precomputed-snapshot layer contract.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry) error
}

// ReadOptions select which layers a read may touch.
type ReadOptions struct {
	// UseSnapshot consults the snapshot layer first.
	UseSnapshot bool

	// BypassCaches skips the local and shared layers, forcing a live
	// computation. The snapshot layer is governed by UseSnapshot alone.
	BypassCaches bool
}

// Tiered is the fixed-order façade over the three layers. Any layer may be
// nil, in which case it is skipped.
type Tiered struct {
	local    LocalStore
	shared   SharedStore
	snapshot SnapshotStore
	logger   zerolog.Logger
}

// NewTiered assembles the cache from its layers.
func NewTiered(local LocalStore, shared SharedStore, snapshot SnapshotStore) *Tiered {
	return &Tiered{
		local:    local,
		shared:   shared,
		snapshot: snapshot,
		logger:   log.With().Str("component", "cache-tiered").Logger(),
	}
}

// Read consults snapshot → local → shared in order and returns the first hit
// with its provenance. A shared-layer hit populates the local layer before
// returning.
func (t *Tiered) Read(ctx context.Context, key Key, opts ReadOptions) (rank.RankedList, Source, bool) {
	if opts.UseSnapshot && t.snapshot != nil {
		sk := key
		sk.Snapshot = true
		if e, ok := t.snapshot.Get(ctx, sk.String()); ok {
			CacheHits.WithLabelValues(string(SourceSnapshot)).Inc()
			return e.List, SourceSnapshot, true
		}
	}

	if !opts.BypassCaches {
		ks := key.String()

		if t.local != nil {
			if e, ok := t.local.Get(ks); ok {
				CacheHits.WithLabelValues(string(SourceMemory)).Inc()
				return e.List, SourceMemory, true
			}
		}

		if t.shared != nil {
			if e, ok := t.shared.Get(ctx, ks); ok {
				if t.local != nil {
					t.local.Set(ks, e)
				}
				CacheHits.WithLabelValues(string(SourceShared)).Inc()
				return e.List, SourceShared, true
			}
		}
	}

	CacheMisses.Inc()
	return rank.RankedList{}, "", false
}

// Stale returns the most recent value still held for key in the local or
// shared layer, ignoring freshness. Used only after a live computation
// failed.
func (t *Tiered) Stale(ctx context.Context, key Key) (rank.RankedList, bool) {
	ks := key.String()

	if t.local != nil {
		if e, ok := t.local.GetStale(ks); ok {
			StaleServes.Inc()
			return e.List, true
		}
	}
	if t.shared != nil {
		if e, ok := t.shared.GetStale(ctx, ks); ok {
			StaleServes.Inc()
			return e.List, true
		}
	}
	return rank.RankedList{}, false
}

// Write stores a live result in the local and shared layers (write-through).
// Failures are logged and swallowed; caching is never worth failing a query.
func (t *Tiered) Write(ctx context.Context, key Key, list rank.RankedList) {
	e := NewEntry(list)
	ks := key.String()

	if t.local != nil {
		t.local.Set(ks, e)
	}
	if t.shared != nil {
		if err := t.shared.Set(ctx, ks, e); err != nil {
			t.logger.Warn().Err(err).Str("key", ks).Msg("Write-through to shared layer failed")
		}
	}
}

// WriteSnapshot stores a precomputed list under the snapshot key space. The
// error surfaces so the builder can report failed combinations.
func (t *Tiered) WriteSnapshot(ctx context.Context, key Key, list rank.RankedList) error {
	if t.snapshot == nil {
		return nil
	}
	sk := key
	sk.Snapshot = true
	return t.snapshot.Set(ctx, sk.String(), NewEntry(list))
}
