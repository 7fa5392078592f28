// Package bestseller exposes the two core entry points: the segmented
// bestseller query and the snapshot batch build. The hosting application's
// HTTP layer is a thin caller of this package.
package bestseller

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storeline/bestsellers/pkg/cache"
	"github.com/storeline/bestsellers/pkg/rank"
	"github.com/storeline/bestsellers/pkg/shop"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bestsellers_queries_total",
		Help: "Total bestseller queries by result source",
	}, []string{"source"})

	queryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bestsellers_query_failures_total",
		Help: "Total bestseller queries that degraded to an empty result",
	})
)

// Config holds the service configuration.
type Config struct {
	// DefaultLimit is the list length when the caller does not ask for one.
	DefaultLimit int

	// MaxLimit caps the requested list length.
	MaxLimit int

	// WindowDays is the rolling window used when no dates are given, and the
	// fixed window of the snapshot builder.
	WindowDays int

	// FinancialStatus is the upstream payment-status filter.
	FinancialStatus string

	// SnapshotSecret authorizes snapshot builds. Empty disables them.
	SnapshotSecret string

	// SnapshotLimit is the default list length for snapshot builds. It is
	// deliberately smaller than DefaultLimit: snapshots feed widgets, not
	// category pages.
	SnapshotLimit int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:    10,
		MaxLimit:        50,
		WindowDays:      30,
		FinancialStatus: "paid",
		SnapshotLimit:   8,
	}
}

// Service computes ranked bestseller lists with tiered caching and
// stale-on-error fallback.
type Service struct {
	shop   *shop.Client
	cache  *cache.Tiered
	cfg    Config
	logger zerolog.Logger
}

// New creates the service.
func New(shopClient *shop.Client, tiered *cache.Tiered, cfg Config) (*Service, error) {
	if shopClient == nil {
		return nil, fmt.Errorf("shop client is required")
	}
	if tiered == nil {
		return nil, fmt.Errorf("tiered cache is required")
	}
	def := DefaultConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = def.WindowDays
	}
	if cfg.FinancialStatus == "" {
		cfg.FinancialStatus = def.FinancialStatus
	}
	if cfg.SnapshotLimit <= 0 {
		cfg.SnapshotLimit = def.SnapshotLimit
	}

	return &Service{
		shop:   shopClient,
		cache:  tiered,
		cfg:    cfg,
		logger: log.With().Str("component", "bestseller-service").Logger(),
	}, nil
}

// Meta is the diagnostic metadata attached to debug and degraded results.
type Meta struct {
	Source   cache.Source `json:"source"`
	Window   string       `json:"window"`
	Segments []string     `json:"segments,omitempty"`
	Limit    int          `json:"limit"`
	Pages    int          `json:"pages,omitempty"`
	Stats    *rank.Stats  `json:"stats,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Result is the query output. Handles is never nil; a degraded query returns
// an empty list with Meta explaining why, not an error.
type Result struct {
	Handles []string `json:"handles"`
	Meta    *Meta    `json:"meta,omitempty"`
}

// Query returns the ranked bestseller handles for the requested segments,
// window and limit. Read order: snapshot (unless opted out) → process-local →
// shared → live computation. A live failure degrades to the most recent stale
// value under the same key, then to an empty list. The only hard error is a
// ValidationError for malformed input, raised before any I/O.
func (s *Service) Query(ctx context.Context, p Params) (Result, error) {
	q, err := s.resolve(p)
	if err != nil {
		return Result{Handles: []string{}}, err
	}

	key := cache.Key{
		Window:   q.window,
		Segments: q.segments,
		Limit:    q.limit,
		Channel:  q.channelLabel,
	}

	if list, source, ok := s.cache.Read(ctx, key, cache.ReadOptions{
		UseSnapshot:  q.useSnapshot,
		BypassCaches: q.bypassCaches,
	}); ok {
		queriesTotal.WithLabelValues(string(source)).Inc()
		return s.result(list.Handles, source, q, nil, 0, nil), nil
	}

	list, pages, stats, err := s.computeLive(ctx, q)
	if err != nil {
		queryFailuresTotal.Inc()
		s.logger.Warn().
			Err(err).
			Str("key", key.String()).
			Msg("Live computation failed, falling back to stale")

		if stale, ok := s.cache.Stale(ctx, key); ok {
			queriesTotal.WithLabelValues(string(cache.SourceStale)).Inc()
			return s.result(stale.Handles, cache.SourceStale, q, nil, 0, err), nil
		}

		// Nothing to serve: an empty widget beats a broken page.
		queriesTotal.WithLabelValues("empty").Inc()
		return s.result(nil, "", q, nil, 0, err), nil
	}

	s.cache.Write(ctx, key, list)
	queriesTotal.WithLabelValues(string(cache.SourceLive)).Inc()
	return s.result(list.Handles, cache.SourceLive, q, &stats, pages, nil), nil
}

// computeLive runs the full fetch → aggregate → rank → resolve pipeline.
func (s *Service) computeLive(ctx context.Context, q query) (rank.RankedList, int, rank.Stats, error) {
	orders, pages, err := s.shop.FetchOrders(ctx, q.window, s.cfg.FinancialStatus)
	if err != nil {
		return rank.RankedList{}, pages, rank.Stats{}, err
	}

	totals, stats := rank.Aggregate(orders, q.segments, q.channel)
	ids := totals.Top(q.limit)

	handles, err := s.shop.ResolveHandles(ctx, ids)
	if err != nil {
		return rank.RankedList{}, pages, stats, err
	}

	list := rank.Build(ids, handles, q.window, q.segments, q.limit)
	return list, pages, stats, nil
}

// result assembles the response, attaching Meta for debug queries and for
// every degraded outcome.
func (s *Service) result(handles []string, source cache.Source, q query, stats *rank.Stats, pages int, failure error) Result {
	if handles == nil {
		handles = []string{}
	}
	res := Result{Handles: handles}

	if q.debug || failure != nil {
		meta := &Meta{
			Source:   source,
			Window:   q.window.String(),
			Segments: q.segments.Labels(),
			Limit:    q.limit,
			Pages:    pages,
			Stats:    stats,
		}
		if failure != nil {
			meta.Error = failure.Error()
		}
		res.Meta = meta
	}
	return res
}
