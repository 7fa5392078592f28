// Package rank folds order line items into per-product quantity totals and
// produces ranked, truncated bestseller lists. Everything here is pure: no
// I/O, no errors, deterministic output for identical input.
package rank

import (
	"sort"
	"strings"

	"github.com/storeline/bestsellers/pkg/segment"
	"github.com/storeline/bestsellers/pkg/shop"
)

// ChannelFilter decides whether an order's source label belongs to the
// requested sales channel. It is only consulted when the label is present:
// upstream does not always populate source_name, and an absent label counts
// as online (fail-open).
type ChannelFilter func(source string) bool

// ExcludeSources returns a filter rejecting orders whose source label matches
// any of the given names (case-insensitive). Typical use: ExcludeSources("pos")
// to keep only online sales.
func ExcludeSources(names ...string) ChannelFilter {
	return func(source string) bool {
		for _, n := range names {
			if strings.EqualFold(source, n) {
				return false
			}
		}
		return true
	}
}

// Stats counts what the aggregation saw and skipped, for debug metadata.
type Stats struct {
	Orders           int `json:"orders"`
	SkippedCancelled int `json:"skipped_cancelled"`
	SkippedChannel   int `json:"skipped_channel"`
	Items            int `json:"items"`
	SkippedNoProduct int `json:"skipped_no_product"`
	SkippedSegment   int `json:"skipped_segment"`
}

// Totals maps product ids to summed quantities. Products with no surviving
// line items are absent, never present with zero. First-seen order is kept so
// ranking ties break deterministically on identical input.
type Totals struct {
	qty       map[int64]int64
	firstSeen map[int64]int
}

// Len returns the number of distinct products counted.
func (t Totals) Len() int {
	return len(t.qty)
}

// Quantity returns the summed quantity for a product id (0 when absent).
func (t Totals) Quantity(id int64) int64 {
	return t.qty[id]
}

// Aggregate folds the orders into per-product totals. Cancelled orders are
// skipped; orders failing the channel filter are skipped; line items without
// a product are dropped; line items whose product does not match the requested
// segment set are dropped.
func Aggregate(orders []shop.Order, requested segment.Set, channel ChannelFilter) (Totals, Stats) {
	totals := Totals{
		qty:       make(map[int64]int64),
		firstSeen: make(map[int64]int),
	}
	var stats Stats

	seq := 0
	for _, order := range orders {
		stats.Orders++

		if order.CancelledAt != nil {
			stats.SkippedCancelled++
			continue
		}
		if channel != nil && order.Source != "" && !channel(order.Source) {
			stats.SkippedChannel++
			continue
		}

		for _, item := range order.LineItems {
			stats.Items++

			if item.ProductID == nil {
				stats.SkippedNoProduct++
				continue
			}
			if !segment.Matches(item.Tags, item.ProductType, requested) {
				stats.SkippedSegment++
				continue
			}
			if item.Quantity <= 0 {
				continue
			}

			id := *item.ProductID
			if _, seen := totals.firstSeen[id]; !seen {
				totals.firstSeen[id] = seq
				seq++
			}
			totals.qty[id] += int64(item.Quantity)
		}
	}

	return totals, stats
}

// Top returns up to limit product ids ranked by descending quantity, ties
// broken by first-seen input order.
func (t Totals) Top(limit int) []int64 {
	ids := make([]int64, 0, len(t.qty))
	for id := range t.qty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		qi, qj := t.qty[ids[i]], t.qty[ids[j]]
		if qi != qj {
			return qi > qj
		}
		return t.firstSeen[ids[i]] < t.firstSeen[ids[j]]
	})

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// RankedList is an ordered bestseller list scoped to one window and segment
// set. It is the cacheable unit; provenance (live/snapshot/stale) is attached
// by the query layer, not stored.
type RankedList struct {
	Handles  []string    `json:"handles"`
	Window   shop.Window `json:"window"`
	Segments []string    `json:"segments"`
	Limit    int         `json:"limit"`
}

// Build resolves ranked product ids to handles, dropping ids without one. The
// resulting list may be shorter than limit; that is expected.
func Build(ids []int64, handles map[int64]string, window shop.Window, segments segment.Set, limit int) RankedList {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if h, ok := handles[id]; ok {
			out = append(out, h)
		}
	}
	return RankedList{
		Handles:  out,
		Window:   window,
		Segments: segments.Labels(),
		Limit:    limit,
	}
}
