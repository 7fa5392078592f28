// Package cache implements the three-tier bestseller cache:
//
//  1. Snapshot layer: Redis entries precomputed by the snapshot builder for a
//     fixed rolling window, keyed by segment set and limit. Readers never
//     enforce a TTL here; freshness is the builder's job.
//  2. Process-local layer: a bounded LRU keyed by the full computed key. The
//     TTL check happens at read time, outside the LRU, so expired entries stay
//     resident and remain available for stale-on-error reads.
//  3. Shared layer: Redis entries under the same full key. Each entry carries
//     its own FreshUntil inside the JSON payload and is stored with a longer
//     retention TTL, so a logically expired value can still be served stale.
//
// Reads consult the layers in that fixed order; a shared-layer hit populates
// the local layer. Cache failures are never surfaced to callers: a broken or
// unreachable store is a miss, a failed write is a logged warning. Payloads
// are defensively unwrapped on read since single- and double-encoding writer
// versions have coexisted.
package cache
