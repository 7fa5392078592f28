package cache

import (
	"strconv"
	"strings"

	"github.com/storeline/bestsellers/pkg/segment"
	"github.com/storeline/bestsellers/pkg/shop"
)

// KeyVersion tags every key so incompatible payload layouts never collide
// across writer versions.
const KeyVersion = "v2"

const (
	keyPrefix = "bestsellers"

	// snapshotWindowLabel replaces the exact date range for snapshot keys:
	// snapshots are scoped to the fixed rolling window, not a request window.
	snapshotWindowLabel = "last-30-snapshot"
)

// Key identifies one cached bestseller list.
type Key struct {
	// Window is the exact requested date range. Ignored for snapshot keys.
	Window shop.Window

	// Snapshot selects the snapshot layer's fixed-window key space.
	Snapshot bool

	// Segments is the requested segment set; its canonical form makes the
	// key order-independent.
	Segments segment.Set

	// Limit is the requested list length.
	Limit int

	// Channel is the optional channel filter label ("" when unfiltered).
	Channel string
}

// String generates the deterministic key string.
//
// Examples:
//
//	bestsellers:v2:2026-08-02_2026-09-01:kids+man:10
//	bestsellers:v2:last-30-snapshot:all:8
//	bestsellers:v2:2026-08-02_2026-09-01:woman:10:online
func (k Key) String() string {
	parts := []string{keyPrefix, KeyVersion}

	if k.Snapshot {
		parts = append(parts, snapshotWindowLabel)
	} else {
		parts = append(parts, k.Window.String())
	}

	parts = append(parts, k.Segments.Canonical(), strconv.Itoa(k.Limit))

	if k.Channel != "" {
		parts = append(parts, strings.ToLower(k.Channel))
	}

	return strings.Join(parts, ":")
}
