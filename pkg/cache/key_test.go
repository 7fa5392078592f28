package cache

import (
	"testing"
	"time"

	"github.com/storeline/bestsellers/pkg/segment"
	"github.com/storeline/bestsellers/pkg/shop"
)

func testWindow(t *testing.T) shop.Window {
	t.Helper()
	from, err := shop.ParseWindow("2026-08-02", "2026-09-01")
	if err != nil {
		t.Fatalf("ParseWindow failed: %v", err)
	}
	return from
}

func TestKey_String(t *testing.T) {
	window := testWindow(t)

	manKids, err := segment.ParseSet("kids,man")
	if err != nil {
		t.Fatalf("ParseSet failed: %v", err)
	}
	woman, err := segment.ParseSet("woman")
	if err != nil {
		t.Fatalf("ParseSet failed: %v", err)
	}

	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "window with segments",
			key:  Key{Window: window, Segments: manKids, Limit: 10},
			want: "bestsellers:v2:2026-08-02_2026-09-01:kids+man:10",
		},
		{
			name: "empty segment set is all",
			key:  Key{Window: window, Limit: 10},
			want: "bestsellers:v2:2026-08-02_2026-09-01:all:10",
		},
		{
			name: "snapshot replaces the window",
			key:  Key{Window: window, Snapshot: true, Limit: 8},
			want: "bestsellers:v2:last-30-snapshot:all:8",
		},
		{
			name: "channel suffix lowercased",
			key:  Key{Window: window, Segments: woman, Limit: 10, Channel: "Online"},
			want: "bestsellers:v2:2026-08-02_2026-09-01:woman:10:online",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_SegmentOrderIndependent(t *testing.T) {
	window := testWindow(t)

	a, err := segment.ParseSet("man,kids")
	if err != nil {
		t.Fatalf("ParseSet failed: %v", err)
	}
	b, err := segment.ParseSet("kids,man,kids")
	if err != nil {
		t.Fatalf("ParseSet failed: %v", err)
	}

	ka := Key{Window: window, Segments: a, Limit: 10}.String()
	kb := Key{Window: window, Segments: b, Limit: 10}.String()
	if ka != kb {
		t.Errorf("keys differ for equivalent segment sets: %q vs %q", ka, kb)
	}
}

func TestKey_WindowBoundsMatter(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	k1 := Key{Window: shop.NewWindow(base, base.AddDate(0, 0, 30)), Limit: 10}.String()
	k2 := Key{Window: shop.NewWindow(base.AddDate(0, 0, -1), base.AddDate(0, 0, 30)), Limit: 10}.String()
	if k1 == k2 {
		t.Errorf("keys for different windows must differ, both %q", k1)
	}
}
