package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis connects to a local Redis and skips the test when none is
// available. Integration coverage with a containerized Redis lives under
// tests/integration.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewShared_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewShared should panic with nil redis client")
		}
	}()
	NewShared(nil, 0, 0)
}

func TestNewShared_RetentionCoversFreshness(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	s := NewShared(client, time.Hour, time.Minute)
	if s.retention < s.freshFor {
		t.Errorf("retention %v shorter than freshness bound %v", s.retention, s.freshFor)
	}
}

func TestShared_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	s := NewShared(client, 30*time.Minute, 24*time.Hour)
	ctx := context.Background()

	if err := s.Set(ctx, "bestsellers:test:a", NewEntry(testList())); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := s.Get(ctx, "bestsellers:test:a")
	if !ok {
		t.Fatal("Get returned miss for freshly stored entry")
	}
	if len(got.List.Handles) != 2 {
		t.Errorf("Handles = %v, want 2 entries", got.List.Handles)
	}
	if got.FreshUntil.IsZero() {
		t.Error("Set must stamp the freshness bound")
	}

	if _, ok := s.Get(ctx, "bestsellers:test:missing"); ok {
		t.Error("Get returned hit for unknown key")
	}
}

func TestShared_ExpiredEntryServedStaleOnly(t *testing.T) {
	client := setupTestRedis(t)
	s := NewShared(client, 30*time.Minute, 24*time.Hour)
	ctx := context.Background()

	e := NewEntry(testList())
	e.FreshUntil = time.Now().Add(-time.Minute)
	if err := s.Set(ctx, "bestsellers:test:expired", e); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok := s.Get(ctx, "bestsellers:test:expired"); ok {
		t.Error("Get returned hit for expired entry")
	}

	got, ok := s.GetStale(ctx, "bestsellers:test:expired")
	if !ok {
		t.Fatal("GetStale returned miss for retained expired entry")
	}
	if len(got.List.Handles) != 2 {
		t.Errorf("GetStale Handles = %v, want 2 entries", got.List.Handles)
	}
}

func TestShared_MalformedPayloadIsMiss(t *testing.T) {
	client := setupTestRedis(t)
	s := NewShared(client, 30*time.Minute, 24*time.Hour)
	ctx := context.Background()

	if err := client.Set(ctx, "bestsellers:test:bad", "{not json", time.Minute).Err(); err != nil {
		t.Fatalf("raw Set failed: %v", err)
	}

	if _, ok := s.Get(ctx, "bestsellers:test:bad"); ok {
		t.Error("Get returned hit for malformed payload")
	}
	if _, ok := s.GetStale(ctx, "bestsellers:test:bad"); ok {
		t.Error("GetStale returned hit for malformed payload")
	}
}

func TestSnapshot_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	s := NewSnapshot(client)
	ctx := context.Background()

	if err := s.Set(ctx, "bestsellers:v2:last-30-snapshot:all:8", NewEntry(testList())); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := s.Get(ctx, "bestsellers:v2:last-30-snapshot:all:8")
	if !ok {
		t.Fatal("Get returned miss for stored snapshot")
	}
	if len(got.List.Handles) != 2 {
		t.Errorf("Handles = %v, want 2 entries", got.List.Handles)
	}

	// Snapshot entries never expire on the reader side.
	ttl, err := client.TTL(ctx, "bestsellers:v2:last-30-snapshot:all:8").Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl > 0 {
		t.Errorf("snapshot key has TTL %v, want none", ttl)
	}
}
