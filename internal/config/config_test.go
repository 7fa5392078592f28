package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SHOP_BASE_URL", "https://acme.myshop.example/admin/api/2024-01")
	t.Setenv("SHOP_TOKEN", "shpat_test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want localhost:6379", cfg.RedisAddr)
	}
	if cfg.Shop.PageSize != 250 {
		t.Errorf("PageSize = %d, want 250", cfg.Shop.PageSize)
	}
	if cfg.Cache.SharedFreshFor != 30*time.Minute {
		t.Errorf("SharedFreshFor = %v, want 30m", cfg.Cache.SharedFreshFor)
	}
	if cfg.Service.DefaultLimit != 10 || cfg.Service.MaxLimit != 50 || cfg.Service.WindowDays != 30 {
		t.Errorf("Service = %+v, want default limits", cfg.Service)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("SHOP_BASE_URL", "")
	t.Setenv("SHOP_TOKEN", "")

	_, err := load()
	if err == nil {
		t.Fatal("load succeeded without required envs")
	}
	msg := err.Error()
	if !strings.Contains(msg, "SHOP_BASE_URL") || !strings.Contains(msg, "SHOP_TOKEN") {
		t.Errorf("error = %q, want both missing keys named", msg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("SHOP_PAGE_TIMEOUT", "3s")
	t.Setenv("CACHE_MEMORY_CAP", "64")
	t.Setenv("SNAPSHOT_SECRET", "s3cret")

	cfg, err := load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || !cfg.LogPretty {
		t.Errorf("cfg = %+v, want overrides applied", cfg)
	}
	if cfg.Shop.PageTimeout != 3*time.Second {
		t.Errorf("PageTimeout = %v, want 3s", cfg.Shop.PageTimeout)
	}
	if cfg.Cache.MemoryCapacity != 64 {
		t.Errorf("MemoryCapacity = %d, want 64", cfg.Cache.MemoryCapacity)
	}
	if cfg.Service.SnapshotSecret != "s3cret" {
		t.Errorf("SnapshotSecret = %q, want s3cret", cfg.Service.SnapshotSecret)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	setRequired(t)
	t.Setenv("SHOP_PAGE_SIZE", "lots")
	t.Setenv("LOG_PRETTY", "maybe")
	t.Setenv("CACHE_MEMORY_TTL", "five minutes")

	cfg, err := load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Shop.PageSize != 250 {
		t.Errorf("PageSize = %d, want default 250", cfg.Shop.PageSize)
	}
	if cfg.LogPretty {
		t.Error("LogPretty = true, want default false")
	}
	if cfg.Cache.MemoryTTL != 5*time.Minute {
		t.Errorf("MemoryTTL = %v, want default 5m", cfg.Cache.MemoryTTL)
	}
}
