// Package config loads process configuration from the environment (and an
// optional .env file) with typed helpers and required-variable validation.
package config

import (
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Shop holds upstream commerce API settings.
type Shop struct {
	BaseURL     string
	Token       string
	PageSize    int
	PageTimeout time.Duration
}

// Cache holds tiered-cache settings.
type Cache struct {
	MemoryTTL       time.Duration
	MemoryCapacity  int
	SharedFreshFor  time.Duration
	SharedRetention time.Duration
}

// Service holds query/snapshot entry-point settings.
type Service struct {
	DefaultLimit   int
	MaxLimit       int
	WindowDays     int
	SnapshotSecret string
	SnapshotLimit  int
}

// Config is the full process configuration.
type Config struct {
	HTTPAddr  string
	RedisAddr string
	LogLevel  string
	LogPretty bool

	Shop    Shop
	Cache   Cache
	Service Service
}

// Load reads the configuration and fatals on error, for use from main().
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:  envDefault("HTTP_ADDR", ":8080"),
		RedisAddr: envDefault("REDIS_ADDR", "localhost:6379"),
		LogLevel:  envDefault("LOG_LEVEL", "info"),
		LogPretty: envBool("LOG_PRETTY", false),

		Shop: Shop{
			BaseURL:     strings.TrimSpace(os.Getenv("SHOP_BASE_URL")),
			Token:       strings.TrimSpace(os.Getenv("SHOP_TOKEN")),
			PageSize:    envInt("SHOP_PAGE_SIZE", 250),
			PageTimeout: envDuration("SHOP_PAGE_TIMEOUT", 12*time.Second),
		},

		Cache: Cache{
			MemoryTTL:       envDuration("CACHE_MEMORY_TTL", 5*time.Minute),
			MemoryCapacity:  envInt("CACHE_MEMORY_CAP", 1024),
			SharedFreshFor:  envDuration("CACHE_SHARED_FRESH", 30*time.Minute),
			SharedRetention: envDuration("CACHE_SHARED_RETENTION", 24*time.Hour),
		},

		Service: Service{
			DefaultLimit:   envInt("QUERY_DEFAULT_LIMIT", 10),
			MaxLimit:       envInt("QUERY_MAX_LIMIT", 50),
			WindowDays:     envInt("QUERY_WINDOW_DAYS", 30),
			SnapshotSecret: strings.TrimSpace(os.Getenv("SNAPSHOT_SECRET")),
			SnapshotLimit:  envInt("SNAPSHOT_LIMIT", 8),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	req := map[string]string{
		"SHOP_BASE_URL": c.Shop.BaseURL,
		"SHOP_TOKEN":    c.Shop.Token,
	}
	for k, v := range req {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &missingEnvError{Keys: missing}
	}

	if c.Service.SnapshotSecret == "" {
		log.Printf("SNAPSHOT_SECRET is empty, snapshot builds are disabled")
	}
	if c.Cache.SharedRetention < c.Cache.SharedFreshFor {
		log.Printf("CACHE_SHARED_RETENTION (%v) < CACHE_SHARED_FRESH (%v), stale fallback window will be short",
			c.Cache.SharedRetention, c.Cache.SharedFreshFor)
	}
	return nil
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	keys := append([]string(nil), e.Keys...)
	sort.Strings(keys)
	return "missing required envs: " + strings.Join(keys, ", ")
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return b
}

func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return d
}
