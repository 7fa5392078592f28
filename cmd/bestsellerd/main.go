// Command bestsellerd serves the bestseller query and snapshot endpoints
// over HTTP. All domain logic lives in the library packages; this binary only
// wires configuration, Redis, the shop client and the router together.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/storeline/bestsellers/internal/config"
	"github.com/storeline/bestsellers/pkg/bestseller"
	"github.com/storeline/bestsellers/pkg/cache"
	"github.com/storeline/bestsellers/pkg/logging"
	"github.com/storeline/bestsellers/pkg/shop"
	"github.com/storeline/bestsellers/pkg/throttle"
)

func main() {
	cfg := config.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	cancel()
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")

	shopClient, err := shop.New(shop.Config{
		BaseURL:     cfg.Shop.BaseURL,
		Token:       cfg.Shop.Token,
		PageSize:    cfg.Shop.PageSize,
		PageTimeout: cfg.Shop.PageTimeout,
		Throttle:    throttle.NewTracker(redisClient, logging.NewLogger("throttle")),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create shop client")
	}

	tiered := cache.NewTiered(
		cache.NewMemory(cfg.Cache.MemoryCapacity, cfg.Cache.MemoryTTL),
		cache.NewShared(redisClient, cfg.Cache.SharedFreshFor, cfg.Cache.SharedRetention),
		cache.NewSnapshot(redisClient),
	)

	svc, err := bestseller.New(shopClient, tiered, bestseller.Config{
		DefaultLimit:   cfg.Service.DefaultLimit,
		MaxLimit:       cfg.Service.MaxLimit,
		WindowDays:     cfg.Service.WindowDays,
		SnapshotSecret: cfg.Service.SnapshotSecret,
		SnapshotLimit:  cfg.Service.SnapshotLimit,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create bestseller service")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/bestsellers", queryHandler(svc))
	r.Post("/bestsellers/snapshot", snapshotHandler(svc))

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("Starting bestsellers server")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func queryHandler(svc *bestseller.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := bestseller.ParamsFromQuery(r.URL.Query())

		res, err := svc.Query(r.Context(), params)
		if err != nil {
			if bestseller.IsValidation(err) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			// The service degrades internally; anything else is unexpected.
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func snapshotHandler(svc *bestseller.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := r.Header.Get("X-Snapshot-Key")
		if secret == "" {
			secret = r.URL.Query().Get("key")
		}

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		summary, err := svc.Snapshot(r.Context(), secret, limit)
		if err != nil {
			if errors.Is(err, bestseller.ErrUnauthorized) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
