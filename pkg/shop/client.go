// Package shop provides the client for the upstream commerce platform:
// paginated order retrieval over a date window and batch product resolution.
package shop

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storeline/bestsellers/pkg/throttle"
)

// Prometheus metrics for upstream requests.
var (
	shopRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	shopRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shop_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	shopErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// HeaderAccessToken carries the shop API credential.
const HeaderAccessToken = "X-Api-Access-Token"

// maxPageSize is the upstream hard cap on orders per page.
const maxPageSize = 250

// Config holds the client configuration.
type Config struct {
	// BaseURL is the shop API root, e.g. "https://acme.myshop.example/admin/api/2024-01".
	BaseURL string

	// Token is the API access token.
	Token string

	// PageSize is the number of orders requested per page (capped at 250).
	PageSize int

	// PageTimeout bounds each individual page fetch, including retries.
	PageTimeout time.Duration

	// Throttle gates requests on the shared call-limit bucket. Nil disables
	// gating.
	Throttle *throttle.Tracker

	// HTTPClient overrides the default transport (mainly for tests).
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, token string) Config {
	return Config{
		BaseURL:     baseURL,
		Token:       token,
		PageSize:    maxPageSize,
		PageTimeout: 12 * time.Second,
	}
}

// Client talks to the commerce platform's query APIs. It performs no caching;
// callers layer caching on top.
type Client struct {
	httpClient *http.Client
	config     Config
	throttle   *throttle.Tracker
	logger     zerolog.Logger
}

// New creates a new shop client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = maxPageSize
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 12 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		throttle:   cfg.Throttle,
		logger:     log.With().Str("component", "shop-client").Logger(),
	}, nil
}

// apiError is the application-level error payload some endpoints return with
// a 200 status.
type apiError struct {
	Errors json.RawMessage `json:"errors"`
}

// getJSON performs one GET against an API endpoint, with call-limit gating,
// retry and error classification, and decodes the body into out. The response
// header of the successful attempt is returned so callers can follow
// pagination cursors.
func (c *Client) getJSON(req *http.Request, out any) (http.Header, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		shopRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.throttle != nil {
		allowed, err := c.throttle.ShouldAllowRequest(ctx)
		if err != nil {
			// Gate state being unavailable must not take the pipeline down.
			c.logger.Warn().Err(err).Msg("Call-limit check failed, proceeding")
		} else if !allowed {
			shopRequestsTotal.WithLabelValues(endpoint, "throttled").Inc()
			return nil, &UpstreamError{
				Endpoint: endpoint,
				Class:    ErrorClassRateLimit,
				Message:  "call limit exhausted",
				Err:      ErrThrottled,
			}
		}
	}

	req.Header.Set(HeaderAccessToken, c.config.Token)
	req.Header.Set("Accept", "application/json")

	var body []byte
	var respHeader http.Header
	var lastClass ErrorClass

	retryErr := retryWithBackoff(ctx, func() error {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastClass = ErrorClassNetwork
			shopErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			shopRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &UpstreamError{
				Endpoint: endpoint,
				Class:    ErrorClassNetwork,
				Message:  "transport failure",
				Err:      err,
			}
		}
		defer resp.Body.Close()

		if c.throttle != nil {
			if err := c.throttle.UpdateFromHeaders(ctx, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update call-limit state")
			}
		}

		shopRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			lastClass = classifyStatus(resp.StatusCode)
			shopErrorsTotal.WithLabelValues(string(lastClass)).Inc()
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(lastClass)).
				Msg("Upstream request error")
			return &UpstreamError{
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode,
				Class:      lastClass,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			lastClass = ErrorClassNetwork
			shopErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return &UpstreamError{
				Endpoint: endpoint,
				Class:    ErrorClassNetwork,
				Message:  "read body",
				Err:      err,
			}
		}

		// Some endpoints signal failure inside a 200 body.
		var appErr apiError
		if err := json.Unmarshal(body, &appErr); err == nil && len(appErr.Errors) > 0 && string(appErr.Errors) != "null" {
			lastClass = ErrorClassClient
			shopErrorsTotal.WithLabelValues(string(ErrorClassClient)).Inc()
			return &UpstreamError{
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode,
				Class:      ErrorClassClient,
				Message:    string(appErr.Errors),
			}
		}

		respHeader = resp.Header.Clone()
		return nil
	}, func(error) ErrorClass {
		return lastClass
	})
	if retryErr != nil {
		return nil, retryErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return nil, &UpstreamError{
			Endpoint: endpoint,
			Class:    ErrorClassServer,
			Message:  "malformed response body",
			Err:      err,
		}
	}
	return respHeader, nil
}

// parseNextPageInfo extracts the page_info cursor from a Link header of the
// form `<https://…?page_info=abc&limit=250>; rel="next"`. Returns "" when no
// next page exists.
func parseNextPageInfo(h http.Header) string {
	for _, link := range h.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			if !strings.Contains(part, `rel="next"`) {
				continue
			}
			start := strings.Index(part, "<")
			end := strings.Index(part, ">")
			if start < 0 || end < 0 || end <= start {
				continue
			}
			u, err := url.Parse(part[start+1 : end])
			if err != nil {
				continue
			}
			if info := u.Query().Get("page_info"); info != "" {
				return info
			}
		}
	}
	return ""
}
