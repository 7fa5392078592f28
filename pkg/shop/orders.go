package shop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Order is one upstream order, immutable once fetched.
type Order struct {
	ID          int64
	CancelledAt *time.Time
	Source      string
	LineItems   []LineItem
}

// LineItem is one purchased position within an order. ProductID is nil for
// deleted or unavailable products; such items are dropped during aggregation.
type LineItem struct {
	Quantity    int
	ProductID   *int64
	Handle      string
	Tags        []string
	ProductType string
}

// wire shapes as the platform returns them. Tags arrive as one
// comma-separated string.
type ordersPage struct {
	Orders []wireOrder `json:"orders"`
}

type wireOrder struct {
	ID          int64          `json:"id"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	SourceName  string         `json:"source_name"`
	LineItems   []wireLineItem `json:"line_items"`
}

type wireLineItem struct {
	Quantity    int    `json:"quantity"`
	ProductID   *int64 `json:"product_id"`
	Handle      string `json:"handle"`
	Tags        string `json:"tags"`
	ProductType string `json:"product_type"`
}

// FetchOrders retrieves every order in the window matching the payment-status
// filter, following the upstream cursor until exhausted. Each page fetch is
// bounded by the configured page timeout; any page error aborts the whole
// retrieval with an UpstreamError; no partial result is ever returned.
// The page count is reported for diagnostics.
func (c *Client) FetchOrders(ctx context.Context, window Window, financialStatus string) ([]Order, int, error) {
	endpoint := c.config.BaseURL + "/orders.json"

	query := url.Values{}
	query.Set("status", "any")
	query.Set("limit", strconv.Itoa(c.config.PageSize))
	query.Set("created_at_min", window.Start().Format(time.RFC3339))
	query.Set("created_at_max", window.End().Format(time.RFC3339))
	query.Set("fields", "id,cancelled_at,source_name,line_items")
	if financialStatus != "" {
		query.Set("financial_status", financialStatus)
	}

	var orders []Order
	pages := 0
	pageInfo := ""

	for {
		pageQuery := query
		if pageInfo != "" {
			// Cursor requests only accept limit + page_info; the original
			// filters are encoded in the cursor itself.
			pageQuery = url.Values{}
			pageQuery.Set("limit", strconv.Itoa(c.config.PageSize))
			pageQuery.Set("page_info", pageInfo)
		}

		pageCtx, cancel := context.WithTimeout(ctx, c.config.PageTimeout)
		req, err := http.NewRequestWithContext(pageCtx, http.MethodGet, endpoint+"?"+pageQuery.Encode(), nil)
		if err != nil {
			cancel()
			return nil, pages, fmt.Errorf("create orders request: %w", err)
		}

		var page ordersPage
		header, err := c.getJSON(req, &page)
		cancel()
		if err != nil {
			c.logger.Error().
				Err(err).
				Int("pages_fetched", pages).
				Str("window", window.String()).
				Msg("Order retrieval aborted")
			return nil, pages, err
		}

		pages++
		for _, wo := range page.Orders {
			orders = append(orders, wo.toOrder())
		}

		pageInfo = parseNextPageInfo(header)
		if pageInfo == "" {
			break
		}
	}

	c.logger.Debug().
		Int("orders", len(orders)).
		Int("pages", pages).
		Str("window", window.String()).
		Msg("Order retrieval complete")

	return orders, pages, nil
}

func (w wireOrder) toOrder() Order {
	items := make([]LineItem, 0, len(w.LineItems))
	for _, li := range w.LineItems {
		items = append(items, LineItem{
			Quantity:    li.Quantity,
			ProductID:   li.ProductID,
			Handle:      li.Handle,
			Tags:        splitTags(li.Tags),
			ProductType: li.ProductType,
		})
	}
	return Order{
		ID:          w.ID,
		CancelledAt: w.CancelledAt,
		Source:      w.SourceName,
		LineItems:   items,
	}
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
