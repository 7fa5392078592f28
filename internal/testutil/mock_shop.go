// Package testutil provides testing utilities for the bestseller engine.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockShop is a configurable mock commerce API server. It serves the
// paginated orders endpoint with Link-header cursors and the batch products
// endpoint, with optional failure and latency injection.
type MockShop struct {
	server *httptest.Server
	mu     sync.RWMutex

	orderPages []string // JSON arrays of order objects, one per page
	products   map[int64]string

	ordersStatus   int // non-zero forces this status on /orders.json
	productsStatus int
	delay          time.Duration
	callLimit      string

	// Tracking
	RequestCount     int
	OrdersRequests   int
	ProductsRequests int
	LastToken        string
}

// NewMockShop creates a started mock shop server.
func NewMockShop() *MockShop {
	mock := &MockShop{products: map[int64]string{}}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastToken = r.Header.Get("X-Api-Access-Token")
		delay := mock.delay
		mock.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/orders.json"):
			mock.handleOrders(w, r)
		case strings.HasSuffix(r.URL.Path, "/products.json"):
			mock.handleProducts(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors":"Not Found"}`)
		}
	}))

	return mock
}

// BaseURL returns the API root to hand to the shop client.
func (m *MockShop) BaseURL() string {
	return m.server.URL + "/admin/api/2024-01"
}

// Close shuts down the mock server.
func (m *MockShop) Close() {
	m.server.Close()
}

// Reset clears tracking counters and failure injection.
func (m *MockShop) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.OrdersRequests = 0
	m.ProductsRequests = 0
	m.ordersStatus = 0
	m.productsStatus = 0
	m.delay = 0
}

// SetOrderPages configures the order pages served in sequence. Each page is a
// JSON array of order objects in the upstream wire format.
func (m *MockShop) SetOrderPages(pages ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderPages = pages
}

// SetProducts configures the id → handle table served by the products
// endpoint. Ids absent from the table are silently dropped, like upstream
// does for deleted products.
func (m *MockShop) SetProducts(products map[int64]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}

// FailOrders forces the orders endpoint to answer with the given status.
func (m *MockShop) FailOrders(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ordersStatus = status
}

// FailProducts forces the products endpoint to answer with the given status.
func (m *MockShop) FailProducts(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productsStatus = status
}

// SetDelay makes every response wait before answering.
func (m *MockShop) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetCallLimit sets the X-Api-Call-Limit header value emitted on every
// response ("32/40").
func (m *MockShop) SetCallLimit(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLimit = v
}

// GetRequestCount returns the total number of requests received.
func (m *MockShop) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

func (m *MockShop) handleOrders(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.OrdersRequests++
	status := m.ordersStatus
	pages := m.orderPages
	callLimit := m.callLimit
	m.mu.Unlock()

	m.writeCommonHeaders(w, callLimit)

	if status != 0 {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"errors":"injected failure"}`)
		return
	}

	page := 0
	if info := r.URL.Query().Get("page_info"); info != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(info, "p"))
		if err != nil || n < 0 || n >= len(pages) {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"errors":"invalid page_info"}`)
			return
		}
		page = n
	}

	body := "[]"
	if page < len(pages) {
		body = pages[page]
	}

	if page+1 < len(pages) {
		next := fmt.Sprintf("%s/orders.json?page_info=p%d&limit=250", m.BaseURL(), page+1)
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"orders":%s}`, body)
}

func (m *MockShop) handleProducts(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.ProductsRequests++
	status := m.productsStatus
	products := m.products
	callLimit := m.callLimit
	m.mu.Unlock()

	m.writeCommonHeaders(w, callLimit)

	if status != 0 {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"errors":"injected failure"}`)
		return
	}

	var entries []string
	for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		if handle, ok := products[id]; ok {
			entries = append(entries, fmt.Sprintf(`{"id":%d,"handle":%q}`, id, handle))
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"products":[%s]}`, strings.Join(entries, ","))
}

func (m *MockShop) writeCommonHeaders(w http.ResponseWriter, callLimit string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if callLimit != "" {
		w.Header().Set("X-Api-Call-Limit", callLimit)
	}
}

// OrderJSON builds one order object in the upstream wire format. Line items
// are passed pre-rendered via LineItemJSON.
func OrderJSON(id int64, cancelledAt, sourceName string, lineItems ...string) string {
	cancelled := "null"
	if cancelledAt != "" {
		cancelled = fmt.Sprintf("%q", cancelledAt)
	}
	return fmt.Sprintf(`{"id":%d,"cancelled_at":%s,"source_name":%q,"line_items":[%s]}`,
		id, cancelled, sourceName, strings.Join(lineItems, ","))
}

// LineItemJSON builds one line item in the upstream wire format. A zero
// productID renders a null product reference.
func LineItemJSON(quantity int, productID int64, handle, tags, productType string) string {
	pid := "null"
	if productID != 0 {
		pid = strconv.FormatInt(productID, 10)
	}
	return fmt.Sprintf(`{"quantity":%d,"product_id":%s,"handle":%q,"tags":%q,"product_type":%q}`,
		quantity, pid, handle, tags, productType)
}
