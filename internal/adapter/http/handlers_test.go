package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aq2208/gstore-api/configs"
	"github.com/aq2208/gstore-api/internal/adapter/cache"
	"github.com/aq2208/gstore-api/internal/adapter/catalog"
	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/adapter/repo"
	"github.com/aq2208/gstore-api/internal/adapter/session"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	router *gin.Engine
	orders *usecase.OrderLog
}

type serverOptions struct {
	store          usecase.KVStore
	timeout        time.Duration
	publishTimeout time.Duration
	publishers     []usecase.OrderEventPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, serverOptions{})
}

func newTestServerWith(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)

	store := opts.store
	if store == nil {
		store = repo.NewMemoryKVStore()
	}
	if opts.timeout == 0 {
		opts.timeout = time.Second
	}
	orders := usecase.NewOrderLog(store)
	svc := usecase.NewCheckoutService(cat, orders, cache.NewMemoryIdempotencyStore(time.Hour), nil, opts.publishers...).
		WithPublishTimeout(opts.publishTimeout)
	reg := session.NewRegistry(store, time.Hour)

	var cfg configs.Config
	cfg.Session.Secret = "test-secret-0123456789"
	cfg.Session.Cookie = "sf_session"
	cfg.Session.TTL = time.Hour

	r := NewRouter(Handlers{
		Catalog:  NewCatalogHandler(cat, reg),
		Cart:     NewCartHandler(cat, reg),
		Checkout: NewCheckoutHandler(cat, svc, reg, opts.timeout),
		Orders:   NewOrderHandler(orders),
	}, middleware.NewSessions(cfg), nil)
	return &testServer{router: r, orders: orders}
}

// client keeps the session token between calls like a browser keeps its cookie.
type client struct {
	t     *testing.T
	srv   *testServer
	token string
}

func (s *testServer) client(t *testing.T) *client { return &client{t: t, srv: s} }

func (c *client) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(middleware.SessionHeader, c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	c.srv.router.ServeHTTP(w, req)
	if tok := w.Header().Get(middleware.SessionHeader); tok != "" {
		c.token = tok
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func productIDs(t *testing.T, items any) []int {
	t.Helper()
	var out []int
	for _, it := range items.([]any) {
		out = append(out, int(it.(map[string]any)["id"].(float64)))
	}
	return out
}

func TestHealthz(t *testing.T) {
	c := newTestServer(t).client(t)
	w := c.do(nethttp.MethodGet, "/healthz", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
}

func TestHome(t *testing.T) {
	c := newTestServer(t).client(t)
	w := c.do(nethttp.MethodGet, "/v1/home", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, []int{1, 2, 3, 4}, productIDs(t, body["featured"]))
	assert.EqualValues(t, 0, body["cartCount"])
	assert.NotEmpty(t, body["categories"])
	assert.NotEmpty(t, w.Header().Get(middleware.SessionHeader), "new session issued")
}

func TestListProducts(t *testing.T) {
	c := newTestServer(t).client(t)

	w := c.do(nethttp.MethodGet, "/v1/products?category=Laptop&sort=price-high", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []int{5, 2, 13}, productIDs(t, body["items"]))
	assert.EqualValues(t, 3, body["shown"])
	assert.EqualValues(t, 16, body["total"])
	assert.Equal(t, "/products?category=Laptop&sort=price-high", body["location"])
	assert.Equal(t, true, body["filtered"])

	w = c.do(nethttp.MethodGet, "/v1/products?category=all", nil)
	body = decode(t, w)
	assert.Equal(t, "/products", body["location"])
	assert.Equal(t, false, body["filtered"])
}

func TestGetProduct(t *testing.T) {
	c := newTestServer(t).client(t)

	w := c.do(nethttp.MethodGet, "/v1/products/2", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode(t, w)
	product := body["product"].(map[string]any)
	assert.Equal(t, "Rp 18.499.000", product["priceText"])
	assert.Equal(t, []int{5, 13}, productIDs(t, body["related"]))

	for _, path := range []string{"/v1/products/999", "/v1/products/abc"} {
		w = c.do(nethttp.MethodGet, path, nil)
		assert.Equal(t, nethttp.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/v1/products", w.Header().Get("Location"))
	}
}

func TestCartFlow(t *testing.T) {
	c := newTestServer(t).client(t)

	w := c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 14})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	cart := decode(t, w)["cart"].(map[string]any)
	assert.EqualValues(t, 1, cart["itemCount"])
	totals := cart["totals"].(map[string]any)
	assert.EqualValues(t, 349_000, totals["subtotal"])
	assert.EqualValues(t, 15_000, totals["shipping"])
	assert.Equal(t, "Rp 15.000", totals["shippingText"])

	w = c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 14, "quantity": 3})
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{"✅ 3 Anker PowerCore 10000 telah ditambahkan ke keranjang!"}, body["messages"])
	cart = body["cart"].(map[string]any)
	assert.EqualValues(t, 4, cart["itemCount"])
	assert.EqualValues(t, 1, cart["lineCount"])
	totals = cart["totals"].(map[string]any)
	assert.Equal(t, "Gratis", totals["shippingText"])

	w = c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 12})
	assert.Equal(t, nethttp.StatusConflict, w.Code)
	assert.Equal(t, "out_of_stock", decode(t, w)["error"])

	w = c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 404})
	assert.Equal(t, nethttp.StatusNotFound, w.Code)

	w = c.do(nethttp.MethodPatch, "/v1/cart/items/14", gin.H{"quantity": "abc"})
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["itemCount"])

	w = c.do(nethttp.MethodPatch, "/v1/cart/items/14", gin.H{"quantity": 250})
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.EqualValues(t, 99, decode(t, w)["itemCount"])

	w = c.do(nethttp.MethodPatch, "/v1/cart/items/10", gin.H{"quantity": 2})
	assert.Equal(t, nethttp.StatusNotFound, w.Code)

	w = c.do(nethttp.MethodDelete, "/v1/cart/items/14", nil)
	require.Equal(t, nethttp.StatusConflict, w.Code)
	body = decode(t, w)
	assert.Equal(t, "confirmation_required", body["error"])
	assert.Equal(t, "Hapus Anker PowerCore 10000 dari keranjang?", body["message"])

	w = c.do(nethttp.MethodGet, "/v1/cart", nil)
	assert.EqualValues(t, 1, decode(t, w)["lineCount"], "unconfirmed removal keeps the line")

	w = c.do(nethttp.MethodDelete, "/v1/cart/items/14?confirm=true", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["lineCount"])
}

func TestClearCartNeedsConfirmation(t *testing.T) {
	c := newTestServer(t).client(t)

	w := c.do(nethttp.MethodDelete, "/v1/cart", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code, "empty cart clears without asking")

	c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 1})
	c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 2})

	w = c.do(nethttp.MethodDelete, "/v1/cart", nil)
	require.Equal(t, nethttp.StatusConflict, w.Code)
	assert.Equal(t, "Yakin ingin menghapus semua item dari keranjang?", decode(t, w)["message"])

	w = c.do(nethttp.MethodDelete, "/v1/cart?confirm=true", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["itemCount"])
}

func TestSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	alice, bob := srv.client(t), srv.client(t)

	alice.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 1})
	bob.do(nethttp.MethodGet, "/v1/cart", nil)

	assert.EqualValues(t, 1, decode(t, alice.do(nethttp.MethodGet, "/v1/cart", nil))["itemCount"])
	assert.EqualValues(t, 0, decode(t, bob.do(nethttp.MethodGet, "/v1/cart", nil))["itemCount"])
}

func TestCheckoutEmptyCart(t *testing.T) {
	c := newTestServer(t).client(t)

	w := c.do(nethttp.MethodPost, "/v1/checkout", nil)
	require.Equal(t, nethttp.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "empty_cart", body["error"])
	assert.Equal(t, usecase.MsgEmptyCart, body["message"])
	assert.Equal(t, "/cart", body["next"])

	w = c.do(nethttp.MethodGet, "/v1/checkout", nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}

func TestCheckoutFlow(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 10})

	w := c.do(nethttp.MethodPost, "/v1/checkout", nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	view := decode(t, w)
	assert.EqualValues(t, 1, view["step"])
	assert.Equal(t, "Transfer Bank", view["paymentLabel"])

	w = c.do(nethttp.MethodPost, "/v1/checkout/next", nil)
	require.Equal(t, nethttp.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "fullName", decode(t, w)["focus"])

	w = c.do(nethttp.MethodPatch, "/v1/checkout", gin.H{
		"fullName": "Siti Rahma",
		"email":    "siti@example.com",
		"phone":    "081298765432",
	})
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["errors"])

	w = c.do(nethttp.MethodPost, "/v1/checkout/next", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["step"])

	w = c.do(nethttp.MethodPost, "/v1/checkout/next", nil)
	require.Equal(t, nethttp.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "address", body["focus"])
	assert.Equal(t, "Kota wajib diisi", body["fields"].(map[string]any)["city"])

	w = c.do(nethttp.MethodPost, "/v1/checkout/back", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	view = decode(t, w)
	assert.EqualValues(t, 1, view["step"])
	assert.Equal(t, "siti@example.com", view["form"].(map[string]any)["email"])

	c.do(nethttp.MethodPost, "/v1/checkout/next", nil)
	c.do(nethttp.MethodPatch, "/v1/checkout", gin.H{
		"address":        "Jl. Sudirman 5",
		"city":           "Jakarta",
		"province":       "DKI Jakarta",
		"postalCode":     "10220",
		"shippingMethod": "express",
	})
	w = c.do(nethttp.MethodPost, "/v1/checkout/next", nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	view = decode(t, w)
	assert.EqualValues(t, 3, view["step"])
	assert.Equal(t, "1-2 hari kerja", view["shippingEta"])

	w = c.do(nethttp.MethodPatch, "/v1/checkout", gin.H{
		"paymentMethod": "credit_card",
		"cardNumber":    "4111111111111111",
		"cardName":      "SITI",
		"cardExpiry":    "12/29",
		"cardCVC":       "123",
		"termsAccepted": true,
	})
	require.Equal(t, nethttp.StatusOK, w.Code)
	form := decode(t, w)["form"].(map[string]any)
	assert.Equal(t, "**** 1111", form["cardNumber"])
	assert.Equal(t, "***", form["cardCVC"])

	w = c.do(nethttp.MethodPost, "/v1/checkout/next", nil, "X-Idempotency-Key", "submit-1")
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	body = decode(t, w)
	order := body["order"].(map[string]any)
	id := order["id"].(string)
	assert.True(t, strings.HasPrefix(id, "TS-"), id)
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "Kartu Kredit", order["payment"].(map[string]any)["method"])
	assert.Equal(t, "/", body["next"])
	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "Order berhasil! No. Order: "+id)
	assert.NotContains(t, w.Body.String(), "4111111111111111")

	// retried submit replays the stored order
	w = c.do(nethttp.MethodPost, "/v1/checkout/next", nil, "X-Idempotency-Key", "submit-1")
	require.Equal(t, nethttp.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, true, body["replayed"])
	assert.Equal(t, id, body["order"].(map[string]any)["id"])

	assert.EqualValues(t, 0, decode(t, c.do(nethttp.MethodGet, "/v1/cart", nil))["itemCount"])
	assert.Equal(t, nethttp.StatusNotFound, c.do(nethttp.MethodGet, "/v1/checkout", nil).Code)

	w = c.do(nethttp.MethodGet, "/v1/orders", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = c.do(nethttp.MethodGet, "/v1/orders/"+id, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, id, decode(t, w)["id"])

	assert.Equal(t, nethttp.StatusNotFound, c.do(nethttp.MethodGet, "/v1/orders/TS-0", nil).Code)
}

func TestCheckoutAbandonKeepsCart(t *testing.T) {
	c := newTestServer(t).client(t)
	c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 3})
	c.do(nethttp.MethodPost, "/v1/checkout", nil)
	c.do(nethttp.MethodPatch, "/v1/checkout", gin.H{"fullName": "X"})

	// re-entering returns the existing draft
	w := c.do(nethttp.MethodPost, "/v1/checkout", nil)
	assert.Equal(t, "X", decode(t, w)["form"].(map[string]any)["fullName"])

	w = c.do(nethttp.MethodDelete, "/v1/checkout", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "/cart", decode(t, w)["next"])

	assert.Equal(t, nethttp.StatusNotFound, c.do(nethttp.MethodGet, "/v1/checkout", nil).Code)
	assert.EqualValues(t, 1, decode(t, c.do(nethttp.MethodGet, "/v1/cart", nil))["itemCount"])
}

func TestCheckoutRejectsUnknownShippingMethod(t *testing.T) {
	c := newTestServer(t).client(t)
	c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 3})
	c.do(nethttp.MethodPost, "/v1/checkout", nil)

	w := c.do(nethttp.MethodPatch, "/v1/checkout", gin.H{"shippingMethod": "drone"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

// stalledBroker never acknowledges a publish.
type stalledBroker struct{}

func (stalledBroker) PublishOrderPlaced(ctx context.Context, _ usecase.OrderPlacedMsg) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheckoutSubmitWithStalledBroker(t *testing.T) {
	ctx := context.Background()
	store, err := repo.OpenSQLiteKVStore(ctx, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := newTestServerWith(t, serverOptions{
		store:          store,
		timeout:        100 * time.Millisecond,
		publishTimeout: 300 * time.Millisecond,
		publishers:     []usecase.OrderEventPublisher{stalledBroker{}},
	})
	c := srv.client(t)

	c.do(nethttp.MethodPost, "/v1/cart/items", gin.H{"productId": 14})
	require.Equal(t, nethttp.StatusOK, c.do(nethttp.MethodPost, "/v1/checkout", nil).Code)
	c.do(nethttp.MethodPatch, "/v1/checkout", gin.H{
		"fullName": "Siti Rahma",
		"email":    "siti@example.com",
		"phone":    "081298765432",
	})
	require.Equal(t, nethttp.StatusOK, c.do(nethttp.MethodPost, "/v1/checkout/next", nil).Code)
	c.do(nethttp.MethodPatch, "/v1/checkout", gin.H{
		"address":    "Jl. Sudirman 5",
		"city":       "Jakarta",
		"province":   "DKI Jakarta",
		"postalCode": "10220",
	})
	require.Equal(t, nethttp.StatusOK, c.do(nethttp.MethodPost, "/v1/checkout/next", nil).Code)
	c.do(nethttp.MethodPatch, "/v1/checkout", gin.H{"termsAccepted": true})

	w := c.do(nethttp.MethodPost, "/v1/checkout/next", nil, "X-Idempotency-Key", "slow-1")
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["order"].(map[string]any)["id"].(string)

	orders, err := srv.orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, id, orders[0].ID)

	w = c.do(nethttp.MethodPost, "/v1/checkout/next", nil, "X-Idempotency-Key", "slow-1")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["replayed"])

	// after a restart the stored cart no longer holds the bought items
	c.srv = newTestServerWith(t, serverOptions{store: store})
	w = c.do(nethttp.MethodGet, "/v1/cart", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["itemCount"])
}
