package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/adapter/session"
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "X-Idempotency-Key"

type CheckoutHandler struct {
	catalog  *usecase.Catalog
	checkout *usecase.CheckoutService
	sessions *session.Registry
	timeout  time.Duration
}

func NewCheckoutHandler(catalog *usecase.Catalog, checkout *usecase.CheckoutService, sessions *session.Registry, timeout time.Duration) *CheckoutHandler {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &CheckoutHandler{catalog: catalog, checkout: checkout, sessions: sessions, timeout: timeout}
}

func (h *CheckoutHandler) view(s *session.State) checkoutView {
	return newCheckoutView(s.Checkout, s.Cart, h.checkout, h.catalog)
}

// withCheckout runs fn on the open checkout of the session.
func (h *CheckoutHandler) withCheckout(ctx context.Context, c *gin.Context, fn func(*session.State) error) error {
	return h.sessions.With(ctx, middleware.SessionID(c), func(s *session.State) error {
		if s.Checkout == nil {
			return usecase.ErrNotFound
		}
		return fn(s)
	})
}

// POST /v1/checkout
func (h *CheckoutHandler) Begin(c *gin.Context) {
	d := newDialog(c)
	var view checkoutView
	err := h.sessions.With(c.Request.Context(), middleware.SessionID(c), func(s *session.State) error {
		if s.Checkout != nil && s.Cart.IsEmpty() {
			s.Checkout = nil
		}
		if s.Checkout == nil {
			co, err := h.checkout.Begin(s.Cart, d)
			if err != nil {
				return err
			}
			s.Checkout = co
		}
		view = h.view(s)
		return nil
	})
	if err != nil {
		writeError(c, err, d)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /v1/checkout
func (h *CheckoutHandler) Get(c *gin.Context) {
	var view checkoutView
	err := h.withCheckout(c.Request.Context(), c, func(s *session.State) error {
		view = h.view(s)
		return nil
	})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PATCH /v1/checkout
func (h *CheckoutHandler) Update(c *gin.Context) {
	var patch usecase.FormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	if patch.ShippingMethod != nil && !patch.ShippingMethod.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "field": "shippingMethod"})
		return
	}

	var view checkoutView
	err := h.withCheckout(c.Request.Context(), c, func(s *session.State) error {
		s.Checkout.Update(patch)
		view = h.view(s)
		return nil
	})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /v1/checkout/next
// Steps 1 and 2 advance; a valid step 3 places the order.
func (h *CheckoutHandler) Next(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	sid := middleware.SessionID(c)
	idemKey := c.GetHeader(idempotencyHeader) // prevent duplicated orders

	if order, ok, err := h.checkout.Replayed(ctx, sid, idemKey); err != nil {
		writeError(c, err, nil)
		return
	} else if ok {
		c.JSON(http.StatusOK, gin.H{"order": order, "next": usecase.RouteHome, "replayed": true})
		return
	}

	d := newDialog(c)
	var (
		view  checkoutView
		order *domain.Order
	)
	err := h.withCheckout(ctx, c, func(s *session.State) error {
		ready, err := s.Checkout.Next()
		if err != nil {
			return err
		}
		if !ready {
			view = h.view(s)
			return nil
		}
		out, err := h.checkout.PlaceOrder(ctx, usecase.PlaceOrderInput{
			Checkout:       s.Checkout,
			Cart:           s.Cart,
			Scope:          sid,
			IdempotencyKey: idemKey,
			Alerter:        d,
		})
		if err != nil {
			return err
		}
		s.Checkout = nil
		order = &out.Order
		return nil
	})
	if err != nil {
		writeError(c, err, d)
		return
	}

	if order != nil {
		c.JSON(http.StatusCreated, gin.H{
			"order":    order,
			"messages": dialogMessages(d),
			"next":     usecase.RouteHome,
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /v1/checkout/back
func (h *CheckoutHandler) Back(c *gin.Context) {
	var view checkoutView
	err := h.withCheckout(c.Request.Context(), c, func(s *session.State) error {
		s.Checkout.Back()
		view = h.view(s)
		return nil
	})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /v1/checkout
func (h *CheckoutHandler) Abandon(c *gin.Context) {
	err := h.sessions.With(c.Request.Context(), middleware.SessionID(c), func(s *session.State) error {
		s.Checkout = nil
		return nil
	})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"next": usecase.RouteCart})
}
