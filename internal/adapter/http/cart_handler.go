package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/adapter/session"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	catalog  *usecase.Catalog
	sessions *session.Registry
}

func NewCartHandler(catalog *usecase.Catalog, sessions *session.Registry) *CartHandler {
	return &CartHandler{catalog: catalog, sessions: sessions}
}

type addItemReq struct {
	ProductID int `json:"productId" binding:"required"`
	Quantity  int `json:"quantity"`
}

// quantityReq accepts the quantity as a JSON number or as raw input text.
type quantityReq struct {
	Quantity json.RawMessage `json:"quantity"`
}

func (r quantityReq) text() string {
	raw := bytes.TrimSpace(r.Quantity)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (h *CartHandler) with(c *gin.Context, fn func(*session.State) error) error {
	return h.sessions.With(c.Request.Context(), middleware.SessionID(c), fn)
}

// GET /v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	var view cartView
	err := h.with(c, func(s *session.State) error {
		view = newCartView(s.Cart, h.catalog)
		return nil
	})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /v1/cart/items
// Without a quantity this is the product card "add" button; with one it is
// the product page, which adds min(quantity, stock) units and says so.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	p, ok := h.catalog.Get(req.ProductID)
	if !ok {
		writeError(c, usecase.ErrNotFound, nil)
		return
	}
	if !p.InStock() {
		writeError(c, usecase.ErrOutOfStock, nil)
		return
	}

	d := newDialog(c)
	var view cartView
	err := h.with(c, func(s *session.State) error {
		if req.Quantity > 0 {
			n := s.Cart.AddN(p, req.Quantity)
			d.Alert(fmt.Sprintf("✅ %d %s telah ditambahkan ke keranjang!", n, p.Name))
		} else {
			s.Cart.Add(p)
		}
		usecase.CountCartMutation("add")
		view = newCartView(s.Cart, h.catalog)
		return nil
	})
	if err != nil {
		writeError(c, err, d)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view, "messages": dialogMessages(d)})
}

// POST /v1/cart/buy-now
func (h *CartHandler) BuyNow(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	p, ok := h.catalog.Get(req.ProductID)
	if !ok {
		writeError(c, usecase.ErrNotFound, nil)
		return
	}
	if !p.InStock() {
		writeError(c, usecase.ErrOutOfStock, nil)
		return
	}

	var view cartView
	err := h.with(c, func(s *session.State) error {
		s.Cart.Add(p)
		usecase.CountCartMutation("add")
		view = newCartView(s.Cart, h.catalog)
		return nil
	})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view, "next": usecase.RouteCart})
}

// PATCH /v1/cart/items/:id
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, usecase.ErrNotFound, nil)
		return
	}
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	var view cartView
	err = h.with(c, func(s *session.State) error {
		if !s.Cart.UpdateQuantityText(id, req.text()) {
			return usecase.ErrNotFound
		}
		usecase.CountCartMutation("update")
		view = newCartView(s.Cart, h.catalog)
		return nil
	})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /v1/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, usecase.ErrNotFound, nil)
		return
	}

	d := newDialog(c)
	var view cartView
	err = h.with(c, func(s *session.State) error {
		if s.Cart.Quantity(id) == 0 {
			return usecase.ErrNotFound
		}
		name := strconv.Itoa(id)
		if p, ok := h.catalog.Get(id); ok {
			name = p.Name
		}
		if !d.Confirm(fmt.Sprintf("Hapus %s dari keranjang?", name)) {
			return errConfirmationRequired
		}
		s.Cart.Remove(id)
		usecase.CountCartMutation("remove")
		view = newCartView(s.Cart, h.catalog)
		return nil
	})
	if err != nil {
		writeError(c, err, d)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	d := newDialog(c)
	var view cartView
	err := h.with(c, func(s *session.State) error {
		if s.Cart.IsEmpty() {
			view = newCartView(s.Cart, h.catalog)
			return nil
		}
		if !d.Confirm("Yakin ingin menghapus semua item dari keranjang?") {
			return errConfirmationRequired
		}
		s.Cart.Clear()
		usecase.CountCartMutation("clear")
		view = newCartView(s.Cart, h.catalog)
		return nil
	})
	if err != nil {
		writeError(c, err, d)
		return
	}
	c.JSON(http.StatusOK, view)
}
