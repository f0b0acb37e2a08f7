package http

import (
	"log/slog"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrderHandler
}

func NewRouter(h Handlers, sessions *middleware.Sessions, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	if log == nil {
		log = logging.New("http")
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1", sessions.Attach(), middleware.Logging(log))
	{
		v1.GET("/home", h.Catalog.Home)
		v1.GET("/categories", h.Catalog.Categories)
		v1.GET("/products", h.Catalog.ListProducts)
		v1.GET("/products/:id", h.Catalog.GetProduct)

		v1.GET("/cart", h.Cart.GetCart)
		v1.POST("/cart/items", h.Cart.AddItem)
		v1.POST("/cart/buy-now", h.Cart.BuyNow)
		v1.PATCH("/cart/items/:id", h.Cart.UpdateQuantity)
		v1.DELETE("/cart/items/:id", h.Cart.RemoveItem)
		v1.DELETE("/cart", h.Cart.ClearCart)

		v1.POST("/checkout", h.Checkout.Begin)
		v1.GET("/checkout", h.Checkout.Get)
		v1.PATCH("/checkout", h.Checkout.Update)
		v1.POST("/checkout/next", h.Checkout.Next)
		v1.POST("/checkout/back", h.Checkout.Back)
		v1.DELETE("/checkout", h.Checkout.Abandon)

		v1.GET("/orders", h.Orders.ListOrders)
		v1.GET("/orders/:id", h.Orders.GetOrderByID)
	}

	return r
}
