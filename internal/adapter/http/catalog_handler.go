package http

import (
	"net/http"
	"strconv"

	"github.com/aq2208/gstore-api/internal/adapter/http/middleware"
	"github.com/aq2208/gstore-api/internal/adapter/session"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	featuredCount = 4
	relatedCount  = 4
)

type CatalogHandler struct {
	catalog  *usecase.Catalog
	sessions *session.Registry
}

func NewCatalogHandler(catalog *usecase.Catalog, sessions *session.Registry) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, sessions: sessions}
}

// GET /v1/home
func (h *CatalogHandler) Home(c *gin.Context) {
	var count int
	err := h.sessions.With(c.Request.Context(), middleware.SessionID(c), func(s *session.State) error {
		count = s.Cart.ItemCount()
		return nil
	})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"featured":   newProductViews(h.catalog.Featured(featuredCount)),
		"categories": h.catalog.Categories(),
		"cartCount":  count,
	})
}

// GET /v1/categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Categories()})
}

// GET /v1/products?search=&category=&price=&sort=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	q := usecase.ParseQuery(c.Request.URL.Query())
	items := h.catalog.Search(q)

	location := string(usecase.RouteCatalog)
	if v := q.Values(); len(v) > 0 {
		location += "?" + v.Encode()
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    newProductViews(items),
		"shown":    len(items),
		"total":    h.catalog.Len(),
		"location": location,
		"filtered": !q.IsZero(),
		"query": gin.H{
			"search":   q.Search,
			"category": q.Category,
			"price":    q.Price.Key,
			"sort":     q.Sort,
		},
	})
}

// GET /v1/products/:id
// Unknown ids send the client back to the listing instead of failing.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/v1/products")
		return
	}
	p, ok := h.catalog.Get(id)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/v1/products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": newProductView(p),
		"related": newProductViews(h.catalog.Related(p, relatedCount)),
	})
}
