package http

import (
	"errors"
	"net/http"

	"github.com/aq2208/gstore-api/internal/logging"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

var errConfirmationRequired = errors.New("confirmation required")

// writeError maps use case errors onto status codes.
func writeError(c *gin.Context, err error, d *requestDialog) {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_failed",
			"step":   int(verr.Step),
			"fields": verr.Map(),
			"order":  verr.Fields,
			"focus":  verr.FirstField(),
		})
	case errors.Is(err, errConfirmationRequired):
		c.JSON(http.StatusConflict, gin.H{"error": "confirmation_required", "message": d.question})
	case errors.Is(err, usecase.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "empty_cart",
			"message":  usecase.MsgEmptyCart,
			"messages": dialogMessages(d),
			"next":     usecase.RouteCart,
		})
	case errors.Is(err, usecase.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "out_of_stock"})
	case errors.Is(err, usecase.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "checkout_not_ready"})
	case errors.Is(err, usecase.ErrDuplicateSubmit):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_submit"})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	default:
		_ = c.Error(err)
		logging.From(c).Error("request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
	}
}

func dialogMessages(d *requestDialog) []string {
	if d == nil || d.messages == nil {
		return []string{}
	}
	return d.messages
}
