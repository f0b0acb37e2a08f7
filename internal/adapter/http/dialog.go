package http

import (
	"strconv"

	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

// requestDialog answers confirmations from the request and collects alerts
// for the response. A client confirms a destructive call by repeating it
// with ?confirm=true after showing the returned question.
type requestDialog struct {
	confirmed bool
	question  string
	messages  []string
}

func newDialog(c *gin.Context) *requestDialog {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return &requestDialog{confirmed: ok}
}

func (d *requestDialog) Confirm(message string) bool {
	if !d.confirmed {
		d.question = message
	}
	return d.confirmed
}

func (d *requestDialog) Alert(message string) {
	d.messages = append(d.messages, message)
}

var (
	_ usecase.Confirmer = (*requestDialog)(nil)
	_ usecase.Alerter   = (*requestDialog)(nil)
)
