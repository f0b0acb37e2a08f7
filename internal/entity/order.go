package domain

import (
	"errors"
	"time"
)

type Status string

// Orders are created pending and never move on; fulfilment is out of scope.
const StatusPending Status = "pending"

var ErrInvalidOrder = errors.New("invalid order")

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
}

type Customer struct {
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Address  Address `json:"address"`
}

// OrderItem is a denormalized copy of the product at submission time.
type OrderItem struct {
	ProductID int    `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

type ShippingInfo struct {
	Method string `json:"method"`
	Cost   int64  `json:"cost"`
}

type PaymentInfo struct {
	Method string `json:"method"`
}

type Order struct {
	ID         string       `json:"id"`
	Date       time.Time    `json:"date"`
	Customer   Customer     `json:"customer"`
	Items      []OrderItem  `json:"items"`
	Shipping   ShippingInfo `json:"shipping"`
	Payment    PaymentInfo  `json:"payment"`
	Totals     Totals       `json:"totals"`
	Notes      string       `json:"notes,omitempty"`
	Newsletter bool         `json:"newsletter"`
	Status     Status       `json:"status"`
}

func (o *Order) Validate() error {
	if o.ID == "" || len(o.Items) == 0 || o.Status == "" {
		return ErrInvalidOrder
	}
	return nil
}
