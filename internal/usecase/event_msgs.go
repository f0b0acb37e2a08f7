package usecase

import "time"

// Published after an order has been appended to the order log.
type OrderPlacedMsg struct {
	OrderID    string    `json:"orderId"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	ItemCount  int       `json:"itemCount"`
	Total      string    `json:"total"`
	Payment    string    `json:"payment"`
	Newsletter bool      `json:"newsletter"`
	PlacedAt   time.Time `json:"placedAt"`
}
