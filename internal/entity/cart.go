package domain

const (
	MinQuantity = 1
	MaxQuantity = 99
)

type CartLine struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// ClampQuantity forces q into [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
