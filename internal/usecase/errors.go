package usecase

import (
	"errors"
	"strings"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNotFound        = errors.New("not found")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrNotReady        = errors.New("checkout is not on the payment step")
	ErrDuplicateSubmit = errors.New("duplicate idempotency key")
)

// Message shown to the shopper when checkout is attempted with an empty cart.
const MsgEmptyCart = "Keranjang belanja kosong. Silakan tambahkan produk terlebih dahulu."

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the failing fields of a checkout step in form order.
type ValidationError struct {
	Step   Step
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// FirstField is where the view should move focus.
func (e *ValidationError) FirstField() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Field
}

func (e *ValidationError) Map() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// IsPrecondition reports errors that block an action without being tied to
// a form field.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrNotReady) || errors.Is(err, ErrDuplicateSubmit)
}
