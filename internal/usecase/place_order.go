package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/logging"
)

const defaultPublishTimeout = 5 * time.Second

type PlaceOrderInput struct {
	Checkout       *Checkout
	Cart           *Cart
	Scope          string // idempotency scope, normally the session id
	IdempotencyKey string
	Alerter        Alerter
}

type PlaceOrderOutput struct {
	Order domain.Order
	Next  Route
}

// CheckoutService owns the transitions that need more than the form:
// entering checkout with a cart and turning a finished form into an order.
type CheckoutService struct {
	catalog *Catalog
	orders  *OrderLog
	idem    IdempotencyStore
	ids     *OrderIDGenerator
	events  []OrderEventPublisher
	now     func() time.Time

	publishTimeout time.Duration
}

func NewCheckoutService(catalog *Catalog, orders *OrderLog, idem IdempotencyStore, ids *OrderIDGenerator, events ...OrderEventPublisher) *CheckoutService {
	if ids == nil {
		ids = NewOrderIDGenerator(nil)
	}
	return &CheckoutService{
		catalog: catalog,
		orders:  orders,
		idem:    idem,
		ids:     ids,
		events:  events,
		now:     time.Now,

		publishTimeout: defaultPublishTimeout,
	}
}

// WithClock replaces the time source used for order dates.
func (s *CheckoutService) WithClock(now func() time.Time) *CheckoutService {
	s.now = now
	return s
}

// Begin opens a checkout for cart. An empty cart is refused and the shopper
// is told why.
func (s *CheckoutService) Begin(cart *Cart, alert Alerter) (*Checkout, error) {
	if cart.IsEmpty() {
		if alert != nil {
			alert.Alert(MsgEmptyCart)
		}
		return nil, ErrEmptyCart
	}
	return NewCheckout(), nil
}

// WithPublishTimeout bounds the time spent handing the order to each
// event publisher.
func (s *CheckoutService) WithPublishTimeout(d time.Duration) *CheckoutService {
	if d > 0 {
		s.publishTimeout = d
	}
	return s
}

// Quote prices the cart with the shipping method chosen on the form.
func (s *CheckoutService) Quote(cart *Cart, co *Checkout) domain.Totals {
	return Quote(cart.Lines(), s.catalog, co.ShippingMethod())
}

// Replayed looks up the order already placed under an idempotency key.
func (s *CheckoutService) Replayed(ctx context.Context, scope, key string) (domain.Order, bool, error) {
	if s.idem == nil || key == "" {
		return domain.Order{}, false, nil
	}
	id, ok, err := s.idem.Recall(ctx, scope, key)
	if err != nil || !ok {
		return domain.Order{}, false, err
	}
	o, err := s.orders.Find(ctx, id)
	if err != nil {
		return domain.Order{}, false, err
	}
	return o, true, nil
}

// PlaceOrder submits a checkout that is on the payment step. The order is
// appended to the log, the cart is emptied and the checkout is finished.
func (s *CheckoutService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (PlaceOrderOutput, error) {
	co := in.Checkout
	if co == nil || co.Step() != StepPayment {
		return PlaceOrderOutput{}, ErrNotReady
	}
	if in.Cart.IsEmpty() {
		if in.Alerter != nil {
			in.Alerter.Alert(MsgEmptyCart)
		}
		return PlaceOrderOutput{}, ErrEmptyCart
	}
	if err := co.validateAll(); err != nil {
		return PlaceOrderOutput{}, err
	}

	idem := s.idem != nil && in.IdempotencyKey != ""
	if idem {
		ok, err := s.idem.TryLock(ctx, in.Scope, in.IdempotencyKey)
		if err != nil {
			return PlaceOrderOutput{}, err
		}
		if !ok {
			return PlaceOrderOutput{}, ErrDuplicateSubmit
		}
	}

	l := logging.FromCtx(ctx)
	order := s.buildOrder(in.Cart, co)
	if err := s.orders.Append(ctx, order); err != nil {
		if idem {
			if rerr := s.idem.Release(context.WithoutCancel(ctx), in.Scope, in.IdempotencyKey); rerr != nil {
				l.Warn("release idempotency key", "err", rerr)
			}
		}
		return PlaceOrderOutput{}, fmt.Errorf("append order: %w", err)
	}
	in.Cart.Clear()
	co.markSubmitted()
	ordersPlaced.Inc()

	// the order is stored; what follows must not depend on the request deadline
	bg := context.WithoutCancel(ctx)
	l.Info("order placed", "order_id", order.ID, "items", len(order.Items), "total", order.Totals.Total.String())

	msg := OrderPlacedMsg{
		OrderID:    order.ID,
		Email:      order.Customer.Email,
		FullName:   order.Customer.FullName,
		ItemCount:  itemCount(order.Items),
		Total:      order.Totals.Total.String(),
		Payment:    order.Payment.Method,
		Newsletter: order.Newsletter,
		PlacedAt:   order.Date,
	}
	if idem {
		if err := s.idem.Remember(bg, in.Scope, in.IdempotencyKey, order.ID); err != nil {
			l.Warn("remember idempotency key", "order_id", order.ID, "err", err)
		}
	}
	for _, p := range s.events {
		s.publish(bg, p, msg)
	}

	if in.Alerter != nil {
		in.Alerter.Alert(fmt.Sprintf("🎉 Order berhasil! No. Order: %s\nSilakan cek email %s untuk detail pembayaran.",
			order.ID, order.Customer.Email))
	}
	return PlaceOrderOutput{Order: order, Next: RouteHome}, nil
}

// publish is best effort: the order is already stored.
func (s *CheckoutService) publish(ctx context.Context, p OrderEventPublisher, msg OrderPlacedMsg) {
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := p.PublishOrderPlaced(ctx, msg); err != nil {
		logging.FromCtx(ctx).Warn("publish order placed", "order_id", msg.OrderID, "err", err)
	}
}

func (s *CheckoutService) buildOrder(cart *Cart, co *Checkout) domain.Order {
	f := co.Form()
	lines := cart.Lines()
	totals := Quote(lines, s.catalog, f.ShippingMethod)

	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		p, ok := s.catalog.Get(l.ProductID)
		if !ok {
			continue
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  l.Quantity,
		})
	}

	return domain.Order{
		ID:   s.ids.Next(),
		Date: s.now().UTC(),
		Customer: domain.Customer{
			FullName: f.FullName,
			Email:    f.Email,
			Phone:    f.Phone,
			Address: domain.Address{
				Street:     f.Address,
				City:       f.City,
				Province:   f.Province,
				PostalCode: f.PostalCode,
			},
		},
		Items:      items,
		Shipping:   domain.ShippingInfo{Method: f.ShippingMethod.Label(), Cost: totals.Shipping},
		Payment:    domain.PaymentInfo{Method: f.PaymentMethod.OrderLabel()},
		Totals:     totals,
		Notes:      f.Notes,
		Newsletter: f.Newsletter,
		Status:     domain.StatusPending,
	}
}

func itemCount(items []domain.OrderItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
