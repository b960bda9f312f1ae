package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/shopfront/internal/cart"
	"github.com/example/shopfront/internal/event"
	"github.com/example/shopfront/internal/identity"
	"github.com/example/shopfront/internal/infrastructure/cache"
)

const Currency = "usd"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusFailed     Status = "failed"
)

var ErrEmptyCart = errors.New("cart cannot be empty")

// Line is an order line item. Name and Price are snapshots taken from the
// cart at placement time and never change afterwards, even if the catalog
// entry does.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Total     int       `json:"total"`
	Currency  string    `json:"currency"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Lines     []Line    `json:"lines"`
}

// Store persists orders. CreateOrder must write the order and all of its
// lines atomically: all lines or none.
type Store interface {
	CreateOrder(ctx context.Context, o *Order) error
	ListOrdersByUser(ctx context.Context, userID string) ([]Order, error)
}

// Publisher is the event-bus half of placement; see kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, payload any) error
}

// OrderHistoryPath is the cached view path for a user's order history.
func OrderHistoryPath(userID string) string {
	return "/profile/orders/" + userID
}

type Service struct {
	orders Store
	views  cache.Invalidator
	events Publisher
}

func NewService(orders Store, views cache.Invalidator, events Publisher) *Service {
	return &Service{orders: orders, views: views, events: events}
}

// Result tells the caller what to do after a successful placement: clear
// the local cart and navigate to order history with a success indicator.
type Result struct {
	Order     *Order `json:"order"`
	ClearCart bool   `json:"clear_cart"`
	Redirect  string `json:"redirect"`
}

// PlaceOrder turns the cart snapshot into a persisted order.
//
// The caller must clear its cart only after observing a non-error result.
// If the response is lost after the order was durably written, a retry
// creates a duplicate order; placement is not idempotent. See DESIGN.md.
func (s *Service) PlaceOrder(ctx context.Context, caller identity.Identity, lines []cart.Line) (*Result, error) {
	if !caller.Present() {
		return nil, identity.ErrUnauthenticated
	}

	total := 0
	for _, l := range lines {
		total += l.UnitPrice * l.Quantity
	}
	if total <= 0 {
		return nil, ErrEmptyCart
	}

	order := &Order{
		ID:        uuid.New().String(),
		UserID:    caller.ID,
		Total:     total,
		Currency:  Currency,
		Status:    StatusProcessing,
		CreatedAt: time.Now(),
		Lines:     make([]Line, 0, len(lines)),
	}
	for _, l := range lines {
		order.Lines = append(order.Lines, Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	// The cart is left untouched on failure so the user can retry.
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is durable from here on; event and invalidation failures
	// are logged, not surfaced, so the caller never sees an ambiguous
	// outcome for a written order.
	if err := s.events.Publish(ctx, order.ID, event.TypeOrderPlaced, OrderPlaced{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Total:    order.Total,
		Currency: order.Currency,
		Lines:    order.Lines,
		PlacedAt: order.CreatedAt,
	}); err != nil {
		log.Printf("[Checkout] Failed to publish OrderPlaced for %s: %v", order.ID, err)
	}

	if err := s.views.Invalidate(ctx, OrderHistoryPath(caller.ID)); err != nil {
		log.Printf("[Checkout] Failed to invalidate order history for %s: %v", caller.ID, err)
	}

	return &Result{
		Order:     order,
		ClearCart: true,
		Redirect:  "/profile/orders?status=success",
	}, nil
}

// ListOrders returns the caller's orders, newest first, lines included.
func (s *Service) ListOrders(ctx context.Context, caller identity.Identity) ([]Order, error) {
	if !caller.Present() {
		return nil, identity.ErrUnauthenticated
	}
	orders, err := s.orders.ListOrdersByUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
