package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopfront/internal/cart"
	"github.com/example/shopfront/internal/event"
	"github.com/example/shopfront/internal/identity"
)

// fakeOrderStore records orders and can be made to fail.
type fakeOrderStore struct {
	Created   []*Order
	createErr error
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, o *Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.Created = append(f.Created, o)
	return nil
}

func (f *fakeOrderStore) ListOrdersByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range f.Created {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type publishCall struct {
	Key       string
	EventType string
	Payload   any
}

type fakePublisher struct {
	Calls []publishCall
}

func (f *fakePublisher) Publish(_ context.Context, key, eventType string, payload any) error {
	f.Calls = append(f.Calls, publishCall{Key: key, EventType: eventType, Payload: payload})
	return nil
}

type fakeViews struct {
	Invalidated []string
}

func (f *fakeViews) Invalidate(_ context.Context, paths ...string) error {
	f.Invalidated = append(f.Invalidated, paths...)
	return nil
}

func newTestService() (*Service, *fakeOrderStore, *fakeViews, *fakePublisher) {
	orders := &fakeOrderStore{}
	views := &fakeViews{}
	events := &fakePublisher{}
	return NewService(orders, views, events), orders, views, events
}

var buyer = identity.Identity{ID: "user-123", Email: "buyer@example.com", Role: identity.RoleUser}

// ============================================
// PlaceOrder Tests
// ============================================

func TestService_PlaceOrder_Success(t *testing.T) {
	svc, orders, views, events := newTestService()

	result, err := svc.PlaceOrder(context.Background(), buyer, []cart.Line{
		{ProductID: "A", Name: "Smartphone X", UnitPrice: 500, Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, orders.Created, 1)

	placed := orders.Created[0]
	assert.Equal(t, "user-123", placed.UserID)
	assert.Equal(t, 500, placed.Total)
	assert.Equal(t, Currency, placed.Currency)
	assert.Equal(t, StatusProcessing, placed.Status)
	require.Len(t, placed.Lines, 1)
	assert.Equal(t, Line{ProductID: "A", Name: "Smartphone X", Price: 500, Quantity: 1}, placed.Lines[0])

	assert.True(t, result.ClearCart)
	assert.Equal(t, "/profile/orders?status=success", result.Redirect)
	assert.Equal(t, []string{OrderHistoryPath("user-123")}, views.Invalidated)

	require.Len(t, events.Calls, 1)
	assert.Equal(t, event.TypeOrderPlaced, events.Calls[0].EventType)
	assert.Equal(t, placed.ID, events.Calls[0].Key)
}

func TestService_PlaceOrder_TotalSnapshotsCart(t *testing.T) {
	svc, orders, _, _ := newTestService()

	lines := []cart.Line{
		{ProductID: "A", Name: "Smartphone X", UnitPrice: 500, Quantity: 2},
		{ProductID: "B", Name: "Case", UnitPrice: 150, Quantity: 3},
	}
	_, err := svc.PlaceOrder(context.Background(), buyer, lines)

	require.NoError(t, err)
	assert.Equal(t, 2*500+3*150, orders.Created[0].Total)

	// Mutating the cart afterwards must not affect the stored snapshot.
	lines[0].UnitPrice = 1
	assert.Equal(t, 500, orders.Created[0].Lines[0].Price)
}

func TestService_PlaceOrder_EmptyCart(t *testing.T) {
	svc, orders, views, events := newTestService()

	_, err := svc.PlaceOrder(context.Background(), buyer, nil)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, orders.Created)
	assert.Empty(t, views.Invalidated)
	assert.Empty(t, events.Calls)
}

func TestService_PlaceOrder_Unauthenticated(t *testing.T) {
	svc, orders, _, _ := newTestService()

	_, err := svc.PlaceOrder(context.Background(), identity.Identity{}, []cart.Line{
		{ProductID: "A", UnitPrice: 500, Quantity: 1},
	})

	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
	assert.Empty(t, orders.Created)
}

func TestService_PlaceOrder_StoreFailure(t *testing.T) {
	svc, orders, views, events := newTestService()
	orders.createErr = errors.New("connection refused")

	_, err := svc.PlaceOrder(context.Background(), buyer, []cart.Line{
		{ProductID: "A", UnitPrice: 500, Quantity: 1},
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyCart)
	// Nothing downstream fires when the write failed.
	assert.Empty(t, views.Invalidated)
	assert.Empty(t, events.Calls)
}

// ============================================
// ListOrders Tests
// ============================================

func TestService_ListOrders(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, buyer, []cart.Line{{ProductID: "A", UnitPrice: 500, Quantity: 1}})
	require.NoError(t, err)

	orders, err := svc.ListOrders(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = svc.ListOrders(ctx, identity.Identity{})
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}
