package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopfront/internal/checkout"
	"github.com/example/shopfront/internal/identity"
)

type fakeStore struct {
	revenue int
	sales   int
	orders  []checkout.Order
}

func (f *fakeStore) RevenueAndSales(_ context.Context) (int, int, error) {
	return f.revenue, f.sales, nil
}

func (f *fakeStore) CountProducts(_ context.Context) (int, error) { return 12, nil }

func (f *fakeStore) CountUsers(_ context.Context) (int, error) { return 4, nil }

func (f *fakeStore) RecentOrders(_ context.Context, limit int) ([]checkout.Order, error) {
	if len(f.orders) > limit {
		return f.orders[:limit], nil
	}
	return f.orders, nil
}

func TestService_Dashboard(t *testing.T) {
	store := &fakeStore{revenue: 3500, sales: 3, orders: []checkout.Order{{ID: "o1"}, {ID: "o2"}}}
	svc := NewService(store)

	metrics, err := svc.Dashboard(context.Background(), identity.Identity{ID: "admin-1", Role: identity.RoleAdmin})

	require.NoError(t, err)
	assert.Equal(t, 3500, metrics.TotalRevenue)
	assert.Equal(t, 3, metrics.SaleCount)
	assert.Equal(t, 12, metrics.ProductCount)
	assert.Equal(t, 4, metrics.UserCount)
	assert.Len(t, metrics.RecentOrders, 2)
}

func TestService_Dashboard_Gates(t *testing.T) {
	svc := NewService(&fakeStore{})
	ctx := context.Background()

	_, err := svc.Dashboard(ctx, identity.Identity{})
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)

	_, err = svc.Dashboard(ctx, identity.Identity{ID: "user-1", Role: identity.RoleUser})
	assert.ErrorIs(t, err, identity.ErrForbidden)
}
