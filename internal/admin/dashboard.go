package admin

import (
	"context"
	"fmt"

	"github.com/example/shopfront/internal/checkout"
	"github.com/example/shopfront/internal/identity"
)

// recentOrderCount is the number of recent sales shown on the dashboard.
const recentOrderCount = 5

// Metrics is the admin dashboard summary. Revenue and sale counts only
// consider orders with status paid or processing.
type Metrics struct {
	TotalRevenue int              `json:"total_revenue"`
	SaleCount    int              `json:"sale_count"`
	ProductCount int              `json:"product_count"`
	UserCount    int              `json:"user_count"`
	RecentOrders []checkout.Order `json:"recent_orders"`
}

type Store interface {
	RevenueAndSales(ctx context.Context) (revenue, sales int, err error)
	CountProducts(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
	RecentOrders(ctx context.Context, limit int) ([]checkout.Order, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Dashboard assembles the metrics for an admin caller.
func (s *Service) Dashboard(ctx context.Context, caller identity.Identity) (*Metrics, error) {
	if !caller.Present() {
		return nil, identity.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return nil, identity.ErrForbidden
	}

	revenue, sales, err := s.store.RevenueAndSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("revenue: %w", err)
	}
	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product count: %w", err)
	}
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("user count: %w", err)
	}
	recent, err := s.store.RecentOrders(ctx, recentOrderCount)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}

	return &Metrics{
		TotalRevenue: revenue,
		SaleCount:    sales,
		ProductCount: products,
		UserCount:    users,
		RecentOrders: recent,
	}, nil
}
