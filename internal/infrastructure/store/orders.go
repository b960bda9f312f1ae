package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/shopfront/internal/checkout"
)

// OrderStore implements checkout.Store and the order-side admin queries on
// PostgreSQL.
type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// CreateOrder writes the order and all of its lines in one transaction:
// all lines or none.
func (s *OrderStore) CreateOrder(ctx context.Context, o *checkout.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, total, currency, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.UserID, o.Total, o.Currency, o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range o.Lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, name, price, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			o.ID, line.ProductID, line.Name, line.Price, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order line %s: %w", line.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// ListOrdersByUser returns the user's orders newest first, lines included.
func (s *OrderStore) ListOrdersByUser(ctx context.Context, userID string) ([]checkout.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.user_id, o.total, o.currency, o.status, o.created_at,
		        i.product_id, i.name, i.price, i.quantity
		 FROM orders o
		 JOIN order_items i ON i.order_id = o.id
		 WHERE o.user_id = $1
		 ORDER BY o.created_at DESC, i.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []checkout.Order{}
	index := map[string]int{}
	for rows.Next() {
		var (
			o    checkout.Order
			line checkout.Line
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Currency, &o.Status, &o.CreatedAt,
			&line.ProductID, &line.Name, &line.Price, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		i, ok := index[o.ID]
		if !ok {
			i = len(orders)
			index[o.ID] = i
			orders = append(orders, o)
		}
		orders[i].Lines = append(orders[i].Lines, line)
	}
	return orders, rows.Err()
}

// RevenueAndSales sums and counts the orders with status paid or
// processing.
func (s *OrderStore) RevenueAndSales(ctx context.Context) (int, int, error) {
	var revenue, sales int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0), COUNT(*)
		 FROM orders WHERE status IN ('paid', 'processing')`,
	).Scan(&revenue, &sales)
	if err != nil {
		return 0, 0, fmt.Errorf("revenue and sales: %w", err)
	}
	return revenue, sales, nil
}

// RecentOrders returns the latest qualifying orders for the dashboard,
// without lines.
func (s *OrderStore) RecentOrders(ctx context.Context, limit int) ([]checkout.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, total, currency, status, created_at
		 FROM orders
		 WHERE status IN ('paid', 'processing')
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	defer rows.Close()

	orders := []checkout.Order{}
	for rows.Next() {
		var o checkout.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Currency, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
