package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/example/shopfront/internal/catalog"
)

// WishlistStore implements wishlist.Store on PostgreSQL. Presence flips
// are single conditional statements, so each half of a toggle is atomic
// and two racing toggles cannot both insert or both delete.
type WishlistStore struct {
	db *sql.DB
}

func NewWishlistStore(db *sql.DB) *WishlistStore {
	return &WishlistStore{db: db}
}

// Add inserts the pair if absent; reports whether a row was inserted.
func (s *WishlistStore) Add(ctx context.Context, userID, productID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO wishlist_items (user_id, product_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("wishlist insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("wishlist insert result: %w", err)
	}
	return n == 1, nil
}

// Remove deletes the pair if present; reports whether a row was deleted.
func (s *WishlistStore) Remove(ctx context.Context, userID, productID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2",
		userID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("wishlist delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("wishlist delete result: %w", err)
	}
	return n == 1, nil
}

// ProductIDs returns the subset of filter that is in the user's wishlist.
func (s *WishlistStore) ProductIDs(ctx context.Context, userID string, filter []string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id FROM wishlist_items
		 WHERE user_id = $1 AND product_id = ANY($2)`,
		userID, pq.Array(filter),
	)
	if err != nil {
		return nil, fmt.Errorf("wishlist product ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan wishlist id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Products returns the user's wishlisted products, most recently added
// first.
func (s *WishlistStore) Products(ctx context.Context, userID string) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.description, p.price, p.category_id, p.images, p.created_at
		 FROM wishlist_items w
		 JOIN products p ON p.id = w.product_id
		 WHERE w.user_id = $1
		 ORDER BY w.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("wishlist products: %w", err)
	}
	defer rows.Close()

	products := []catalog.Product{}
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, pq.Array(&p.Images), &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
