package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/shopfront/internal/review"
)

// ReviewStore implements review.Store on PostgreSQL.
type ReviewStore struct {
	db *sql.DB
}

func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// HasPurchased checks for an order of the user containing the product
// with status paid or processing.
func (s *ReviewStore) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	var purchased bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM orders o
		     JOIN order_items i ON i.order_id = o.id
		     WHERE o.user_id = $1 AND i.product_id = $2
		       AND o.status IN ('paid', 'processing')
		 )`,
		userID, productID,
	).Scan(&purchased)
	if err != nil {
		return false, fmt.Errorf("purchase check: %w", err)
	}
	return purchased, nil
}

func (s *ReviewStore) HasReview(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)",
		userID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("review check: %w", err)
	}
	return exists, nil
}

// CreateReview inserts the review; the unique (user, product) key turns a
// racing duplicate into review.ErrDuplicate.
func (s *ReviewStore) CreateReview(ctx context.Context, r review.Review) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (id, user_id, product_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.UserID, r.ProductID, r.Rating, r.Comment, r.CreatedAt,
	)
	if isUniqueViolation(err) {
		return review.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (s *ReviewStore) ListForProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, product_id, rating, comment, created_at
		 FROM reviews WHERE product_id = $1
		 ORDER BY created_at DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []review.Review{}
	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
