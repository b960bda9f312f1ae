package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/shopfront/internal/identity"
	"github.com/example/shopfront/internal/infrastructure/cache"
	"github.com/example/shopfront/internal/validate"
)

const minCommentLength = 10

var (
	ErrNotPurchased = errors.New("product was not purchased by this user")
	ErrDuplicate    = errors.New("product was already reviewed by this user")
)

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists reviews. CreateReview must return ErrDuplicate when the
// unique (user, product) key is violated, so a race between two identical
// submissions still yields exactly one review.
type Store interface {
	// HasPurchased reports whether the user has an order containing the
	// product with status paid or processing.
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)
	HasReview(ctx context.Context, userID, productID string) (bool, error)
	CreateReview(ctx context.Context, r Review) error
	ListForProduct(ctx context.Context, productID string) ([]Review, error)
}

type Service struct {
	store Store
	views cache.Invalidator
}

func NewService(store Store, views cache.Invalidator) *Service {
	return &Service{store: store, views: views}
}

// Submission is the review form input.
type Submission struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Submit creates a review after the gates pass: identity present, product
// purchased, no prior review. Field violations are reported per field.
func (s *Service) Submit(ctx context.Context, caller identity.Identity, in Submission) (*Review, error) {
	if !caller.Present() {
		return nil, identity.ErrUnauthenticated
	}

	fields := validate.FieldErrors{}
	if in.ProductID == "" {
		fields.Add("product_id", "Product is required.")
	}
	if in.Rating < 1 || in.Rating > 5 {
		fields.Add("rating", "Rating must be between 1 and 5.")
	}
	if len(in.Comment) < minCommentLength {
		fields.Add("comment", "Comment must be at least 10 characters long.")
	}
	if fields.Any() {
		return nil, fields
	}

	purchased, err := s.store.HasPurchased(ctx, caller.ID, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("purchase check: %w", err)
	}
	if !purchased {
		return nil, ErrNotPurchased
	}

	exists, err := s.store.HasReview(ctx, caller.ID, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return nil, ErrDuplicate
	}

	r := Review{
		ID:        uuid.New().String(),
		UserID:    caller.ID,
		ProductID: in.ProductID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: time.Now(),
	}
	// The unique key is the real guard; the HasReview check above only
	// gives the common case a friendlier path.
	if err := s.store.CreateReview(ctx, r); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.views.Invalidate(ctx, "/products/"+in.ProductID); err != nil {
		log.Printf("[Review] Failed to invalidate product view %s: %v", in.ProductID, err)
	}
	return &r, nil
}

// ListForProduct returns the reviews shown on a product page.
func (s *Service) ListForProduct(ctx context.Context, productID string) ([]Review, error) {
	reviews, err := s.store.ListForProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
