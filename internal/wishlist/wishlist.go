package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/shopfront/internal/catalog"
	"github.com/example/shopfront/internal/identity"
	"github.com/example/shopfront/internal/infrastructure/cache"
)

var ErrInvalidProduct = errors.New("product_id is required")

type Status string

const (
	StatusAdded   Status = "added"
	StatusRemoved Status = "removed"
)

// Store is the persisted (user, product) presence set. Add and Remove are
// each a single atomic storage operation: Add reports false when the pair
// already exists, Remove reports false when it does not. Two racing
// toggles therefore cannot both insert or both delete.
type Store interface {
	Add(ctx context.Context, userID, productID string) (bool, error)
	Remove(ctx context.Context, userID, productID string) (bool, error)
	ProductIDs(ctx context.Context, userID string, filter []string) ([]string, error)
	Products(ctx context.Context, userID string) ([]catalog.Product, error)
}

type Service struct {
	store Store
	views cache.Invalidator
}

func NewService(store Store, views cache.Invalidator) *Service {
	return &Service{store: store, views: views}
}

// Path is the cached view path for a user's wishlist page.
func Path(userID string) string {
	return "/profile/wishlist/" + userID
}

// Toggle flips the product's presence in the caller's wishlist and reports
// which way it went. Called twice in succession it restores the original
// membership state.
func (s *Service) Toggle(ctx context.Context, caller identity.Identity, productID string) (Status, error) {
	if !caller.Present() {
		return "", identity.ErrUnauthenticated
	}
	if productID == "" {
		return "", ErrInvalidProduct
	}

	added, err := s.store.Add(ctx, caller.ID, productID)
	if err != nil {
		return "", fmt.Errorf("wishlist add: %w", err)
	}

	status := StatusAdded
	if !added {
		// Already present: this toggle removes. If another toggle removed
		// the pair in between, the end state is still "absent".
		if _, err := s.store.Remove(ctx, caller.ID, productID); err != nil {
			return "", fmt.Errorf("wishlist remove: %w", err)
		}
		status = StatusRemoved
	}

	if err := s.views.Invalidate(ctx, Path(caller.ID), "/products/"+productID); err != nil {
		log.Printf("[Wishlist] Failed to invalidate views for %s: %v", caller.ID, err)
	}
	return status, nil
}

// StatusFor reports which of the given products are in the caller's
// wishlist. Without an identity nothing is wishlisted; that is not an
// error.
func (s *Service) StatusFor(ctx context.Context, caller identity.Identity, productIDs []string) (map[string]bool, error) {
	status := make(map[string]bool, len(productIDs))
	if !caller.Present() || len(productIDs) == 0 {
		return status, nil
	}

	ids, err := s.store.ProductIDs(ctx, caller.ID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("wishlist status: %w", err)
	}
	for _, id := range ids {
		status[id] = true
	}
	return status, nil
}

// List returns the caller's wishlisted products.
func (s *Service) List(ctx context.Context, caller identity.Identity) ([]catalog.Product, error) {
	if !caller.Present() {
		return nil, identity.ErrUnauthenticated
	}
	products, err := s.store.Products(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("wishlist products: %w", err)
	}
	return products, nil
}
