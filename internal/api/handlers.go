package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/shopfront/internal/api/middleware"
	"github.com/example/shopfront/internal/cart"
	"github.com/example/shopfront/internal/catalog"
	"github.com/example/shopfront/internal/checkout"
	"github.com/example/shopfront/internal/identity"
	"github.com/example/shopfront/internal/review"
	"github.com/example/shopfront/internal/wishlist"
)

// ViewCache holds rendered response payloads keyed by view path; see
// cache.Views.
type ViewCache interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Set(ctx context.Context, path string, payload []byte) error
}

type Handlers struct {
	carts    *cart.Manager
	catalog  *catalog.Service
	checkout *checkout.Service
	wishlist *wishlist.Service
	reviews  *review.Service
	views    ViewCache
}

func NewHandlers(carts *cart.Manager, catalogSvc *catalog.Service, checkoutSvc *checkout.Service, wishlistSvc *wishlist.Service, reviewSvc *review.Service, views ViewCache) *Handlers {
	return &Handlers{
		carts:    carts,
		catalog:  catalogSvc,
		checkout: checkoutSvc,
		wishlist: wishlistSvc,
		reviews:  reviewSvc,
		views:    views,
	}
}

// visitorCart opens the cart belonging to the request's visitor cookie.
func (h *Handlers) visitorCart(r *http.Request) (*cart.Store, error) {
	return h.carts.Get(r.Context(), middleware.VisitorID(r.Context()))
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.visitorCart(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": store.Lines(),
		"total": store.Total(),
	})
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var item cart.Line
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	store, err := h.visitorCart(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := store.Add(r.Context(), item); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": store.Lines(),
		"total": store.Total(),
	})
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	store, err := h.visitorCart(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := store.SetQuantity(r.Context(), chi.URLParam(r, "productID"), req.Quantity); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": store.Lines(),
		"total": store.Total(),
	})
}

func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.visitorCart(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := store.Remove(r.Context(), chi.URLParam(r, "productID")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": store.Lines(),
		"total": store.Total(),
	})
}

// Catalog Handlers

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ParseFilter(r.URL.Query())
	products, err := h.catalog.Browse(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Wishlist badges are per caller and never cached with the listing.
	caller, _ := identity.FromContext(r.Context())
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	wishlisted, err := h.wishlist.StatusFor(r.Context(), caller, ids)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"products":   products,
		"wishlisted": wishlisted,
	})
}

func (h *Handlers) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	path := "/products/" + id

	// The product page payload is identical for every caller, so it is
	// served from the view cache when available.
	if payload, err := h.views.Get(r.Context(), path); err == nil {
		writeCached(w, payload)
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	reviews, err := h.reviews.ListForProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"product": product,
		"reviews": reviews,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.views.Set(r.Context(), path, payload); err != nil {
		log.Printf("[API] Failed to cache product view %s: %v", id, err)
	}
	writeCached(w, payload)
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// Checkout Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())

	store, err := h.visitorCart(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := h.checkout.PlaceOrder(r.Context(), caller, store.Lines())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// The order is durable; an emptied cart that fails to persist only
	// risks a stale cart, never a lost order.
	if result.ClearCart {
		if err := store.Clear(r.Context()); err != nil {
			log.Printf("[API] Failed to clear cart after order %s: %v", result.Order.ID, err)
		}
	}

	respondJSON(w, http.StatusCreated, result)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		respondServiceError(w, identity.ErrUnauthenticated)
		return
	}

	path := checkout.OrderHistoryPath(caller.ID)
	if payload, err := h.views.Get(r.Context(), path); err == nil {
		writeCached(w, payload)
		return
	}

	orders, err := h.checkout.ListOrders(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	payload, err := json.Marshal(map[string]any{"orders": orders})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.views.Set(r.Context(), path, payload); err != nil {
		log.Printf("[API] Failed to cache order history for %s: %v", caller.ID, err)
	}
	writeCached(w, payload)
}

// Wishlist Handlers

func (h *Handlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	caller, _ := identity.FromContext(r.Context())
	status, err := h.wishlist.Toggle(r.Context(), caller, req.ProductID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	products, err := h.wishlist.List(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handlers) WishlistStatus(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}

	caller, _ := identity.FromContext(r.Context())
	status, err := h.wishlist.StatusFor(r.Context(), caller, ids)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"wishlisted": status})
}

// Review Handlers

func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var in review.Submission
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	caller, _ := identity.FromContext(r.Context())
	created, err := h.reviews.Submit(r.Context(), caller, in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListForProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func writeCached(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
