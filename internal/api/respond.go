package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/example/shopfront/internal/cart"
	"github.com/example/shopfront/internal/catalog"
	"github.com/example/shopfront/internal/checkout"
	"github.com/example/shopfront/internal/identity"
	"github.com/example/shopfront/internal/infrastructure/store"
	"github.com/example/shopfront/internal/review"
	"github.com/example/shopfront/internal/validate"
	"github.com/example/shopfront/internal/wishlist"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondServiceError maps domain errors onto HTTP responses. An unmapped
// error is an internal failure: it gets logged and the caller is told to
// retry, since nothing of theirs was consumed.
func respondServiceError(w http.ResponseWriter, err error) {
	var fields validate.FieldErrors
	switch {
	case errors.Is(err, identity.ErrUnauthenticated):
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "authentication required",
			"location": "/auth/login",
		})
	case errors.Is(err, identity.ErrForbidden):
		respondJSONError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, review.ErrNotPurchased):
		respondJSONError(w, "Only verified buyers can review this product.", http.StatusForbidden)
	case errors.As(err, &fields):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondJSONError(w, "Your cart is empty.", http.StatusUnprocessableEntity)
	case errors.Is(err, review.ErrDuplicate):
		respondJSONError(w, "You have already reviewed this product.", http.StatusConflict)
	case errors.Is(err, store.ErrEmailExists):
		respondJSONError(w, "Email already registered", http.StatusConflict)
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, store.ErrNotFound):
		respondJSONError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, cart.ErrInvalidProduct), errors.Is(err, wishlist.ErrInvalidProduct):
		respondJSONError(w, "product_id is required", http.StatusBadRequest)
	default:
		log.Printf("[API] Internal error: %v", err)
		respondJSONError(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
	}
}
