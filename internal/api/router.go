package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/example/shopfront/internal/api/middleware"
	"github.com/example/shopfront/internal/auth"
	"github.com/example/shopfront/internal/identity"
)

type RouterConfig struct {
	Handlers      *Handlers
	AuthHandlers  *AuthHandlers
	AdminHandlers *AdminHandlers
	Tokens        *auth.TokenService
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Storefront. Pages are public; the identity, when present, unlocks
	// checkout, wishlist and reviews.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.Tokens))
		r.Use(middleware.Visitor)

		r.Get("/products", cfg.Handlers.ListProducts)
		r.Get("/products/featured", cfg.Handlers.FeaturedProducts)
		r.Get("/products/{productID}", cfg.Handlers.GetProduct)
		r.Get("/products/{productID}/reviews", cfg.Handlers.ListReviews)
		r.Get("/search", cfg.Handlers.SearchProducts)
		r.Get("/categories", cfg.Handlers.ListCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Handlers.GetCart)
			r.Post("/items", cfg.Handlers.AddToCart)
			r.Put("/items/{productID}", cfg.Handlers.UpdateCartItem)
			r.Delete("/items/{productID}", cfg.Handlers.RemoveCartItem)
		})

		r.Post("/checkout", cfg.Handlers.PlaceOrder)
		r.Get("/orders", cfg.Handlers.ListOrders)

		r.Post("/wishlist/toggle", cfg.Handlers.ToggleWishlist)
		r.Get("/wishlist", cfg.Handlers.GetWishlist)
		r.Get("/wishlist/status", cfg.Handlers.WishlistStatus)

		r.Post("/reviews", cfg.Handlers.SubmitReview)

		r.Post("/auth/register", cfg.AuthHandlers.Register)
		r.Post("/auth/login", cfg.AuthHandlers.Login)
		r.Post("/auth/logout", cfg.AuthHandlers.Logout)
		r.Post("/auth/refresh", cfg.AuthHandlers.Refresh)
		r.Get("/auth/me", cfg.AuthHandlers.Me)
	})

	// Admin dashboard.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Tokens))
		r.Use(middleware.RequireRole(identity.RoleAdmin))

		r.Get("/dashboard", cfg.AdminHandlers.GetDashboard)
		r.Post("/dashboard/products", cfg.AdminHandlers.CreateProduct)
		r.Post("/dashboard/categories", cfg.AdminHandlers.CreateCategory)
	})

	return r
}
