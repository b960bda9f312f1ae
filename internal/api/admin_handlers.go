package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/shopfront/internal/admin"
	"github.com/example/shopfront/internal/catalog"
	"github.com/example/shopfront/internal/identity"
)

// AdminHandlers serves the dashboard. The router mounts them behind the
// admin role check; the services gate again on the identity they receive.
type AdminHandlers struct {
	dashboard *admin.Service
	catalog   *catalog.Service
}

func NewAdminHandlers(dashboard *admin.Service, catalogSvc *catalog.Service) *AdminHandlers {
	return &AdminHandlers{dashboard: dashboard, catalog: catalogSvc}
}

func (h *AdminHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	metrics, err := h.dashboard.Dashboard(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

func (h *AdminHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.NewProduct
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *AdminHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.NewCategory
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}
