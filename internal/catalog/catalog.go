package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/shopfront/internal/infrastructure/cache"
	"github.com/example/shopfront/internal/validate"
)

// FeaturedCount is the fixed take-N cutoff for the recent-products list.
const FeaturedCount = 8

var ErrNotFound = errors.New("product not found")

// ErrDuplicateName signals a uniqueness violation on a category name; the
// storage layer surfaces it distinctly from generic failure.
var ErrDuplicateName = errors.New("name already exists")

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int       `json:"price"` // minor currency units
	CategoryID  string    `json:"category_id"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Sort string

const (
	SortLatest    Sort = "latest"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
)

// Filter is the composed read predicate for Browse: optional category-ID
// set, optional inclusive price range, and a sort key.
type Filter struct {
	CategoryIDs []string
	MinPrice    *int
	MaxPrice    *int
	Sort        Sort
}

// ParseFilter builds a Filter from request query parameters:
// categories=a,b  price=100-500  sort=price-asc. Unknown sort keys fall
// back to latest; a malformed price range is ignored.
func ParseFilter(values url.Values) Filter {
	f := Filter{Sort: SortLatest}

	if raw := values.Get("categories"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.CategoryIDs = append(f.CategoryIDs, id)
			}
		}
	}

	if raw := values.Get("price"); raw != "" {
		if lo, hi, ok := strings.Cut(raw, "-"); ok {
			minPrice, errLo := strconv.Atoi(lo)
			maxPrice, errHi := strconv.Atoi(hi)
			if errLo == nil && errHi == nil {
				f.MinPrice = &minPrice
				f.MaxPrice = &maxPrice
			}
		}
	}

	switch Sort(values.Get("sort")) {
	case SortPriceAsc:
		f.Sort = SortPriceAsc
	case SortPriceDesc:
		f.Sort = SortPriceDesc
	}

	return f
}

// Store is the catalog's slice of the durable store.
type Store interface {
	ListProducts(ctx context.Context, f Filter) ([]Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	RecentProducts(ctx context.Context, limit int) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, p Product) error
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) error
}

type Service struct {
	store Store
	views cache.Invalidator
}

func NewService(store Store, views cache.Invalidator) *Service {
	return &Service{store: store, views: views}
}

// Browse returns products matching the filter.
func (s *Service) Browse(ctx context.Context, f Filter) ([]Product, error) {
	products, err := s.store.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("browse products: %w", err)
	}
	return products, nil
}

// Search performs a case-insensitive substring match against product name
// and description. An empty query or an empty result set is not an error.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Product{}, nil
	}
	products, err := s.store.SearchProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// Featured returns the most recently added products for the home page.
func (s *Service) Featured(ctx context.Context) ([]Product, error) {
	products, err := s.store.RecentProducts(ctx, FeaturedCount)
	if err != nil {
		return nil, fmt.Errorf("recent products: %w", err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// NewProduct is the admin product-creation input.
type NewProduct struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	CategoryID  string   `json:"category_id"`
	Images      []string `json:"images"`
}

// CreateProduct validates and stores a new product, then invalidates the
// cached product list views.
func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (*Product, error) {
	fields := validate.FieldErrors{}
	if len(in.Name) < 3 {
		fields.Add("name", "Name must be at least 3 characters long.")
	}
	if in.Price < 1 {
		fields.Add("price", "Price must be positive.")
	}
	if in.CategoryID == "" {
		fields.Add("category_id", "Category is required.")
	}
	if len(in.Images) == 0 {
		fields.Add("images", "At least one image is required.")
	}
	if fields.Any() {
		return nil, fields
	}

	p := Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Images:      in.Images,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.views.Invalidate(ctx, "/products", "/dashboard/products"); err != nil {
		log.Printf("[Catalog] Failed to invalidate product views: %v", err)
	}
	return &p, nil
}

// NewCategory is the admin category-creation input.
type NewCategory struct {
	Name string `json:"name"`
}

// CreateCategory validates and stores a new category. A duplicate name is
// reported as a field error, matching the submission's validation shape.
func (s *Service) CreateCategory(ctx context.Context, in NewCategory) (*Category, error) {
	fields := validate.FieldErrors{}
	if len(in.Name) < 3 {
		fields.Add("name", "Name must be at least 3 characters long.")
	}
	if fields.Any() {
		return nil, fields
	}

	c := Category{ID: uuid.New().String(), Name: in.Name, CreatedAt: time.Now()}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			fields.Add("name", "Category already exists.")
			return nil, fields
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := s.views.Invalidate(ctx, "/dashboard/categories"); err != nil {
		log.Printf("[Catalog] Failed to invalidate category views: %v", err)
	}
	return &c, nil
}
