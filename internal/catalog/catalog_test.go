package catalog

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopfront/internal/validate"
)

// fakeStore implements Store in memory and records writes.
type fakeStore struct {
	products   []Product
	categories []Category

	CreatedProducts   []Product
	CreatedCategories []Category
	ListFilters       []Filter
}

func (f *fakeStore) ListProducts(_ context.Context, filter Filter) ([]Product, error) {
	f.ListFilters = append(f.ListFilters, filter)
	return f.products, nil
}

func (f *fakeStore) SearchProducts(_ context.Context, query string) ([]Product, error) {
	q := strings.ToLower(query)
	var out []Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) RecentProducts(_ context.Context, limit int) ([]Product, error) {
	if len(f.products) > limit {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func (f *fakeStore) GetProduct(_ context.Context, id string) (Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (f *fakeStore) CreateProduct(_ context.Context, p Product) error {
	f.CreatedProducts = append(f.CreatedProducts, p)
	f.products = append(f.products, p)
	return nil
}

func (f *fakeStore) ListCategories(_ context.Context) ([]Category, error) {
	return f.categories, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c Category) error {
	for _, existing := range f.categories {
		if existing.Name == c.Name {
			return ErrDuplicateName
		}
	}
	f.CreatedCategories = append(f.CreatedCategories, c)
	f.categories = append(f.categories, c)
	return nil
}

// fakeViews records invalidated view paths.
type fakeViews struct {
	Invalidated []string
}

func (f *fakeViews) Invalidate(_ context.Context, paths ...string) error {
	f.Invalidated = append(f.Invalidated, paths...)
	return nil
}

func newTestService(products ...Product) (*Service, *fakeStore, *fakeViews) {
	store := &fakeStore{products: products}
	views := &fakeViews{}
	return NewService(store, views), store, views
}

// ============================================
// ParseFilter Tests
// ============================================

func TestParseFilter(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name  string
		query string
		want  Filter
	}{
		{"empty defaults to latest", "", Filter{Sort: SortLatest}},
		{"categories", "categories=cat-1,cat-2", Filter{CategoryIDs: []string{"cat-1", "cat-2"}, Sort: SortLatest}},
		{"price range", "price=100-500", Filter{MinPrice: intPtr(100), MaxPrice: intPtr(500), Sort: SortLatest}},
		{"malformed price ignored", "price=cheap", Filter{Sort: SortLatest}},
		{"sort asc", "sort=price-asc", Filter{Sort: SortPriceAsc}},
		{"sort desc", "sort=price-desc", Filter{Sort: SortPriceDesc}},
		{"unknown sort falls back", "sort=alphabetical", Filter{Sort: SortLatest}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseFilter(values))
		})
	}
}

// ============================================
// Search Tests
// ============================================

func TestService_Search(t *testing.T) {
	svc, _, _ := newTestService(
		Product{ID: "p1", Name: "Smartphone X", Description: "flagship"},
		Product{ID: "p2", Name: "Desk Lamp", Description: "warm light"},
	)
	ctx := context.Background()

	results, err := svc.Search(ctx, "phone")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Smartphone X", results[0].Name)

	// No matches is an empty result, not an error.
	results, err = svc.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestService_BrowsePassesFilterThrough(t *testing.T) {
	svc, store, _ := newTestService()
	f := Filter{CategoryIDs: []string{"cat-1"}, Sort: SortPriceDesc}

	_, err := svc.Browse(context.Background(), f)

	require.NoError(t, err)
	require.Len(t, store.ListFilters, 1)
	assert.Equal(t, f, store.ListFilters[0])
}

// ============================================
// Admin Creation Tests
// ============================================

func TestService_CreateProduct_Valid(t *testing.T) {
	svc, store, views := newTestService()

	p, err := svc.CreateProduct(context.Background(), NewProduct{
		Name:       "Smartphone X",
		Price:      500,
		CategoryID: "cat-1",
		Images:     []string{"img/x.jpg"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	require.Len(t, store.CreatedProducts, 1)
	assert.Contains(t, views.Invalidated, "/dashboard/products")
}

func TestService_CreateProduct_FieldErrors(t *testing.T) {
	svc, store, _ := newTestService()

	_, err := svc.CreateProduct(context.Background(), NewProduct{Name: "ab", Price: 0})

	var fields validate.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "category_id")
	assert.Contains(t, fields, "images")
	assert.Empty(t, store.CreatedProducts)
}

func TestService_CreateCategory_Duplicate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, NewCategory{Name: "Phones"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, NewCategory{Name: "Phones"})
	var fields validate.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields["name"], "Category already exists.")
}
