package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/example/shopfront/internal/catalog"
)

// ProductStore implements catalog.Store on PostgreSQL.
type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = "id, name, description, price, category_id, images, created_at"

func scanProduct(row interface{ Scan(...any) error }) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, pq.Array(&p.Images), &p.CreatedAt)
	return p, err
}

func (s *ProductStore) collectProducts(rows *sql.Rows) ([]catalog.Product, error) {
	defer rows.Close()
	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListProducts composes the browse predicate: category set, inclusive
// price range, sort key.
func (s *ProductStore) ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	var (
		conds []string
		args  []any
	)
	if len(f.CategoryIDs) > 0 {
		args = append(args, pq.Array(f.CategoryIDs))
		conds = append(conds, fmt.Sprintf("category_id = ANY($%d)", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	switch f.Sort {
	case catalog.SortPriceAsc:
		query += " ORDER BY price ASC"
	case catalog.SortPriceDesc:
		query += " ORDER BY price DESC"
	default:
		query += " ORDER BY created_at DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return s.collectProducts(rows)
}

// SearchProducts matches the query case-insensitively against name and
// description.
func (s *ProductStore) SearchProducts(ctx context.Context, query string) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+` FROM products
		 WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return s.collectProducts(rows)
}

func (s *ProductStore) RecentProducts(ctx context.Context, limit int) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent products: %w", err)
	}
	return s.collectProducts(rows)
}

func (s *ProductStore) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *ProductStore) CreateProduct(ctx context.Context, p catalog.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, category_id, images, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Description, p.Price, p.CategoryID, pq.Array(p.Images), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *ProductStore) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (s *ProductStore) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []catalog.Category{}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *ProductStore) CreateCategory(ctx context.Context, c catalog.Category) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)",
		c.ID, c.Name, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return catalog.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}
