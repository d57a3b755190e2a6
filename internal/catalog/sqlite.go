package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const productColumns = `id, name, description, price_amount, currency_code, image_url, image_alt,
	image_width, image_height, category_id, category_name, rating_average, rating_count, in_stock, sku`

type SQLiteCatalog struct {
	db *sql.DB
}

func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

func (c *SQLiteCatalog) RunMigrations() error {
	driver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (c *SQLiteCatalog) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	row := c.db.QueryRowContext(ctx, query, NormalizeProductID(id))
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (c *SQLiteCatalog) GetProducts(ctx context.Context, filters domain.ProductFilters) (domain.ProductList, error) {
	where, args := buildWhere(filters)

	var total int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return domain.ProductList{}, fmt.Errorf("failed to count products: %w", err)
	}

	limit, offset := pageBounds(filters.Limit, filters.Offset)

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY position LIMIT ? OFFSET ?`
	rows, err := c.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return domain.ProductList{}, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return domain.ProductList{}, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return domain.ProductList{}, fmt.Errorf("row iteration error: %w", err)
	}

	return domain.ProductList{
		Products: products,
		Total:    total,
		HasMore:  offset+len(products) < total,
	}, nil
}

func (c *SQLiteCatalog) GetCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func buildWhere(filters domain.ProductFilters) (string, []any) {
	var clauses []string
	var args []any

	if q := strings.ToLower(strings.TrimSpace(filters.SearchQuery)); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		clauses = append(clauses, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category_name) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if filters.CategoryID != "" {
		clauses = append(clauses, `category_id = ?`)
		args = append(args, filters.CategoryID)
	}
	if r := filters.PriceRange; r != nil {
		clauses = append(clauses, `price_amount BETWEEN ? AND ?`)
		args = append(args, r.Min, r.Max)
	}
	if filters.InStockOnly {
		clauses = append(clauses, `in_stock = 1`)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p       domain.Product
		img     domain.ProductImage
		inStock int
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price.Amount,
		&p.Price.CurrencyCode,
		&img.URL,
		&img.Alt,
		&img.Width,
		&img.Height,
		&p.CategoryID,
		&p.CategoryName,
		&p.Rating.Average,
		&p.Rating.Count,
		&inStock,
		&p.SKU,
	)
	if err != nil {
		return nil, err
	}
	if img.URL != "" {
		p.Images = []domain.ProductImage{img}
	}
	p.InStock = inStock != 0
	return &p, nil
}
