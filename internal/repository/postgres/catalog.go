package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/database"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the catalog schema migrations for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const productColumns = `id, name, price::text, images, sizes_stock, category_id, description`

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListProducts returns products ordered by creation time, newest first.
func (r *CatalogRepository) ListProducts(ctx context.Context, categoryID string) (products []domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if categoryID != "" {
		query += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	query += ` ORDER BY created_at DESC, id`

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// GetProduct retrieves a product by its ID.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (p *domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetProduct", query)
	defer func() { end(err) }()

	p, err = scanProduct(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("product", id)
	}
	return p, err
}

// ListCategories returns all categories ordered by sort order then name.
func (r *CatalogRepository) ListCategories(ctx context.Context) (cats []domain.Category, err error) {
	query := `SELECT id, name, sort_order FROM categories ORDER BY sort_order ASC NULLS LAST, name ASC`

	ctx, end := database.TraceQuery(ctx, "ListCategories", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	cats = []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return cats, nil
}

// GetSiteSettings retrieves the singleton settings row.
func (r *CatalogRepository) GetSiteSettings(ctx context.Context) (s *domain.SiteSettings, err error) {
	query := `
		SELECT store_name, banner_image_url, logo_image_url, collection_title, phone_number,
		       address, working_hours, delivery_message, instagram_url, snapchat_url
		FROM site_settings
		LIMIT 1`

	ctx, end := database.TraceQuery(ctx, "GetSiteSettings", query)
	defer func() { end(err) }()

	var out domain.SiteSettings
	err = r.pool.QueryRow(ctx, query).Scan(
		&out.StoreName,
		&out.BannerImageURL,
		&out.LogoImageURL,
		&out.CollectionTitle,
		&out.PhoneNumber,
		&out.Address,
		&out.WorkingHours,
		&out.DeliveryMessage,
		&out.InstagramURL,
		&out.SnapchatURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("site settings", "1")
		}
		return nil, fmt.Errorf("scan site settings: %w", err)
	}

	return &out, nil
}

// Ping checks that the catalog database answers queries.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	var one int
	return r.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p          domain.Product
		price      string
		sizesStock []byte
	)

	if err := row.Scan(&p.ID, &p.Name, &price, &p.Images, &sizesStock, &p.CategoryID, &p.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price of product %s: %w", p.ID, err)
	}
	p.Price = d

	if len(sizesStock) > 0 {
		if err := json.Unmarshal(sizesStock, &p.SizesStock); err != nil {
			return nil, fmt.Errorf("unmarshal sizes_stock of product %s: %w", p.ID, err)
		}
	}
	p.Normalize()

	return &p, nil
}
