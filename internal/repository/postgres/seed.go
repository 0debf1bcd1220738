package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/database"
)

// SeedData is a catalog snapshot to load into an empty or existing database.
type SeedData struct {
	Categories []domain.Category
	Products   []domain.Product
	Settings   *domain.SiteSettings
}

// Seeder upserts catalog rows for local development.
type Seeder struct {
	db database.TxDB
}

// NewSeeder creates a seeder on db.
func NewSeeder(db database.TxDB) *Seeder {
	return &Seeder{db: db}
}

// Seed upserts data in one transaction. Rows are keyed by ID, so running it
// twice leaves the same catalog.
func (s *Seeder) Seed(ctx context.Context, data SeedData) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, c := range data.Categories {
		if _, err = tx.Exec(ctx,
			`INSERT INTO categories (id, name, sort_order)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, sort_order = EXCLUDED.sort_order`,
			c.ID, c.Name, c.SortOrder,
		); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}

	for _, p := range data.Products {
		p.Normalize()
		stock, mErr := json.Marshal(p.SizesStock)
		if mErr != nil {
			return fmt.Errorf("marshal sizes of %s: %w", p.ID, mErr)
		}
		if _, err = tx.Exec(ctx,
			`INSERT INTO products (id, name, price, images, sizes_stock, category_id, description)
			 VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
			     name = EXCLUDED.name, price = EXCLUDED.price, images = EXCLUDED.images,
			     sizes_stock = EXCLUDED.sizes_stock, category_id = EXCLUDED.category_id,
			     description = EXCLUDED.description`,
			p.ID, p.Name, p.Price.StringFixed(2), p.Images, stock, p.CategoryID, p.Description,
		); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}

	if st := data.Settings; st != nil {
		if _, err = tx.Exec(ctx,
			`INSERT INTO site_settings (id, store_name, banner_image_url, logo_image_url, collection_title,
			     phone_number, address, working_hours, delivery_message, instagram_url, snapchat_url)
			 VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO UPDATE SET
			     store_name = EXCLUDED.store_name, banner_image_url = EXCLUDED.banner_image_url,
			     logo_image_url = EXCLUDED.logo_image_url, collection_title = EXCLUDED.collection_title,
			     phone_number = EXCLUDED.phone_number, address = EXCLUDED.address,
			     working_hours = EXCLUDED.working_hours, delivery_message = EXCLUDED.delivery_message,
			     instagram_url = EXCLUDED.instagram_url, snapchat_url = EXCLUDED.snapchat_url,
			     updated_at = NOW()`,
			st.StoreName, st.BannerImageURL, st.LogoImageURL, st.CollectionTitle, st.PhoneNumber,
			st.Address, st.WorkingHours, st.DeliveryMessage, st.InstagramURL, st.SnapchatURL,
		); err != nil {
			return fmt.Errorf("seed site settings: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
