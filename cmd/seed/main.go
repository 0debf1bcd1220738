// Command seed loads a small sample catalog into the storefront database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/config"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	pgrepo "github.com/omar3814/baeed-wa-qareeb-store/internal/repository/postgres"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/database"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/logger"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/slug"
)

type categoryDef struct {
	name string
}

type productDef struct {
	name     string
	category string
	price    string
	sizes    map[string]int
	images   []string
}

var categories = []categoryDef{
	{name: "Dresses"},
	{name: "Abayas"},
	{name: "Accessories"},
}

var products = []productDef{
	{"Linen Summer Dress", "Dresses", "45.00", map[string]int{"S": 4, "M": 6, "L": 2}, []string{"/images/linen-dress.jpg"}},
	{"Floral Maxi Dress", "Dresses", "59.90", map[string]int{"S": 0, "M": 3, "L": 1}, []string{"/images/floral-maxi.jpg"}},
	{"Classic Black Abaya", "Abayas", "80.00", map[string]int{"52": 5, "54": 5, "56": 2}, []string{"/images/black-abaya.jpg"}},
	{"Embroidered Abaya", "Abayas", "120.00", map[string]int{"54": 1, "56": 0}, nil},
	{"Silk Scarf", "Accessories", "15.50", map[string]int{"One Size": 20}, []string{"/images/silk-scarf.jpg"}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seed complete",
		slog.Int("categories", len(categories)),
		slog.Int("products", len(products)),
	)
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgcfg := database.DefaultPostgresConfig()
	pgcfg.Host = cfg.PostgresHost
	pgcfg.Port = cfg.PostgresPort
	pgcfg.User = cfg.PostgresUser
	pgcfg.Password = cfg.PostgresPassword
	pgcfg.DBName = cfg.PostgresDB
	pgcfg.SSLMode = cfg.PostgresSSLMode

	pool, err := database.NewPostgresPool(ctx, &pgcfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, pgrepo.Migrations(), log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return pgrepo.NewSeeder(pool).Seed(ctx, sampleCatalog())
}

func sampleCatalog() pgrepo.SeedData {
	var data pgrepo.SeedData

	categoryIDs := make(map[string]string, len(categories))
	for i, c := range categories {
		id := slug.WithFallback(c.name, fmt.Sprintf("category-%d", i+1))
		categoryIDs[c.name] = id
		order := i + 1
		data.Categories = append(data.Categories, domain.Category{ID: id, Name: c.name, SortOrder: &order})
	}

	for i, p := range products {
		catID := categoryIDs[p.category]
		data.Products = append(data.Products, domain.Product{
			ID:         slug.WithFallback(p.name, fmt.Sprintf("product-%d", i+1)),
			Name:       p.name,
			Price:      decimal.RequireFromString(p.price),
			Images:     p.images,
			SizesStock: p.sizes,
			CategoryID: &catID,
		})
	}

	phone := "+000 0000 0000"
	data.Settings = &domain.SiteSettings{
		StoreName:       "Baeed wa Qareeb",
		CollectionTitle: "New Collection",
		PhoneNumber:     &phone,
		Address:         "Main Street",
		WorkingHours:    "10:00 - 22:00",
		DeliveryMessage: "Delivery within 2-3 days",
	}
	return data
}
