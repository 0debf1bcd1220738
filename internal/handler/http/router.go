package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/service"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/health"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/middleware"
)

// RouterConfig tunes the HTTP edge.
type RouterConfig struct {
	ServiceName    string
	CORS           middleware.CORSConfig
	RateLimitRPS   float64
	RateLimitBurst int
	CatalogMaxAge  time.Duration
	RequestTimeout time.Duration
	// TokenValidator verifies bearer tokens. Nil leaves every request anonymous.
	TokenValidator middleware.TokenValidator
}

// DefaultRouterConfig returns the settings used in development.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		ServiceName:    "storefront",
		CORS:           middleware.DefaultCORSConfig(),
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		CatalogMaxAge:  time.Minute,
		RequestTimeout: 30 * time.Second,
	}
}

// Services bundles the services exposed over HTTP.
type Services struct {
	Basket    *service.BasketService
	Catalog   *service.CatalogService
	QuickView *service.QuickViewService
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig, svc Services, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.TokenValidator != nil {
		r.Use(middleware.OptionalAuth(cfg.TokenValidator, logger))
	}
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	basketHandler := NewBasketHandler(svc.Basket, logger)
	catalogHandler := NewCatalogHandler(svc.Catalog, logger)
	quickViewHandler := NewQuickViewHandler(svc.QuickView, logger)
	limit := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, middleware.ClientKey, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/settings", catalogHandler.SiteSettings)
			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/products/{productId}", catalogHandler.GetProduct)
		})

		r.With(middleware.NoStore).Get("/session", GetSession)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Use(ClientID)

			r.Route("/basket", func(r chi.Router) {
				r.Get("/", basketHandler.GetBasket)

				r.Group(func(r chi.Router) {
					r.Use(limit)

					r.Delete("/", basketHandler.ClearBasket)
					r.Post("/items", basketHandler.AddItem)
					r.Put("/items/{uniqueId}", basketHandler.UpdateItemQuantity)
					r.Delete("/items/{uniqueId}", basketHandler.RemoveItem)
					r.Post("/products/{productId}", basketHandler.AddProduct)
				})
			})

			r.Route("/quickview", func(r chi.Router) {
				r.Get("/", quickViewHandler.Current)
				r.With(limit).Put("/", quickViewHandler.Open)
				r.With(limit).Delete("/", quickViewHandler.Close)
			})
		})
	})

	return r
}
