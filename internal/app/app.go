package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/config"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/event"
	handler "github.com/omar3814/baeed-wa-qareeb-store/internal/handler/http"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/repository"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/repository/memory"
	pgrepo "github.com/omar3814/baeed-wa-qareeb-store/internal/repository/postgres"
	redisrepo "github.com/omar3814/baeed-wa-qareeb-store/internal/repository/redis"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/repository/rest"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/service"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/session"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/database"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/health"
	pkgkafka "github.com/omar3814/baeed-wa-qareeb-store/pkg/kafka"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	memStore       *memory.StateStore
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	if err := a.init(ctx); err != nil {
		a.closeResources(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	// Tracing.
	tcfg := tracing.DefaultConfig(serviceName)
	tcfg.ServiceVersion = cfg.Version
	tcfg.Environment = cfg.Environment
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.Insecure = cfg.OTELInsecure
	tcfg.SampleRate = cfg.OTELSampleRate
	tcfg.Enabled = cfg.OTELEnabled
	shutdown, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	healthHandler := health.NewHandler()

	// Basket and quick view state.
	var store repository.StateStore
	switch cfg.StateBackend {
	case config.StateRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		store = redisrepo.NewStateStore(rdb, cfg.StateTTLDuration())
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
	default:
		a.memStore = memory.NewStateStore(cfg.StateTTLDuration())
		store = a.memStore
		logger.Warn("using in-memory state store; baskets are lost on restart")
	}
	healthHandler.RegisterCritical("state", store.Ping)

	// Catalog.
	catalog, err := a.initCatalog(ctx)
	if err != nil {
		return err
	}
	healthHandler.RegisterNonCritical("catalog", catalog.Ping)

	// Kafka.
	var events *event.Producer
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(a.producer, logger)
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	logger.Info("readiness checks registered", slog.Any("checks", healthHandler.Names()))

	// Build the dependency graph.
	services := handler.Services{
		Basket:    service.NewBasketService(store, catalog, events, logger),
		Catalog:   service.NewCatalogService(catalog, logger),
		QuickView: service.NewQuickViewService(store, catalog, logger),
	}

	rcfg := handler.DefaultRouterConfig()
	rcfg.ServiceName = serviceName
	rcfg.CORS.AllowedOrigins = cfg.CORSAllowedOrigins
	rcfg.RateLimitRPS = cfg.RateLimitRPS
	rcfg.RateLimitBurst = cfg.RateLimitBurst
	rcfg.CatalogMaxAge = cfg.CatalogCacheMaxAge
	if cfg.JWTSecret != "" {
		rcfg.TokenValidator = session.NewVerifier(cfg.JWTSecret, cfg.JWTAudience, 30*time.Second).TokenValidator()
	} else {
		logger.Warn("AUTH_JWT_SECRET not set; all requests are anonymous")
	}

	router := handler.NewRouter(rcfg, services, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return nil
}

func (a *App) initCatalog(ctx context.Context) (repository.CatalogRepository, error) {
	cfg, logger := a.cfg, a.logger

	if cfg.CatalogBackend == config.CatalogREST {
		client := rest.NewHTTPClient(cfg.CatalogRESTURL, cfg.CatalogRESTAPIKey, cfg.CatalogRESTTimeout, logger)
		logger.Info("using REST catalog", slog.String("url", cfg.CatalogRESTURL))
		return rest.NewCatalogRepository(client), nil
	}

	pgcfg := database.DefaultPostgresConfig()
	pgcfg.Host = cfg.PostgresHost
	pgcfg.Port = cfg.PostgresPort
	pgcfg.User = cfg.PostgresUser
	pgcfg.Password = cfg.PostgresPassword
	pgcfg.DBName = cfg.PostgresDB
	pgcfg.SSLMode = cfg.PostgresSSLMode

	pool, err := database.NewPostgresPool(ctx, &pgcfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, pgrepo.Migrations(), logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	database.SetSlowQueryLogging(cfg.SlowQuery, logger)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
	}

	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)
	return pgrepo.NewCatalogRepository(pool), nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources(context.Background())
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.closeResources(shutdownCtx)

	a.logger.Info("application shutdown complete")
	return nil
}

// closeResources releases whatever init managed to open.
func (a *App) closeResources(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.memStore != nil {
		a.memStore.Close()
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
