package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/lotline/backend/internal/application/catalog"
	stockapp "github.com/lotline/backend/internal/application/stock"
	"github.com/lotline/backend/internal/infrastructure/cache"
	"github.com/lotline/backend/internal/infrastructure/config"
	"github.com/lotline/backend/internal/infrastructure/logger"
	"github.com/lotline/backend/internal/infrastructure/persistence"
	"github.com/lotline/backend/internal/interfaces/http/handler"
	"github.com/lotline/backend/internal/interfaces/http/middleware"
	"github.com/lotline/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Lotline Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	lotRepo := persistence.NewGormLotRepository(db.DB)
	rowRepo := persistence.NewGormWarehouseRowRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	// Initialize application services
	stockService := stockapp.NewStockService(lotRepo, rowRepo, saleRepo, log)
	transferService := stockapp.NewTransferService(rowRepo, lotRepo, productRepo, log)
	productService := catalogapp.NewProductService(productRepo, log)

	// Rollup result cache: Redis when enabled, in-process fallback otherwise
	if cfg.Rollup.CacheEnabled {
		rollupCache, err := cache.NewRedisRollupCache(cfg.Redis, cfg.Rollup.CacheTTL, log)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory rollup cache", zap.Error(err))
			stockService.SetRollupCache(cache.NewInMemoryRollupCache(cfg.Rollup.CacheTTL))
		} else {
			defer func() {
				if err := rollupCache.Close(); err != nil {
					log.Error("Error closing rollup cache", zap.Error(err))
				}
			}()
			stockService.SetRollupCache(rollupCache)
			log.Info("Rollup cache enabled",
				zap.String("backend", "redis"),
				zap.Duration("ttl", cfg.Rollup.CacheTTL),
			)
		}
	}

	// Transfer idempotency store: Redis keeps replay protection across restarts
	idemStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		transferService.SetIdempotencyStore(cache.NewInMemoryIdempotencyStore(), cfg.Transfer.IdempotencyTTL)
		idemStore = nil
	} else {
		defer func() {
			if err := idemStore.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
		transferService.SetIdempotencyStore(idemStore, cfg.Transfer.IdempotencyTTL)
		log.Info("Transfer idempotency store enabled",
			zap.String("backend", "redis"),
			zap.Duration("ttl", cfg.Transfer.IdempotencyTTL),
		)
	}

	// Initialize HTTP handlers
	lotHandler := handler.NewLotHandler(stockService)
	rollupHandler := handler.NewRollupHandler(stockService)
	warehouseHandler := handler.NewWarehouseHandler(stockService)
	transferHandler := handler.NewTransferHandler(transferService)
	productHandler := handler.NewProductHandler(productService)

	healthChecks := map[string]handler.Pinger{
		"database": pingFunc(func(ctx context.Context) error { return db.Ping() }),
	}
	if idemStore != nil {
		client := idemStore.GetClient()
		healthChecks["redis"] = pingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	systemHandler := handler.NewSystemHandler(healthChecks)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Liveness endpoint outside API versioning
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		lotHandler,
		rollupHandler,
		warehouseHandler,
		transferHandler,
		productHandler,
		systemHandler,
	)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// pingFunc adapts a plain function to the handler.Pinger interface.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// healthHandler returns a handler for the root liveness endpoint.
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
