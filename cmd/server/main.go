package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asthar/asthar-backend/config"
	"github.com/asthar/asthar-backend/internal/app/controller"
	"github.com/asthar/asthar-backend/internal/app/repository"
	"github.com/asthar/asthar-backend/internal/app/service"
	"github.com/asthar/asthar-backend/internal/cache"
	"github.com/asthar/asthar-backend/internal/cart"
	"github.com/asthar/asthar-backend/internal/db"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/asthar/asthar-backend/internal/router"
	"github.com/asthar/asthar-backend/internal/scheduler"
	"github.com/asthar/asthar-backend/internal/websocket"
	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/asthar/asthar-backend/pkg/metrics"
	redisclient "github.com/asthar/asthar-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout = 10 * time.Second
	tickInterval    = time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	logger.Info("Starting Asthar Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Metrics
	var (
		registerer     prometheus.Registerer
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		registerer = registry
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	// Redis backs the catalog cache, hosted carts and the token blacklist.
	// Without it those degrade to no cache, memory carts and no logout.
	var (
		cacheClient cache.Client
		cartClient  cart.RedisCmdable
		revoker     service.TokenRevoker
		revocations middleware.RevocationChecker
	)
	if cfg.Redis.Enabled {
		if err := redisclient.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redisclient.Close()
			client := redisclient.GetClient()
			blacklist := redisclient.NewTokenBlacklist(client)
			cacheClient, cartClient = client, client
			revoker, revocations = blacklist, blacklist
		}
	}

	catalogCache := cache.Disabled()
	if cacheClient != nil {
		catalogCache = cache.New(cacheClient, cfg.Cache.TTL, metrics.NewCacheMetrics(registerer))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	productService := service.NewProductService(productRepo, catalogCache)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, catalogCache)
	flashSaleService := service.NewFlashSaleService(productService, categoryService, cfg.FlashSale.Location(), cfg.FlashSale.Limit)
	homeService := service.NewHomeService(productService, categoryService, flashSaleService)
	authService := service.NewAuthService(userRepo, revoker, cfg.JWT.Secret, cfg.JWT.SessionExpiry)
	cartService := service.NewCartService(
		productRepo,
		service.NewStorageFactory(cfg.Cart, cartClient),
		cfg.Cart.PersistTimeout,
		cfg.Cart.IdleTimeout,
	)
	orderService := service.NewOrderService(orderRepo, productRepo, cartService)

	// Flash sale feed
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub()
	go hub.Run(hubCtx)
	go hub.RunTicker(hubCtx, tickInterval, func() interface{} {
		return flashSaleService.Window()
	})

	// Scheduled jobs
	jobs := scheduler.NewStoreScheduler(
		scheduler.Config{
			FlashSaleSchedule: cfg.FlashSale.Schedule,
			EvictSchedule:     cfg.Cart.EvictSchedule,
			Location:          cfg.FlashSale.Location(),
		},
		flashSaleService,
		cartService,
		hub,
		metrics.NewCronJobMetrics(registerer),
	)
	if err := jobs.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}

	// Initialize controllers
	homeController := controller.NewHomeController(homeService)
	productController := controller.NewProductController(productService)
	categoryController := controller.NewCategoryController(categoryService)
	flashSaleController := controller.NewFlashSaleController(flashSaleService, hub, cfg.CORS.AllowedOrigins)
	authController := controller.NewAuthController(authService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revocations)

	// Setup router
	r := router.NewRouter(
		homeController,
		productController,
		categoryController,
		flashSaleController,
		authController,
		cartController,
		orderController,
		authMiddleware,
		metricsHandler,
		cfg,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": server.Addr,
			"pid":     os.Getpid(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	jobs.Stop(shutdownCtx)
	stopHub()

	logger.Info("Server stopped successfully")
}
