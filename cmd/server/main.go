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

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/internal/scheduler"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/internal/storage"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

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
		EnableColor: true,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
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

	// Run migrations and seed empty tables
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Token blacklist is optional; without it logout only ends the session
	var blacklist *redis.Blacklist
	if cfg.Redis.Enabled {
		blacklist, err = redis.Init(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
			blacklist = nil
		}
	}
	defer blacklist.Close()

	storeMetrics := metrics.NewStoreMetrics()
	sessions := session.NewManager(cart.ShippingPolicy{
		Fee:           cfg.Cart.ShippingFee,
		FreeThreshold: cfg.Cart.FreeShippingThreshold,
	}, cfg.Session.IdleTTL)

	hub := ws.NewHub(storeMetrics)
	go hub.Run()
	defer hub.Stop()

	sweeper := scheduler.NewSessionSweeper(sessions, storeMetrics, cfg.Session.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start session sweeper", err)
	}
	defer sweeper.Stop()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	locationRepo := repository.NewLocationRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, sessions, blacklist, storeMetrics, service.AuthConfig{
		JWTSecret:      cfg.JWT.Secret,
		AccessExpiry:   cfg.JWT.AccessTokenExpiry,
		RefreshExpiry:  cfg.JWT.RefreshTokenExpiry,
		DefaultAddress: cfg.Account.DefaultShippingAddress,
	})
	productService := service.NewProductService(productRepo, locationRepo)
	cartService := service.NewCartService(productService, storeMetrics)
	checkoutService := service.NewCheckoutService(authService, storeMetrics)
	locationService := service.NewLocationService(locationRepo)
	trackingService := service.NewOrderTrackingService(orderRepo, hub, storeMetrics)
	userAdminService := service.NewUserAdminService(userRepo, orderRepo, productRepo)

	// Initialize controllers
	controllers := router.Controllers{
		Auth:          controller.NewAuthController(authService),
		Product:       controller.NewProductController(productService),
		Cart:          controller.NewCartController(cartService),
		Checkout:      controller.NewCheckoutController(checkoutService),
		Location:      controller.NewLocationController(locationService),
		OrderTracking: controller.NewOrderTrackingController(trackingService, hub, cfg.CORS.AllowedOrigins),
		UserAdmin:     controller.NewUserAdminController(userAdminService),
		Upload:        controller.NewUploadController(storage.NewS3Storage(cfg.S3)),
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, sessions, blacklist)
	engine := router.NewRouter(controllers, authMiddleware, prometheus.DefaultGatherer, cfg).Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully", map[string]interface{}{
		"active_sessions": sessions.Len(),
	})
}
