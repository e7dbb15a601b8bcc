package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/internal/storage"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Router   *gin.Engine
	UserRepo repository.UserRepository
	Sessions *session.Manager
	Registry *prometheus.Registry
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupSeededTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		JWT: config.JWTConfig{
			Secret:             "integration-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:8081"}},
		Account: config.AccountConfig{DefaultShippingAddress: "123 Main St, City, State 12345"},
		S3:      config.S3Config{Region: "us-east-1", Bucket: "test-bucket", AccessKeyID: "AKID", SecretAccessKey: "SECRET"},
	}

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetricsWithRegisterer(registry)
	sessions := session.NewManager(cart.ShippingPolicy{
		Fee:           decimal.RequireFromString("9.99"),
		FreeThreshold: decimal.RequireFromString("100.00"),
	}, time.Hour)
	hub := ws.NewHub(storeMetrics)
	go hub.Run()
	t.Cleanup(hub.Stop)

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	locationRepo := repository.NewLocationRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	authService := service.NewAuthService(userRepo, sessions, nil, storeMetrics, service.AuthConfig{
		JWTSecret:      cfg.JWT.Secret,
		AccessExpiry:   cfg.JWT.AccessTokenExpiry,
		RefreshExpiry:  cfg.JWT.RefreshTokenExpiry,
		DefaultAddress: cfg.Account.DefaultShippingAddress,
	})
	productService := service.NewProductService(productRepo, locationRepo)

	controllers := router.Controllers{
		Auth:          controller.NewAuthController(authService),
		Product:       controller.NewProductController(productService),
		Cart:          controller.NewCartController(service.NewCartService(productService, storeMetrics)),
		Checkout:      controller.NewCheckoutController(service.NewCheckoutService(authService, storeMetrics)),
		Location:      controller.NewLocationController(service.NewLocationService(locationRepo)),
		OrderTracking: controller.NewOrderTrackingController(service.NewOrderTrackingService(orderRepo, hub, storeMetrics), hub, nil),
		UserAdmin:     controller.NewUserAdminController(service.NewUserAdminService(userRepo, orderRepo, productRepo)),
		Upload:        controller.NewUploadController(storage.NewS3Storage(cfg.S3)),
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, sessions, nil)

	return &TestServer{
		Router:   router.NewRouter(controllers, authMiddleware, registry, cfg).Setup(),
		UserRepo: userRepo,
		Sessions: sessions,
		Registry: registry,
	}
}

func (s *TestServer) call(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &response)
	}
	return w.Code, response
}

func tokenFrom(t *testing.T, response map[string]interface{}) string {
	t.Helper()
	tokens, ok := response["tokens"].(map[string]interface{})
	require.True(t, ok)
	return tokens["access_token"].(string)
}

func TestIntegration_ShoppingFlow(t *testing.T) {
	s := setupIntegrationTest(t)

	status, response := s.call(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":            "shopper@example.com",
		"password":         "secret1",
		"confirm_password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	token := tokenFrom(t, response)

	status, response = s.call(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(8), response["count"])

	// two charging pads stay below the free shipping threshold
	for _, id := range []string{"8", "8"} {
		status, _ = s.call(t, http.MethodPost, "/api/v1/cart/items", token, gin.H{"product_id": id})
		require.Equal(t, http.StatusOK, status)
	}

	status, response = s.call(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "79.98", response["subtotal"])
	assert.Equal(t, "9.99", response["shipping"])
	assert.Equal(t, "89.97", response["total"])

	status, _ = s.call(t, http.MethodPost, "/api/v1/cart/items", token, gin.H{"product_id": "1"})
	require.Equal(t, http.StatusOK, status)

	status, response = s.call(t, http.MethodPost, "/api/v1/checkout", token, nil)
	require.Equal(t, http.StatusCreated, status)
	order := response["order"].(map[string]interface{})
	assert.Equal(t, "169.97", order["subtotal"])
	assert.Equal(t, "0.00", order["shipping"])
	assert.Equal(t, "169.97", order["total"])

	status, response = s.call(t, http.MethodPost, "/api/v1/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CHECKOUT_EMPTY_CART", response["error"])

	status, _ = s.call(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, response = s.call(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_SESSION_EXPIRED", response["error"])
}

func TestIntegration_AdminFlow(t *testing.T) {
	s := setupIntegrationTest(t)

	status, _ := s.call(t, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":            "owner@example.com",
		"password":         "secret1",
		"confirm_password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	owner, err := s.UserRepo.FindByEmail("owner@example.com")
	require.NoError(t, err)
	require.NoError(t, s.UserRepo.AddRole(owner.ID, "admin"))

	status, response := s.call(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "owner@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	token := tokenFrom(t, response)

	status, response = s.call(t, http.MethodPost, "/api/v1/admin/locations", token, gin.H{"name": "Denver Depot"})
	require.Equal(t, http.StatusCreated, status)

	status, response = s.call(t, http.MethodPost, "/api/v1/admin/products", token, gin.H{
		"name":           "Trail Camera",
		"description":    "Motion activated",
		"price":          149.5,
		"image_url":      "https://images.example.com/cam.jpg",
		"stock_quantity": 4,
		"location":       "Denver Depot",
	})
	require.Equal(t, http.StatusCreated, status)

	status, response = s.call(t, http.MethodPost, "/api/v1/admin/orders/ORD-002/status", token, gin.H{"status": "Delayed"})
	require.Equal(t, http.StatusOK, status)

	status, response = s.call(t, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(9), response["total_products"])
	assert.Equal(t, float64(1), response["total_admins"])

	status, response = s.call(t, http.MethodPost, "/api/v1/admin/uploads/image", token, gin.H{
		"filename":     "cam.png",
		"content_type": "image/png",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, response["upload_url"], "test-bucket")
	assert.Contains(t, response["file_url"], "products/")
}
