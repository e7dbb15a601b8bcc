package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/internal/storage"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-for-controllers"

type memoryBlacklist struct {
	revoked map[string]bool
}

func (b *memoryBlacklist) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	b.revoked[tokenID] = true
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return b.revoked[tokenID], nil
}

type stubPresigner struct {
	err error
}

func (s *stubPresigner) PresignImageUpload(_ context.Context, filename, contentType string) (*storage.PresignedUpload, error) {
	if err := storage.ValidateContentType(contentType, storage.AllowedImageTypes); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &storage.PresignedUpload{
		UploadURL: "https://bucket.s3.amazonaws.com/products/abc.png?X-Amz-Signature=sig",
		FileURL:   "https://cdn.example.com/products/abc.png",
		Key:       "products/abc.png",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

// testServer wires the real services and controllers over a seeded in-memory
// database behind the auth middleware.
type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	sessions  *session.Manager
	userRepo  repository.UserRepository
	hub       *ws.Hub
	presigner *stubPresigner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupSeededTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	storeMetrics := metrics.NewStoreMetricsWithRegisterer(prometheus.NewRegistry())
	sessions := session.NewManager(cart.ShippingPolicy{
		Fee:           decimal.RequireFromString("9.99"),
		FreeThreshold: decimal.RequireFromString("100.00"),
	}, time.Hour)
	blacklist := &memoryBlacklist{revoked: map[string]bool{}}

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	locationRepo := repository.NewLocationRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	hub := ws.NewHub(storeMetrics)
	go hub.Run()
	t.Cleanup(hub.Stop)

	authService := service.NewAuthService(userRepo, sessions, blacklist, storeMetrics, service.AuthConfig{
		JWTSecret:      testJWTSecret,
		AccessExpiry:   15 * time.Minute,
		RefreshExpiry:  24 * time.Hour,
		DefaultAddress: "123 Main St, City, State 12345",
	})
	productService := service.NewProductService(productRepo, locationRepo)
	presigner := &stubPresigner{}

	authCtrl := NewAuthController(authService)
	productCtrl := NewProductController(productService)
	cartCtrl := NewCartController(service.NewCartService(productService, storeMetrics))
	checkoutCtrl := NewCheckoutController(service.NewCheckoutService(authService, storeMetrics))
	locationCtrl := NewLocationController(service.NewLocationService(locationRepo))
	trackingCtrl := NewOrderTrackingController(service.NewOrderTrackingService(orderRepo, hub, storeMetrics), hub, nil)
	userAdminCtrl := NewUserAdminController(service.NewUserAdminService(userRepo, orderRepo, productRepo))
	uploadCtrl := NewUploadController(presigner)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, sessions, blacklist)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())

	router.POST("/auth/signup", authCtrl.Signup)
	router.POST("/auth/login", authCtrl.Login)
	router.POST("/auth/refresh", authCtrl.RefreshToken)
	router.GET("/products", productCtrl.GetAllProducts)
	router.GET("/products/:id", productCtrl.GetProductByID)

	authed := router.Group("/", authMiddleware.Authenticate())
	authed.POST("/auth/logout", authCtrl.Logout)
	authed.GET("/auth/me", authCtrl.GetMe)
	authed.PUT("/auth/me/address", authCtrl.UpdateAddress)
	authed.GET("/cart", cartCtrl.GetCart)
	authed.POST("/cart/items", cartCtrl.AddToCart)
	authed.PUT("/cart/items/:product_id", cartCtrl.UpdateCartItem)
	authed.DELETE("/cart/items/:product_id", cartCtrl.RemoveFromCart)
	authed.DELETE("/cart", cartCtrl.ClearCart)
	authed.GET("/checkout", checkoutCtrl.GetSummary)
	authed.POST("/checkout", checkoutCtrl.PlaceOrder)

	admin := authed.Group("/admin", authMiddleware.RequireRole("admin"))
	admin.POST("/products", productCtrl.CreateProduct)
	admin.POST("/uploads/image", uploadCtrl.GeneratePresignedURL)
	admin.GET("/locations", locationCtrl.ListLocations)
	admin.POST("/locations", locationCtrl.CreateLocation)
	admin.DELETE("/locations/:id", locationCtrl.DeleteLocation)
	admin.GET("/orders", trackingCtrl.ListOrders)
	admin.GET("/orders/:id", trackingCtrl.GetOrder)
	admin.POST("/orders/:id/status", trackingCtrl.UpdateOrderStatus)
	admin.GET("/orders/:id/ws", trackingCtrl.Subscribe)
	admin.GET("/users", userAdminCtrl.ListUsers)
	admin.PUT("/users/:id/admin", userAdminCtrl.SetAdmin)
	admin.GET("/dashboard", userAdminCtrl.GetDashboard)

	return &testServer{
		router:    router,
		db:        testDB,
		sessions:  sessions,
		userRepo:  userRepo,
		hub:       hub,
		presigner: presigner,
	}
}

// do sends a JSON request and decodes the JSON response body.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

// signup registers an account and returns its access token.
func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	w, response := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"email":            email,
		"password":         "password123",
		"confirm_password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return accessToken(t, response)
}

// admin registers an account, grants it the admin role and logs in again so
// the token carries the role.
func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	s.signup(t, "admin@example.com")

	user, err := s.userRepo.FindByEmail("admin@example.com")
	require.NoError(t, err)
	require.NoError(t, s.userRepo.AddRole(user.ID, "admin"))

	w, response := s.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	return accessToken(t, response)
}

func accessToken(t *testing.T, response map[string]interface{}) string {
	t.Helper()
	tokens, ok := response["tokens"].(map[string]interface{})
	require.True(t, ok)
	token, ok := tokens["access_token"].(string)
	require.True(t, ok)
	return token
}
