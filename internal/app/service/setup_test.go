package service

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testDefaultAddress = "123 Main St, City, State 12345"

type testEnv struct {
	db           *gorm.DB
	userRepo     repository.UserRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	orderRepo    repository.OrderRepository
	sessions     *session.Manager
	metrics      *metrics.StoreMetrics
	registry     *prometheus.Registry
	blacklist    *fakeBlacklist
	auth         AuthService
	products     ProductService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDB, err := db.SetupSeededTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	registry := prometheus.NewRegistry()
	env := &testEnv{
		db:           testDB,
		userRepo:     repository.NewUserRepository(testDB),
		productRepo:  repository.NewProductRepository(testDB),
		locationRepo: repository.NewLocationRepository(testDB),
		orderRepo:    repository.NewOrderRepository(testDB),
		sessions: session.NewManager(cart.ShippingPolicy{
			Fee:           decimal.RequireFromString("9.99"),
			FreeThreshold: decimal.RequireFromString("100.00"),
		}, time.Hour),
		metrics:   metrics.NewStoreMetricsWithRegisterer(registry),
		registry:  registry,
		blacklist: &fakeBlacklist{revoked: map[string]time.Duration{}},
	}
	env.auth = NewAuthService(env.userRepo, env.sessions, env.blacklist, env.metrics, AuthConfig{
		JWTSecret:      "test-jwt-secret",
		AccessExpiry:   15 * time.Minute,
		RefreshExpiry:  7 * 24 * time.Hour,
		DefaultAddress: testDefaultAddress,
	})
	env.products = NewProductService(env.productRepo, env.locationRepo)
	return env
}

// signup creates an account and returns its live session.
func (env *testEnv) signup(t *testing.T, email string) (*AuthResult, *session.Session) {
	t.Helper()
	result, err := env.auth.Signup(SignupInput{
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)

	sess, err := env.sessions.Get(result.SessionID)
	require.NoError(t, err)
	return result, sess
}

// counterValue reads a labelled counter from the env's registry, or 0.
func (env *testEnv) counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := env.registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == label && pair.GetValue() == value {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
