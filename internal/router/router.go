package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controllers groups every HTTP handler the API serves.
type Controllers struct {
	Auth          *controller.AuthController
	Product       *controller.ProductController
	Cart          *controller.CartController
	Checkout      *controller.CheckoutController
	Location      *controller.LocationController
	OrderTracking *controller.OrderTrackingController
	UserAdmin     *controller.UserAdminController
	Upload        *controller.UploadController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	gatherer       prometheus.Gatherer
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		gatherer:       gatherer,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	ctrl := r.controllers
	authenticated := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", ctrl.Auth.Signup)
			auth.POST("/login", ctrl.Auth.Login)
			auth.POST("/refresh", ctrl.Auth.RefreshToken)
			auth.POST("/logout", authenticated, ctrl.Auth.Logout)
			auth.GET("/me", authenticated, ctrl.Auth.GetMe)
			auth.PUT("/me/address", authenticated, ctrl.Auth.UpdateAddress)
		}

		products := v1.Group("/products")
		{
			products.GET("", ctrl.Product.GetAllProducts)
			products.GET("/:id", ctrl.Product.GetProductByID)
		}

		cart := v1.Group("/cart", authenticated)
		{
			cart.GET("", ctrl.Cart.GetCart)
			cart.DELETE("", ctrl.Cart.ClearCart)
			cart.POST("/items", ctrl.Cart.AddToCart)
			cart.PUT("/items/:product_id", ctrl.Cart.UpdateCartItem)
			cart.DELETE("/items/:product_id", ctrl.Cart.RemoveFromCart)
		}

		checkout := v1.Group("/checkout", authenticated)
		{
			checkout.GET("", ctrl.Checkout.GetSummary)
			checkout.POST("", ctrl.Checkout.PlaceOrder)
		}

		admin := v1.Group("/admin", authenticated, adminOnly)
		{
			admin.GET("/dashboard", ctrl.UserAdmin.GetDashboard)
			admin.GET("/users", ctrl.UserAdmin.ListUsers)
			admin.PUT("/users/:id/admin", ctrl.UserAdmin.SetAdmin)

			admin.POST("/products", ctrl.Product.CreateProduct)
			admin.POST("/uploads/image", ctrl.Upload.GeneratePresignedURL)

			admin.GET("/locations", ctrl.Location.ListLocations)
			admin.POST("/locations", ctrl.Location.CreateLocation)
			admin.DELETE("/locations/:id", ctrl.Location.DeleteLocation)

			admin.GET("/orders", ctrl.OrderTracking.ListOrders)
			admin.GET("/orders/:id", ctrl.OrderTracking.GetOrder)
			admin.POST("/orders/:id/status", ctrl.OrderTracking.UpdateOrderStatus)
			admin.GET("/orders/:id/ws", ctrl.OrderTracking.Subscribe)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
