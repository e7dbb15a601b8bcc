package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	ws "github.com/ikkim/storefront-backend/internal/websocket"
)

type OrderTrackingController struct {
	trackingService service.OrderTrackingService
	hub             *ws.Hub
	upgrader        gorillaws.Upgrader
}

// NewOrderTrackingController serves the admin tracking panel. Websocket
// upgrades are accepted from allowedOrigins, or from any origin when the list
// is empty or contains "*".
func NewOrderTrackingController(trackingService service.OrderTrackingService, hub *ws.Hub, allowedOrigins []string) *OrderTrackingController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	anyOrigin := len(origins) == 0 || origins["*"]

	return &OrderTrackingController{
		trackingService: trackingService,
		hub:             hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || anyOrigin || origins[origin]
			},
		},
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListOrders returns every tracked order
// GET /api/v1/admin/orders
func (ctrl *OrderTrackingController) ListOrders(c *gin.Context) {
	orders, err := ctrl.trackingService.ListOrders()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list orders", err)
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":         orders,
		"count":          len(orders),
		"status_options": model.AdminStatusOptions,
	})
}

// GetOrder looks an order up by id
// GET /api/v1/admin/orders/:id
func (ctrl *OrderTrackingController) GetOrder(c *gin.Context) {
	order, err := ctrl.trackingService.FindOrder(c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateOrderStatus posts a tracking update
// POST /api/v1/admin/orders/:id/status
func (ctrl *OrderTrackingController) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "status is required")
		return
	}

	order, err := ctrl.trackingService.UpdateOrderStatus(c.Param("id"), model.OrderStatus(req.Status))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated to " + req.Status,
		"order":   order,
	})
}

// Subscribe upgrades to a websocket that receives the order's tracking updates
// GET /api/v1/admin/orders/:id/ws
func (ctrl *OrderTrackingController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	order, err := ctrl.trackingService.FindOrder(c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, order.ID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Tracking subscription established", map[string]interface{}{
		"order_id": order.ID,
	})
}

func (ctrl *OrderTrackingController) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "")
	case errors.Is(err, service.ErrInvalidStatus):
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "")
	default:
		middleware.GetLoggerFromContext(c).Error("Order tracking request failed", err)
		apperrors.InternalError(c, "")
	}
}
