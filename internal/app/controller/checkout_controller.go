package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/pkg/util"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// GetSummary returns what the order review screen shows
// GET /api/v1/checkout
func (ctrl *CheckoutController) GetSummary(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	summary, err := ctrl.checkoutService.Summary(sess)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":            lineItemsResponse(summary.Items),
		"item_count":       summary.ItemCount,
		"subtotal":         util.FormatAmount(summary.Subtotal),
		"shipping":         util.FormatAmount(summary.Shipping),
		"total":            util.FormatAmount(summary.Total),
		"shipping_address": summary.ShippingAddress,
	})
}

// PlaceOrder confirms the cart and empties it
// POST /api/v1/checkout
func (ctrl *CheckoutController) PlaceOrder(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	confirmation, err := ctrl.checkoutService.PlaceOrder(sess)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order": gin.H{
			"order_number":       confirmation.OrderNumber,
			"placed_at":          confirmation.PlacedAt,
			"items":              lineItemsResponse(confirmation.Items),
			"subtotal":           util.FormatAmount(confirmation.Subtotal),
			"shipping":           util.FormatAmount(confirmation.Shipping),
			"total":              util.FormatAmount(confirmation.Total),
			"shipping_address":   confirmation.ShippingAddress,
			"estimated_delivery": confirmation.EstimatedDelivery,
		},
	})
}

func (ctrl *CheckoutController) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		apperrors.BadRequest(c, apperrors.CheckoutEmptyCart, "")
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
	default:
		middleware.GetLoggerFromContext(c).Error("Checkout failed", err)
		apperrors.InternalError(c, "")
	}
}
