package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// UpdateCartRequest carries the new quantity; zero or less removes the item.
type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the session cart with its totals
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, cartResponse(ctrl.cartService.GetCart(sess)))
}

// AddToCart adds one unit of a catalog product
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "product_id is required")
		return
	}

	item, err := ctrl.cartService.AddItem(sess, req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "")
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"product_id": req.ProductID,
		})
		apperrors.InternalError(c, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": item.Name + " added to cart",
		"item":    lineItemResponse(item),
		"cart":    cartResponse(ctrl.cartService.GetCart(sess)),
	})
}

// UpdateCartItem sets an item's quantity
// PUT /api/v1/cart/items/:product_id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "quantity is required")
		return
	}

	summary := ctrl.cartService.UpdateQuantity(sess, c.Param("product_id"), *req.Quantity)
	c.JSON(http.StatusOK, cartResponse(summary))
}

// RemoveFromCart removes an item; unknown ids are ignored
// DELETE /api/v1/cart/items/:product_id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	summary := ctrl.cartService.RemoveItem(sess, c.Param("product_id"))
	c.JSON(http.StatusOK, cartResponse(summary))
}

// ClearCart empties the session cart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	ctrl.cartService.ClearCart(sess)
	c.JSON(http.StatusOK, cartResponse(ctrl.cartService.GetCart(sess)))
}
