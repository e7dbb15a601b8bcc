package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/cart"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/util"
)

// Money leaves the API as two-decimal strings; amounts are exact until here.

func productResponse(p *model.Product) gin.H {
	return gin.H{
		"id":             p.ID,
		"name":           p.Name,
		"description":    p.Description,
		"price":          util.FormatAmount(p.Price),
		"image_url":      p.ImageURL,
		"stock_quantity": p.StockQuantity,
		"location":       p.Location,
	}
}

func lineItemResponse(item cart.LineItem) gin.H {
	return gin.H{
		"product_id": item.ProductID,
		"name":       item.Name,
		"unit_price": util.FormatAmount(item.UnitPrice),
		"image_url":  item.ImageURL,
		"quantity":   item.Quantity,
		"line_total": util.FormatAmount(item.LineTotal()),
	}
}

func lineItemsResponse(items []cart.LineItem) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemResponse(item))
	}
	return out
}

func cartResponse(summary cart.Summary) gin.H {
	return gin.H{
		"items":      lineItemsResponse(summary.Items),
		"count":      len(summary.Items),
		"item_count": summary.ItemCount,
		"subtotal":   util.FormatAmount(summary.Subtotal),
		"shipping":   util.FormatAmount(summary.Shipping),
		"total":      util.FormatAmount(summary.Total),
	}
}

func userResponse(u *model.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"address":    u.Address,
		"roles":      u.RoleNames(),
		"is_admin":   u.IsAdmin(),
		"created_at": u.CreatedAt,
	}
}

// requireSession writes a 401 and returns false when the request carries no
// session.
func requireSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Warn("Request without session", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, "")
		return nil, false
	}
	return sess, true
}
