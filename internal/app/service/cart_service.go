package service

import (
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

// CartService applies cart operations to the caller's session cart. Product
// name and price are read from the catalog when an item is first added.
type CartService interface {
	GetCart(sess *session.Session) cart.Summary
	AddItem(sess *session.Session, productID string) (cart.LineItem, error)
	UpdateQuantity(sess *session.Session, productID string, quantity int) cart.Summary
	RemoveItem(sess *session.Session, productID string) cart.Summary
	ClearCart(sess *session.Session)
}

type cartService struct {
	products ProductService
	metrics  *metrics.StoreMetrics
}

func NewCartService(products ProductService, m *metrics.StoreMetrics) CartService {
	return &cartService{
		products: products,
		metrics:  m,
	}
}

func (s *cartService) GetCart(sess *session.Session) cart.Summary {
	summary := sess.Cart.Summary()

	logger.Debug("Cart fetched", map[string]interface{}{
		"session_id": sess.ID,
		"items":      len(summary.Items),
	})
	return summary
}

func (s *cartService) AddItem(sess *session.Session, productID string) (cart.LineItem, error) {
	product, err := s.products.GetProduct(productID)
	if err != nil {
		logger.Warn("Cannot add to cart: product lookup failed", map[string]interface{}{
			"session_id": sess.ID,
			"product_id": productID,
			"error":      err.Error(),
		})
		return cart.LineItem{}, err
	}

	item := sess.Cart.AddItem(cart.Product{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		ImageURL: product.ImageURL,
	})
	s.metrics.RecordCartMutation(metrics.OpAdd)

	logger.Info("Item added to cart", map[string]interface{}{
		"session_id": sess.ID,
		"user_id":    sess.UserID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})
	return item, nil
}

// UpdateQuantity sets the quantity; zero or less removes the item and unknown
// ids leave the cart unchanged.
func (s *cartService) UpdateQuantity(sess *session.Session, productID string, quantity int) cart.Summary {
	found := sess.Cart.UpdateQuantity(productID, quantity)
	if found {
		op := metrics.OpUpdate
		if quantity <= 0 {
			op = metrics.OpRemove
		}
		s.metrics.RecordCartMutation(op)
	}

	logger.Info("Cart quantity updated", map[string]interface{}{
		"session_id": sess.ID,
		"product_id": productID,
		"quantity":   quantity,
		"found":      found,
	})
	return sess.Cart.Summary()
}

func (s *cartService) RemoveItem(sess *session.Session, productID string) cart.Summary {
	found := sess.Cart.RemoveItem(productID)
	if found {
		s.metrics.RecordCartMutation(metrics.OpRemove)
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"session_id": sess.ID,
		"product_id": productID,
		"found":      found,
	})
	return sess.Cart.Summary()
}

func (s *cartService) ClearCart(sess *session.Session) {
	sess.Cart.Clear()
	s.metrics.RecordCartMutation(metrics.OpClear)

	logger.Info("Cart cleared", map[string]interface{}{
		"session_id": sess.ID,
	})
}
