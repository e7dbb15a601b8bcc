package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("your cart is empty")

const EstimatedDelivery = "3-5 business days"

// CheckoutSummary is what the review screen shows before the order is placed.
type CheckoutSummary struct {
	Items           []cart.LineItem
	ItemCount       int
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress string
}

// OrderConfirmation describes a placed order. It is not persisted.
type OrderConfirmation struct {
	OrderNumber       string
	PlacedAt          time.Time
	Items             []cart.LineItem
	Subtotal          decimal.Decimal
	Shipping          decimal.Decimal
	Total             decimal.Decimal
	ShippingAddress   string
	EstimatedDelivery string
}

type CheckoutService interface {
	Summary(sess *session.Session) (*CheckoutSummary, error)
	PlaceOrder(sess *session.Session) (*OrderConfirmation, error)
}

type checkoutService struct {
	auth    AuthService
	metrics *metrics.StoreMetrics
	now     func() time.Time
}

func NewCheckoutService(auth AuthService, m *metrics.StoreMetrics) CheckoutService {
	return &checkoutService{
		auth:    auth,
		metrics: m,
		now:     time.Now,
	}
}

func (s *checkoutService) Summary(sess *session.Session) (*CheckoutSummary, error) {
	user, err := s.auth.CurrentUser(sess.UserID)
	if err != nil {
		return nil, err
	}

	summary := sess.Cart.Summary()
	return &CheckoutSummary{
		Items:           summary.Items,
		ItemCount:       summary.ItemCount,
		Subtotal:        summary.Subtotal,
		Shipping:        summary.Shipping,
		Total:           summary.Total,
		ShippingAddress: user.Address,
	}, nil
}

// PlaceOrder confirms the current cart and empties it. An empty cart is
// rejected with ErrEmptyCart and left untouched.
func (s *checkoutService) PlaceOrder(sess *session.Session) (*OrderConfirmation, error) {
	logger.Info("Placing order", map[string]interface{}{
		"session_id": sess.ID,
		"user_id":    sess.UserID,
	})

	user, err := s.auth.CurrentUser(sess.UserID)
	if err != nil {
		return nil, err
	}

	summary := sess.Cart.Drain()
	if len(summary.Items) == 0 {
		s.metrics.RecordEmptyCartRejected()
		logger.Warn("Order rejected: cart is empty", map[string]interface{}{
			"session_id": sess.ID,
			"user_id":    sess.UserID,
		})
		return nil, ErrEmptyCart
	}

	placedAt := s.now()
	confirmation := &OrderConfirmation{
		OrderNumber:       orderNumber(placedAt),
		PlacedAt:          placedAt,
		Items:             summary.Items,
		Subtotal:          summary.Subtotal,
		Shipping:          summary.Shipping,
		Total:             summary.Total,
		ShippingAddress:   user.Address,
		EstimatedDelivery: EstimatedDelivery,
	}
	s.metrics.RecordOrderPlaced(summary.Total)

	logger.Info("Order placed successfully", map[string]interface{}{
		"session_id":   sess.ID,
		"user_id":      sess.UserID,
		"order_number": confirmation.OrderNumber,
		"items":        summary.ItemCount,
		"total":        util.FormatAmount(summary.Total),
	})
	return confirmation, nil
}

// orderNumber is "ORD-" followed by the last six digits of the millisecond clock.
func orderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%06d", t.UnixMilli()%1000000)
}
