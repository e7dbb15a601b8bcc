package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// TrackingPublisher pushes tracking updates to live subscribers of an order.
type TrackingPublisher interface {
	Publish(orderID string, payload interface{}) error
}

// TrackingEvent is the message sent to subscribers when an update is posted.
type TrackingEvent struct {
	Type    string               `json:"type"`
	OrderID string               `json:"order_id"`
	Update  model.TrackingUpdate `json:"update"`
}

type OrderTrackingService interface {
	ListOrders() ([]model.Order, error)
	FindOrder(id string) (*model.Order, error)
	UpdateOrderStatus(id string, status model.OrderStatus) (*model.Order, error)
}

type orderTrackingService struct {
	orderRepo repository.OrderRepository
	publisher TrackingPublisher
	metrics   *metrics.StoreMetrics
	now       func() time.Time
}

func NewOrderTrackingService(orderRepo repository.OrderRepository, publisher TrackingPublisher, m *metrics.StoreMetrics) OrderTrackingService {
	return &orderTrackingService{
		orderRepo: orderRepo,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

func (s *orderTrackingService) ListOrders() ([]model.Order, error) {
	return s.orderRepo.FindAll()
}

// FindOrder looks an order up by its trimmed id.
func (s *orderTrackingService) FindOrder(id string) (*model.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrOrderNotFound
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"order_id": id,
			})
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus prepends a tracking update and notifies subscribers.
func (s *orderTrackingService) UpdateOrderStatus(id string, status model.OrderStatus) (*model.Order, error) {
	if !status.IsAdminSettable() {
		logger.Warn("Order status rejected", map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return nil, ErrInvalidStatus
	}

	order, err := s.FindOrder(id)
	if err != nil {
		return nil, err
	}

	update := model.TrackingUpdate{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		Status:    status,
		Timestamp: s.now().UTC(),
	}
	if err := s.orderRepo.AddTrackingUpdate(&update); err != nil {
		return nil, err
	}
	order.TrackingHistory = append([]model.TrackingUpdate{update}, order.TrackingHistory...)
	s.metrics.RecordTrackingUpdate()

	if s.publisher != nil {
		event := TrackingEvent{Type: "tracking_update", OrderID: order.ID, Update: update}
		if err := s.publisher.Publish(order.ID, event); err != nil {
			logger.Warn("Failed to publish tracking update", map[string]interface{}{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   status,
	})
	return order, nil
}
