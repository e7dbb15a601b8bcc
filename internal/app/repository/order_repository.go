package repository

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id string) (*model.Order, error)
	FindAll() ([]model.Order, error)
	AddTrackingUpdate(update *model.TrackingUpdate) error
	Count() (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("TrackingHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("recorded_at DESC").Order("created_at DESC")
	})
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_id":      order.ID,
		"history_count": len(order.TrackingHistory),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

func (r *orderRepository) FindByID(id string) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().Where("id = ?", id).First(&order).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found by ID in database", map[string]interface{}{
		"order_id":      order.ID,
		"history_count": len(order.TrackingHistory),
	})
	return &order, nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	logger.Debug("Finding all orders in database")

	var orders []model.Order
	if err := r.preloadOrder().Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders in database", err)
		return nil, err
	}

	logger.Debug("Orders found in database", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (r *orderRepository) AddTrackingUpdate(update *model.TrackingUpdate) error {
	logger.Debug("Adding tracking update in database", map[string]interface{}{
		"order_id": update.OrderID,
		"status":   update.Status,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(update).Error; err != nil {
			return err
		}
		return tx.Model(&model.Order{}).Where("id = ?", update.OrderID).
			Update("updated_at", update.Timestamp).Error
	})
	if err != nil {
		logger.Error("Failed to add tracking update in database", err, map[string]interface{}{
			"order_id": update.OrderID,
			"status":   update.Status,
		})
		return err
	}

	logger.Debug("Tracking update added in database", map[string]interface{}{
		"order_id":  update.OrderID,
		"update_id": update.ID,
	})
	return nil
}

func (r *orderRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Order{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count orders in database", err)
		return 0, err
	}
	return count, nil
}
