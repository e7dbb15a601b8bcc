package model

import (
	"time"
)

type OrderStatus string // tracking status label shown to customers

const (
	OrderStatusPlaced         OrderStatus = "Order Placed"
	OrderStatusProcessing     OrderStatus = "Processing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusInTransit      OrderStatus = "In Transit"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusDelayed        OrderStatus = "Delayed"
)

// AdminStatusOptions are the statuses an admin may post from the tracking panel.
var AdminStatusOptions = []OrderStatus{
	OrderStatusInTransit,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusDelayed,
}

// IsAdminSettable reports whether s is one of AdminStatusOptions.
func (s OrderStatus) IsAdminSettable() bool {
	for _, opt := range AdminStatusOptions {
		if s == opt {
			return true
		}
	}
	return false
}

// Order is a fulfilled purchase tracked by the admin panel. Checkout does not
// create these.
type Order struct {
	ID              string    `gorm:"primaryKey;type:varchar(32)" json:"id"` // e.g. ORD-001
	CustomerName    string    `gorm:"not null" json:"customer_name"`
	ShippingAddress string    `gorm:"type:text" json:"shipping_address"`
	ProductOrdered  string    `json:"product_ordered"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	TrackingHistory []TrackingUpdate `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"tracking_history"` // newest first
}

func (Order) TableName() string {
	return "orders"
}

type TrackingUpdate struct {
	ID        string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID   string      `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(32);not null" json:"status"`
	Timestamp time.Time   `gorm:"column:recorded_at;index" json:"timestamp"`
	CreatedAt time.Time   `json:"-"`
}

func (TrackingUpdate) TableName() string {
	return "tracking_updates"
}
