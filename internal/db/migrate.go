package db

import (
	"strconv"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.UserRole{},
		&model.Product{},
		&model.Location{},
		&model.Order{},
		&model.TrackingUpdate{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedWith(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedWith inserts the starter catalog, locations and tracked orders into any
// table that is still empty.
func SeedWith(db *gorm.DB) error {
	logger.Info("Seeding initial data...")

	if err := seedProducts(db); err != nil {
		logger.Error("Failed to seed products", err)
		return err
	}
	if err := seedLocations(db); err != nil {
		logger.Error("Failed to seed locations", err)
		return err
	}
	if err := seedOrders(db); err != nil {
		logger.Error("Failed to seed orders", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func tableEmpty(db *gorm.DB, m interface{}, name string) (bool, error) {
	var count int64
	if err := db.Model(m).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		logger.Info(name+" already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return false, nil
	}
	return true, nil
}

const pexelsSuffix = "?auto=compress&cs=tinysrgb&w=500"

func seedProducts(db *gorm.DB) error {
	empty, err := tableEmpty(db, &model.Product{}, "Products")
	if err != nil || !empty {
		return err
	}

	catalog := []struct {
		name, price, image, location, description string
	}{
		{"Wireless Bluetooth Headphones", "89.99", "photos/3394650/pexels-photo-3394650.jpeg", "San Francisco, CA", "Over-ear headphones with active noise cancellation and 30-hour battery life."},
		{"Smart Watch Series 7", "299.99", "photos/437037/pexels-photo-437037.jpeg", "New York, NY", "Always-on display, heart rate tracking and water resistance to 50m."},
		{"Professional Camera Lens", "450.00", "photos/90946/pexels-photo-90946.jpeg", "Los Angeles, CA", "Fast prime lens for portraits and low-light shooting."},
		{"Portable Wireless Speaker", "125.50", "photos/1649771/pexels-photo-1649771.jpeg", "Chicago, IL", "Rugged speaker with 360-degree sound and 12 hours of playback."},
		{"Gaming Mechanical Keyboard", "179.99", "photos/2115256/pexels-photo-2115256.jpeg", "Austin, TX", "Hot-swappable switches with per-key RGB lighting."},
		{"Smartphone with 5G", "699.99", "photos/699122/pexels-photo-699122.jpeg", "Seattle, WA", "6.5-inch OLED display, triple camera and 5G connectivity."},
		{"Laptop Stand Adjustable", "49.99", "photos/7974/pexels-photo.jpg", "Denver, CO", "Aluminium stand with six height settings."},
		{"Wireless Charging Pad", "39.99", "photos/4158/apple-iphone-smartphone-desk.jpg", "Miami, FL", "15W fast charging pad for Qi-compatible devices."},
	}

	// staggered timestamps keep catalog order stable
	base := time.Now().Add(-time.Hour)
	products := make([]model.Product, 0, len(catalog))
	for i, c := range catalog {
		created := base.Add(time.Duration(i) * time.Second)
		products = append(products, model.Product{
			ID:            strconv.Itoa(i + 1),
			Name:          c.name,
			Description:   c.description,
			Price:         decimal.RequireFromString(c.price),
			ImageURL:      "https://images.pexels.com/" + c.image + pexelsSuffix,
			StockQuantity: 25,
			Location:      c.location,
			CreatedAt:     created,
			UpdatedAt:     created,
		})
	}

	if err := db.Create(&products).Error; err != nil {
		return err
	}

	logger.Info("Products seeded successfully", map[string]interface{}{
		"total_products": len(products),
	})
	return nil
}

func seedLocations(db *gorm.DB) error {
	empty, err := tableEmpty(db, &model.Location{}, "Locations")
	if err != nil || !empty {
		return err
	}

	base := time.Now().Add(-time.Hour)
	locations := []model.Location{
		{ID: "1", Name: "Chicago Main", CreatedAt: base},
		{ID: "2", Name: "LA Distribution", CreatedAt: base.Add(time.Second)},
		{ID: "3", Name: "New York Warehouse", CreatedAt: base.Add(2 * time.Second)},
	}
	if err := db.Create(&locations).Error; err != nil {
		return err
	}

	logger.Info("Locations seeded successfully", map[string]interface{}{
		"total_locations": len(locations),
	})
	return nil
}

func seedOrders(db *gorm.DB) error {
	empty, err := tableEmpty(db, &model.Order{}, "Orders")
	if err != nil || !empty {
		return err
	}

	at := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02 3:04 PM", s)
		return t
	}

	orders := []model.Order{
		{
			ID:              "ORD-001",
			CustomerName:    "John Smith",
			ShippingAddress: "123 Main St, San Francisco, CA 94102",
			ProductOrdered:  "Wireless Bluetooth Headphones",
			TrackingHistory: []model.TrackingUpdate{
				{ID: "ORD-001-3", Status: model.OrderStatusShipped, Timestamp: at("2024-01-16 9:00 AM")},
				{ID: "ORD-001-2", Status: model.OrderStatusProcessing, Timestamp: at("2024-01-15 2:15 PM")},
				{ID: "ORD-001-1", Status: model.OrderStatusPlaced, Timestamp: at("2024-01-15 10:30 AM")},
			},
		},
		{
			ID:              "ORD-002",
			CustomerName:    "Sarah Johnson",
			ShippingAddress: "456 Oak Ave, Los Angeles, CA 90210",
			ProductOrdered:  "Smart Watch Series 7",
			TrackingHistory: []model.TrackingUpdate{
				{ID: "ORD-002-2", Status: model.OrderStatusProcessing, Timestamp: at("2024-01-15 8:30 AM")},
				{ID: "ORD-002-1", Status: model.OrderStatusPlaced, Timestamp: at("2024-01-14 3:45 PM")},
			},
		},
	}

	for i := range orders {
		if err := db.Create(&orders[i]).Error; err != nil {
			logger.Error("Failed to create order", err, map[string]interface{}{
				"order_id": orders[i].ID,
			})
			return err
		}
	}

	logger.Info("Orders seeded successfully", map[string]interface{}{
		"total_orders": len(orders),
	})
	return nil
}
