package repository

import (
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(location *model.Location) error
	FindAll() ([]model.Location, error)
	FindByName(name string) (*model.Location, error)
	Delete(id string) (bool, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(location *model.Location) error {
	logger.Debug("Creating location in database", map[string]interface{}{
		"location_id": location.ID,
		"name":        location.Name,
	})

	if err := r.db.Create(location).Error; err != nil {
		logger.Error("Failed to create location in database", err, map[string]interface{}{
			"name": location.Name,
		})
		return err
	}

	logger.Debug("Location created in database", map[string]interface{}{
		"location_id": location.ID,
	})
	return nil
}

func (r *locationRepository) FindAll() ([]model.Location, error) {
	logger.Debug("Finding all locations in database")

	var locations []model.Location
	if err := r.db.Order("created_at ASC").Order("name ASC").Find(&locations).Error; err != nil {
		logger.Error("Failed to find locations in database", err)
		return nil, err
	}

	logger.Debug("Locations found in database", map[string]interface{}{
		"count": len(locations),
	})
	return locations, nil
}

// FindByName matches case-insensitively.
func (r *locationRepository) FindByName(name string) (*model.Location, error) {
	var location model.Location
	err := r.db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// Delete reports whether a row was removed.
func (r *locationRepository) Delete(id string) (bool, error) {
	logger.Debug("Deleting location from database", map[string]interface{}{
		"location_id": id,
	})

	result := r.db.Where("id = ?", id).Delete(&model.Location{})
	if result.Error != nil {
		logger.Error("Failed to delete location from database", result.Error, map[string]interface{}{
			"location_id": id,
		})
		return false, result.Error
	}

	logger.Debug("Location delete finished", map[string]interface{}{
		"location_id": id,
		"deleted":     result.RowsAffected > 0,
	})
	return result.RowsAffected > 0, nil
}
