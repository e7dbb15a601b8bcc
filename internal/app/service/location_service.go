package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrLocationNameRequired = errors.New("please enter a location name")
	ErrLocationExists       = errors.New("this location already exists")
)

type LocationService interface {
	List() ([]model.Location, error)
	AddLocation(name string) (*model.Location, error)
	RemoveLocation(id string) error
}

type locationService struct {
	locationRepo repository.LocationRepository
}

func NewLocationService(locationRepo repository.LocationRepository) LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) List() ([]model.Location, error) {
	return s.locationRepo.FindAll()
}

// AddLocation trims name and rejects blanks and case-insensitive duplicates.
func (s *locationService) AddLocation(name string) (*model.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLocationNameRequired
	}

	_, err := s.locationRepo.FindByName(name)
	if err == nil {
		logger.Warn("Location rejected: duplicate name", map[string]interface{}{
			"name": name,
		})
		return nil, ErrLocationExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing location", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	location := &model.Location{ID: uuid.NewString(), Name: name}
	if err := s.locationRepo.Create(location); err != nil {
		return nil, err
	}

	logger.Info("Location added", map[string]interface{}{
		"location_id": location.ID,
		"name":        name,
	})
	return location, nil
}

// RemoveLocation deletes the location; unknown ids are a no-op.
func (s *locationService) RemoveLocation(id string) error {
	deleted, err := s.locationRepo.Delete(id)
	if err != nil {
		return err
	}

	logger.Info("Location removal processed", map[string]interface{}{
		"location_id": id,
		"deleted":     deleted,
	})
	return nil
}
