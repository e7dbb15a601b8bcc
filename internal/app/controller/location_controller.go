package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type LocationController struct {
	locationService service.LocationService
}

func NewLocationController(locationService service.LocationService) *LocationController {
	return &LocationController{
		locationService: locationService,
	}
}

type CreateLocationRequest struct {
	Name string `json:"name"`
}

// ListLocations returns the stock locations
// GET /api/v1/admin/locations
func (ctrl *LocationController) ListLocations(c *gin.Context) {
	locations, err := ctrl.locationService.List()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list locations", err)
		apperrors.InternalError(c, "Failed to fetch locations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"locations": locations,
		"count":     len(locations),
	})
}

// CreateLocation adds a stock location
// POST /api/v1/admin/locations
func (ctrl *LocationController) CreateLocation(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	location, err := ctrl.locationService.AddLocation(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLocationNameRequired):
			apperrors.RespondWithValidationError(c, map[string]string{"name": "Please enter a location name"})
		case errors.Is(err, service.ErrLocationExists):
			apperrors.Conflict(c, apperrors.LocationExists, "")
		default:
			log.Error("Failed to add location", err)
			apperrors.InternalError(c, "Failed to add location")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Location added",
		"location": location,
	})
}

// DeleteLocation removes a stock location; unknown ids succeed
// DELETE /api/v1/admin/locations/:id
func (ctrl *LocationController) DeleteLocation(c *gin.Context) {
	if err := ctrl.locationService.RemoveLocation(c.Param("id")); err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to remove location", err)
		apperrors.InternalError(c, "Failed to remove location")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Location removed",
	})
}
