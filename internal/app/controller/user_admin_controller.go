package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type UserAdminController struct {
	userAdminService service.UserAdminService
}

func NewUserAdminController(userAdminService service.UserAdminService) *UserAdminController {
	return &UserAdminController{
		userAdminService: userAdminService,
	}
}

type SetAdminRequest struct {
	Admin *bool `json:"admin" binding:"required"`
}

// ListUsers returns every account with its roles, newest first
// GET /api/v1/admin/users
func (ctrl *UserAdminController) ListUsers(c *gin.Context) {
	users, err := ctrl.userAdminService.ListUsers()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list users", err)
		apperrors.InternalError(c, "Failed to fetch users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": out,
		"count": len(out),
	})
}

// SetAdmin grants or revokes the admin role
// PUT /api/v1/admin/users/:id/admin
func (ctrl *UserAdminController) SetAdmin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid user ID")
		return
	}

	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "admin is required")
		return
	}

	user, err := ctrl.userAdminService.SetAdmin(uint(id), *req.Admin)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to change admin role", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse(user),
	})
}

// GetDashboard returns the admin dashboard counters
// GET /api/v1/admin/dashboard
func (ctrl *UserAdminController) GetDashboard(c *gin.Context) {
	stats, err := ctrl.userAdminService.DashboardStats()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to compute dashboard stats", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, stats)
}
