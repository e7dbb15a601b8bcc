package service

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalAdmins   int64 `json:"total_admins"`
	TotalOrders   int64 `json:"total_orders"`
	TotalProducts int64 `json:"total_products"`
}

type UserAdminService interface {
	ListUsers() ([]model.User, error)
	SetAdmin(userID uint, grant bool) (*model.User, error)
	DashboardStats() (*DashboardStats, error)
}

type userAdminService struct {
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewUserAdminService(
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) UserAdminService {
	return &userAdminService{
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (s *userAdminService) ListUsers() ([]model.User, error) {
	return s.userRepo.FindAll()
}

// SetAdmin grants or revokes the admin role. The change reaches the user's
// tokens on their next login or refresh.
func (s *userAdminService) SetAdmin(userID uint, grant bool) (*model.User, error) {
	if _, err := s.findUser(userID); err != nil {
		return nil, err
	}

	var err error
	if grant {
		err = s.userRepo.AddRole(userID, model.RoleAdmin)
	} else {
		err = s.userRepo.RemoveRole(userID, model.RoleAdmin)
	}
	if err != nil {
		logger.Error("Failed to change admin role", err, map[string]interface{}{
			"user_id": userID,
			"grant":   grant,
		})
		return nil, err
	}

	logger.Info("Admin role changed", map[string]interface{}{
		"user_id": userID,
		"grant":   grant,
	})
	return s.findUser(userID)
}

func (s *userAdminService) findUser(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, translateUserErr(err)
	}
	return user, nil
}

func (s *userAdminService) DashboardStats() (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalAdmins, err = s.userRepo.CountByRole(model.RoleAdmin); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orderRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.productRepo.Count(); err != nil {
		return nil, err
	}

	logger.Debug("Dashboard stats computed", map[string]interface{}{
		"users":    stats.TotalUsers,
		"admins":   stats.TotalAdmins,
		"orders":   stats.TotalOrders,
		"products": stats.TotalProducts,
	})
	return &stats, nil
}
