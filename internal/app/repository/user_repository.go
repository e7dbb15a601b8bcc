package repository

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindAll() ([]model.User, error)
	Update(user *model.User) error
	Count() (int64, error)
	AddRole(userID uint, role string) error
	RemoveRole(userID uint, role string) error
	CountByRole(role string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", map[string]interface{}{
		"user_id": id,
	})

	var user model.User
	if err := r.db.Preload("Roles").First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	logger.Debug("User found by ID in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.Preload("Roles").Where("email = ?", email).First(&user).Error; err != nil {
		logger.Error("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	logger.Debug("User found by email in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

// FindAll returns every user with roles, newest account first.
func (r *userRepository) FindAll() ([]model.User, error) {
	logger.Debug("Finding all users in database")

	var users []model.User
	if err := r.db.Preload("Roles").Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to find users in database", err)
		return nil, err
	}

	logger.Debug("Users found in database", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	if err := r.db.Omit("Roles").Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
		})
		return err
	}

	logger.Debug("User updated in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count users in database", err)
		return 0, err
	}
	return count, nil
}

// AddRole grants role to the user; granting a held role is a no-op.
func (r *userRepository) AddRole(userID uint, role string) error {
	logger.Debug("Adding user role in database", map[string]interface{}{
		"user_id": userID,
		"role":    role,
	})

	row := model.UserRole{UserID: userID, Role: role}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "role"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		logger.Error("Failed to add user role in database", err, map[string]interface{}{
			"user_id": userID,
			"role":    role,
		})
		return err
	}

	logger.Debug("User role added in database", map[string]interface{}{
		"user_id": userID,
		"role":    role,
	})
	return nil
}

func (r *userRepository) RemoveRole(userID uint, role string) error {
	logger.Debug("Removing user role from database", map[string]interface{}{
		"user_id": userID,
		"role":    role,
	})

	if err := r.db.Where("user_id = ? AND role = ?", userID, role).Delete(&model.UserRole{}).Error; err != nil {
		logger.Error("Failed to remove user role from database", err, map[string]interface{}{
			"user_id": userID,
			"role":    role,
		})
		return err
	}

	logger.Debug("User role removed from database", map[string]interface{}{
		"user_id": userID,
		"role":    role,
	})
	return nil
}

func (r *userRepository) CountByRole(role string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.UserRole{}).Where("role = ?", role).Count(&count).Error; err != nil {
		logger.Error("Failed to count user roles in database", err, map[string]interface{}{
			"role": role,
		})
		return 0, err
	}
	return count, nil
}
