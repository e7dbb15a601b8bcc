package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"  // implicit role of every account
	RoleAdmin = "admin" // grants the admin panel
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`              // user ID
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // login email, stored lower-case
	PasswordHash string         `gorm:"not null" json:"-"`                 // bcrypt hash
	Address      string         `gorm:"type:text" json:"address"`          // default shipping address
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Roles []UserRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// RoleNames lists the explicit role rows, always including RoleUser.
func (u *User) RoleNames() []string {
	names := []string{RoleUser}
	for _, r := range u.Roles {
		if r.Role != RoleUser {
			names = append(names, r.Role)
		}
	}
	return names
}

func (u *User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r.Role == RoleAdmin {
			return true
		}
	}
	return false
}

// UserRole is one granted role. A user holds each role at most once.
type UserRole struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_roles_user_role" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_roles_user_role" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
