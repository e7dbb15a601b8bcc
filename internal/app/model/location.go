package model

import "time"

// Location is a warehouse or pickup point products can be assigned to.
type Location struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Location) TableName() string {
	return "locations"
}
