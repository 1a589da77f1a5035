package models

import (
	"gorm.io/gorm"
)

// User represents a launcher account. Auth, profile editing and friends are
// handled by the REST routes; the hub only reads id, username and role.
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `json:"-"`
	Role     string `gorm:"not null;default:user" json:"role"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = "user"
	}
	return nil
}
