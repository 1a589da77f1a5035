package models

import (
	"gorm.io/gorm"
)

// ChatRoom is a named participant group. Membership is managed by the REST
// chat routes; the hub resolves it read-only.
type ChatRoom struct {
	gorm.Model
	Name    string `gorm:"not null" json:"name"`
	OwnerID uint   `gorm:"not null" json:"ownerId"`

	Members []*User `gorm:"many2many:chat_room_members"`
}
