package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// A chat user, created lazily on the first inbound message.
// Identifier is whatever the platform hands us (web session id,
// messenger user id) and is the dedup key.
type User struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	Identifier string    `gorm:"uniqueIndex;not null" json:"identifier"`
	Platform   string    `gorm:"default:'web'" json:"platform"`
	CreatedAt  time.Time `json:"created_at"`

	Meals    []Meal    `gorm:"foreignKey:UserID" json:"-"`
	Messages []Message `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
