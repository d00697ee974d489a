package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// One turn of the transcript. Append-only; rows are never mutated
// after creation except for the meal backfill inside the same
// transaction that classified the image.
type Message struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(36);index;not null" json:"user_id"`
	MealID    *string   `gorm:"type:char(36);index" json:"meal_id,omitempty"`
	ImageID   *string   `gorm:"type:char(36)" json:"image_id,omitempty"`
	Sender    string    `gorm:"not null" json:"sender"`
	Text      *string   `json:"text,omitempty"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
