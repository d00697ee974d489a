package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageStore keeps the uploaded photo bytes in the database so a meal
// and its chat message can reference the same picture by id. When S3
// offload is configured, ExternalURL carries the public CDN URL and
// the history endpoints prefer it over the local /api/image route.
type ImageStore struct {
	ID          string `gorm:"type:char(36);primaryKey" json:"id"`
	Data        []byte `gorm:"type:bytea" json:"-"`
	MimeType    string `gorm:"default:'image/jpeg'" json:"mime_type"`
	ExternalURL string `json:"external_url,omitempty"`
}

func (i *ImageStore) TableName() string { return "image_store" }

func (i *ImageStore) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
