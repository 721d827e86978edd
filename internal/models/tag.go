package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a free-form product label, unique by name ignoring case
type Tag struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}
