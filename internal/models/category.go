package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a node in the catalog tree. Products may only be attached to
// child categories that have no children of their own.
type Category struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Slug        string         `json:"slug" gorm:"type:varchar(255);index"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	ParentID    *uuid.UUID     `json:"parentId,omitempty" gorm:"type:uuid;index"`
	Parent      *Category      `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children    []Category     `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Position    int            `json:"position" gorm:"default:0"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
	Position    int        `json:"position"`
	IsActive    *bool      `json:"isActive"`
}

// UpdateCategoryRequest carries a partial category update
type UpdateCategoryRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parentId"`
	Position    *int       `json:"position"`
	IsActive    *bool      `json:"isActive"`
}

// CategoryFilters narrows category listings
type CategoryFilters struct {
	ParentID *uuid.UUID
	LeafOnly bool
	Search   string
}
