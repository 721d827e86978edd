package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeInputType describes how an attribute is edited in the admin panel
type AttributeInputType string

const (
	AttributeInputText        AttributeInputType = "TEXT"
	AttributeInputSelect      AttributeInputType = "SELECT"
	AttributeInputMultiSelect AttributeInputType = "MULTISELECT"
	AttributeInputNumber      AttributeInputType = "NUMBER"
	AttributeInputBoolean     AttributeInputType = "BOOLEAN"
)

// IsValid reports whether t is a known input type
func (t AttributeInputType) IsValid() bool {
	switch t {
	case AttributeInputText, AttributeInputSelect, AttributeInputMultiSelect,
		AttributeInputNumber, AttributeInputBoolean:
		return true
	}
	return false
}

// Attribute is a product property such as Color or Size
type Attribute struct {
	ID         uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string             `json:"name" gorm:"type:varchar(255);not null"`
	Code       string             `json:"code" gorm:"type:varchar(100);not null;uniqueIndex"`
	InputType  AttributeInputType `json:"inputType" gorm:"type:varchar(20);not null"`
	IsRequired bool               `json:"isRequired"`
	Values     []AttributeValue   `json:"values,omitempty" gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

func (Attribute) TableName() string {
	return "attributes"
}

func (a *Attribute) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// AttributeValue is one concrete value of an attribute, shared by every
// product carrying it
type AttributeValue struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	AttributeID uuid.UUID  `json:"attributeId" gorm:"type:uuid;not null;uniqueIndex:idx_attribute_values_attr_value"`
	Attribute   *Attribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID"`
	Value       string     `json:"value" gorm:"type:varchar(255);not null;uniqueIndex:idx_attribute_values_attr_value"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (AttributeValue) TableName() string {
	return "attribute_values"
}

func (v *AttributeValue) BeforeCreate(tx *gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// AttributeSet groups the attributes that apply to products of its categories
type AttributeSet struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string      `json:"name" gorm:"type:varchar(255);not null"`
	Description string      `json:"description,omitempty" gorm:"type:text"`
	Attributes  []Attribute `json:"attributes,omitempty" gorm:"many2many:attribute_set_attributes"`
	Categories  []Category  `json:"categories,omitempty" gorm:"many2many:attribute_set_category_relations"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (AttributeSet) TableName() string {
	return "attribute_sets"
}

func (s *AttributeSet) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// HasAttribute reports whether the set contains the attribute
func (s *AttributeSet) HasAttribute(id uuid.UUID) bool {
	for _, a := range s.Attributes {
		if a.ID == id {
			return true
		}
	}
	return false
}

// AttributeSetAttribute links an attribute to a set
type AttributeSetAttribute struct {
	AttributeSetID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AttributeID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt      time.Time
}

func (AttributeSetAttribute) TableName() string {
	return "attribute_set_attributes"
}

// AttributeSetCategoryRelation records which categories an attribute set applies to
type AttributeSetCategoryRelation struct {
	AttributeSetID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt      time.Time
}

func (AttributeSetCategoryRelation) TableName() string {
	return "attribute_set_category_relations"
}

// CreateAttributeRequest represents the request body for creating an attribute
type CreateAttributeRequest struct {
	Name       string             `json:"name" binding:"required"`
	Code       string             `json:"code"`
	InputType  AttributeInputType `json:"inputType"`
	IsRequired bool               `json:"isRequired"`
	Values     []string           `json:"values"`
}

type UpdateAttributeRequest struct {
	Name       *string             `json:"name"`
	InputType  *AttributeInputType `json:"inputType"`
	IsRequired *bool               `json:"isRequired"`
}

// AttributeValueRequest adds a value to an attribute
type AttributeValueRequest struct {
	Value string `json:"value" binding:"required"`
}

// AttributeSetRequest creates or replaces an attribute set
type AttributeSetRequest struct {
	Name         string      `json:"name" binding:"required"`
	Description  string      `json:"description"`
	AttributeIDs []uuid.UUID `json:"attributeIds"`
	CategoryIDs  []uuid.UUID `json:"categoryIds"`
}
