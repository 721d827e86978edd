package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// IsValid reports whether s is a known product status
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusInactive, ProductStatusArchived:
		return true
	}
	return false
}

// Product is a sellable catalog item
type Product struct {
	ID             uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string           `json:"name" gorm:"type:varchar(255);not null"`
	Slug           string           `json:"slug" gorm:"type:varchar(255);index"`
	SKU            string           `json:"sku" gorm:"column:sku;type:varchar(100);not null;uniqueIndex"`
	Description    string           `json:"description,omitempty" gorm:"type:text"`
	Price          decimal.Decimal  `json:"price" gorm:"type:decimal(12,2);not null"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty" gorm:"type:decimal(12,2)"`
	StockQuantity  int              `json:"stockQuantity" gorm:"default:0"`
	Status         ProductStatus    `json:"status" gorm:"type:varchar(20);not null;index"`
	Specifications datatypes.JSON   `json:"specifications,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt   `json:"-" gorm:"index"`

	Categories            []Category       `json:"categories,omitempty" gorm:"many2many:product_categories"`
	Tags                  []Tag            `json:"tags,omitempty" gorm:"many2many:product_tags"`
	AttributeValues       []AttributeValue `json:"attributeValues,omitempty" gorm:"many2many:product_attributes"`
	AttributeSets         []AttributeSet   `json:"attributeSets,omitempty" gorm:"many2many:product_attribute_sets"`
	ComplementaryProducts []Product        `json:"complementaryProducts,omitempty" gorm:"many2many:complementary_products;joinForeignKey:ProductID;joinReferences:ComplementaryProductID"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	if p.Status == "" {
		p.Status = ProductStatusDraft
	}
	return nil
}

// ProductCategory links a product to its category
type ProductCategory struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt  time.Time
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

type ProductTag struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
}

func (ProductTag) TableName() string {
	return "product_tags"
}

// ProductAttribute links a product to one attribute value
type ProductAttribute struct {
	ProductID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AttributeValueID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt        time.Time
}

func (ProductAttribute) TableName() string {
	return "product_attributes"
}

type ProductAttributeSet struct {
	ProductID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	AttributeSetID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt      time.Time
}

func (ProductAttributeSet) TableName() string {
	return "product_attribute_sets"
}

// ComplementaryProduct records a "frequently bought with" pairing
type ComplementaryProduct struct {
	ProductID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ComplementaryProductID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt              time.Time
}

func (ComplementaryProduct) TableName() string {
	return "complementary_products"
}

// UpdateProductRequest carries a partial product update. Tags, when present,
// replace the product's tag links.
type UpdateProductRequest struct {
	Name           *string                `json:"name"`
	Description    *string                `json:"description"`
	Price          *decimal.Decimal       `json:"price"`
	CompareAtPrice *decimal.Decimal       `json:"compareAtPrice"`
	StockQuantity  *int                   `json:"stockQuantity"`
	Tags           *string                `json:"tags"`
	Specifications map[string]interface{} `json:"specifications"`
}

type UpdateProductStatusRequest struct {
	Status ProductStatus `json:"status" binding:"required"`
}

// ProductFilters narrows product listings
type ProductFilters struct {
	CategoryID *uuid.UUID
	Status     ProductStatus
	Search     string
	Tag        string
}
