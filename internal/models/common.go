package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pagination defaults shared by list endpoints
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrorResponse is the error envelope returned by every endpoint
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// ListResponse wraps a page of results
type ListResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// NewPaginationInfo builds pagination metadata for a page
func NewPaginationInfo(page, limit int, total int64) *PaginationInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Page holds normalized pagination input
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit to sane values
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// assignID sets a fresh UUID when the primary key is unset
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// AllModels returns every entity table in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Category{},
		&Attribute{},
		&AttributeValue{},
		&AttributeSet{},
		&Tag{},
		&Product{},
		&User{},
		&UserShippingAddress{},
		&Order{},
		&OrderItem{},
		&BulkUploadJob{},
	}
}

// JoinModels returns the junction tables; they are migrated before the entities
// so many2many fields reuse them instead of creating bare join tables.
func JoinModels() []interface{} {
	return []interface{}{
		&AttributeSetAttribute{},
		&AttributeSetCategoryRelation{},
		&ProductCategory{},
		&ProductTag{},
		&ProductAttribute{},
		&ProductAttributeSet{},
		&ComplementaryProduct{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(JoinModels()...); err != nil {
		return err
	}
	return db.AutoMigrate(AllModels()...)
}
