package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BulkUploadType identifies what a bulk upload created
type BulkUploadType string

const (
	BulkUploadTypeProducts BulkUploadType = "PRODUCTS"
	BulkUploadTypeUsers    BulkUploadType = "USERS"
)

// BulkUploadStatus represents the outcome of a bulk upload
type BulkUploadStatus string

const (
	BulkUploadStatusCompleted BulkUploadStatus = "COMPLETED"
	BulkUploadStatusFailed    BulkUploadStatus = "FAILED"
)

// ImportFormat represents the payload source of a bulk upload
type ImportFormat string

const (
	ImportFormatJSON ImportFormat = "json"
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// BulkUploadJob is the audit record written after every bulk upload attempt
type BulkUploadJob struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Type         BulkUploadType   `json:"type" gorm:"type:varchar(20);not null;index"`
	Status       BulkUploadStatus `json:"status" gorm:"type:varchar(20);not null"`
	Source       ImportFormat     `json:"source" gorm:"type:varchar(10);not null"`
	FileName     string           `json:"fileName,omitempty" gorm:"type:varchar(255)"`
	TotalItems   int              `json:"totalItems"`
	CreatedCount int              `json:"createdCount"`
	ErrorCode    string           `json:"errorCode,omitempty" gorm:"type:varchar(50)"`
	ErrorMessage string           `json:"errorMessage,omitempty" gorm:"type:text"`
	CreatedIDs   datatypes.JSON   `json:"createdIds,omitempty"`
	RequestedBy  string           `json:"requestedBy,omitempty" gorm:"type:varchar(255)"`
	CreatedAt    time.Time        `json:"createdAt" gorm:"index"`
}

func (BulkUploadJob) TableName() string {
	return "bulk_upload_jobs"
}

func (j *BulkUploadJob) BeforeCreate(tx *gorm.DB) error {
	assignID(&j.ID)
	return nil
}

// BulkProductUploadRequest is the body of a product bulk upload. Every item
// must belong to the batch category and attribute set.
type BulkProductUploadRequest struct {
	Products       []BulkProductItem `json:"products"`
	CategoryID     uuid.UUID         `json:"category_id"`
	AttributeSetID uuid.UUID         `json:"attribute_set_id"`
}

// BulkProductItem is one product of a bulk upload. Item level category and
// attribute set ids are optional and default to the batch ids.
type BulkProductItem struct {
	Name              string                 `json:"name"`
	SKU               string                 `json:"sku"`
	Description       string                 `json:"description,omitempty"`
	Price             decimal.Decimal        `json:"price"`
	CompareAtPrice    *decimal.Decimal       `json:"compare_at_price,omitempty"`
	StockQuantity     int                    `json:"stock_quantity"`
	Status            ProductStatus          `json:"status,omitempty"`
	CategoryID        *uuid.UUID             `json:"category_id,omitempty"`
	AttributeSetID    *uuid.UUID             `json:"attribute_set_id,omitempty"`
	Tags              string                 `json:"tags,omitempty"`
	Attributes        []BulkAttributeInput   `json:"attributes,omitempty"`
	ComplementarySKUs []string               `json:"complementary_skus,omitempty"`
	Specifications    map[string]interface{} `json:"specifications,omitempty"`
}

// BulkAttributeInput names an attribute by id or by name together with its value
type BulkAttributeInput struct {
	AttributeID uuid.UUID `json:"attribute_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Value       string    `json:"value"`
}

// CreateProductRequest creates a single product
type CreateProductRequest struct {
	BulkProductItem
	CategoryID     uuid.UUID `json:"category_id"`
	AttributeSetID uuid.UUID `json:"attribute_set_id"`
}

type BulkProductUploadResult struct {
	JobID      uuid.UUID   `json:"jobId"`
	ProductIDs []uuid.UUID `json:"productIds"`
	Count      int         `json:"count"`
}

// BulkUserUploadRequest is the body of a user bulk upload
type BulkUserUploadRequest struct {
	UserData []CreateUserRequest `json:"userData"`
}

type BulkUserUploadResult struct {
	JobID   uuid.UUID   `json:"jobId"`
	UserIDs []uuid.UUID `json:"userIds"`
	Count   int         `json:"count"`
}

// UploadSource describes where a bulk payload came from
type UploadSource struct {
	Format      ImportFormat
	FileName    string
	RequestedBy string
}

// ImportRowError represents an error for a specific row of an import file
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}
