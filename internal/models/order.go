package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "PLACED"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ValidOrderTransitions defines the allowed status moves.
// Flow: PLACED -> CONFIRMED -> PROCESSING -> SHIPPED -> DELIVERED
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled}, // can skip PROCESSING
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransitionOrderStatus checks if a move from one status to another is valid
func CanTransitionOrderStatus(from, to OrderStatus) bool {
	for _, next := range ValidOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is an admin-visible customer order
type Order struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderNumber       string          `json:"orderNumber" gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID            uuid.UUID       `json:"userId" gorm:"type:uuid;not null;index"`
	User              *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ShippingAddressID *uuid.UUID      `json:"shippingAddressId,omitempty" gorm:"type:uuid"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	Currency          string          `json:"currency" gorm:"type:varchar(3);not null"`
	Subtotal          decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	ShippingCost      decimal.Decimal `json:"shippingCost" gorm:"type:decimal(12,2);not null"`
	Total             decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Notes             string          `json:"notes,omitempty" gorm:"type:text"`
	Items             []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	assignID(&o.ID)
	if o.Status == "" {
		o.Status = OrderStatusPlaced
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	return nil
}

// OrderItem is one product line of an order; price and name are snapshots
type OrderItem struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `json:"productId" gorm:"type:uuid;not null"`
	ProductName string          `json:"productName" gorm:"not null"`
	SKU         string          `json:"sku" gorm:"column:sku;not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// CreateOrderRequest creates an order on behalf of a user
type CreateOrderRequest struct {
	UserID            uuid.UUID          `json:"userId" binding:"required"`
	ShippingAddressID *uuid.UUID         `json:"shippingAddressId"`
	Currency          string             `json:"currency"`
	ShippingCost      *decimal.Decimal   `json:"shippingCost"`
	Notes             string             `json:"notes"`
	Items             []OrderItemRequest `json:"items" binding:"required"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Notes  string      `json:"notes"`
}

// OrderFilters narrows order listings
type OrderFilters struct {
	Status OrderStatus
	UserID *uuid.UUID
}
