package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole is the role a user holds in the storefront or admin panel
type UserRole string

const (
	UserRoleAdmin          UserRole = "admin"
	UserRoleCatalogManager UserRole = "catalog_manager"
	UserRoleCustomer       UserRole = "customer"
)

// IsValid reports whether r is a known role
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleCatalogManager, UserRoleCustomer:
		return true
	}
	return false
}

// User is a storefront customer or an admin account
type User struct {
	ID                uuid.UUID             `json:"id" gorm:"type:uuid;primaryKey"`
	FirstName         string                `json:"firstName" gorm:"type:varchar(100)"`
	LastName          string                `json:"lastName" gorm:"type:varchar(100)"`
	Email             string                `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone             string                `json:"phone,omitempty" gorm:"type:varchar(50)"`
	PasswordHash      string                `json:"-" gorm:"type:varchar(255)"`
	Role              UserRole              `json:"role" gorm:"type:varchar(30);not null;index"`
	IsActive          bool                  `json:"isActive"`
	MustResetPassword bool                  `json:"mustResetPassword"`
	ShippingAddresses []UserShippingAddress `json:"shippingAddresses,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt        `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	if u.Role == "" {
		u.Role = UserRoleCustomer
	}
	return nil
}

// UserShippingAddress is a saved delivery address of a user
type UserShippingAddress struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	FullName     string    `json:"fullName" gorm:"type:varchar(200)"`
	Phone        string    `json:"phone,omitempty" gorm:"type:varchar(50)"`
	AddressLine1 string    `json:"addressLine1" gorm:"type:varchar(255);not null"`
	AddressLine2 string    `json:"addressLine2,omitempty" gorm:"type:varchar(255)"`
	City         string    `json:"city" gorm:"type:varchar(100);not null"`
	State        string    `json:"state,omitempty" gorm:"type:varchar(100)"`
	PostalCode   string    `json:"postalCode" gorm:"type:varchar(20);not null"`
	Country      string    `json:"country" gorm:"type:varchar(2);not null"`
	IsDefault    bool      `json:"isDefault"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (UserShippingAddress) TableName() string {
	return "user_shipping_addresses"
}

func (a *UserShippingAddress) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// AddressRequest creates or replaces a shipping address
type AddressRequest struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"isDefault"`
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	FirstName         string           `json:"firstName"`
	LastName          string           `json:"lastName"`
	Email             string           `json:"email" binding:"required"`
	Phone             string           `json:"phone"`
	Password          string           `json:"password"`
	Role              UserRole         `json:"role"`
	ShippingAddresses []AddressRequest `json:"shippingAddresses"`
}

type UpdateUserRequest struct {
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Phone     *string   `json:"phone"`
	Password  *string   `json:"password"`
	Role      *UserRole `json:"role"`
	IsActive  *bool     `json:"isActive"`
}

// UserFilters narrows user listings
type UserFilters struct {
	Search string
	Role   UserRole
}
