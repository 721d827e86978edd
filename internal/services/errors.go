package services

import (
	"errors"
	"fmt"

	"catalog-admin-service/internal/repository"
)

var (
	ErrCategoryNotFound       = errors.New("category not found")
	ErrAttributeNotFound      = errors.New("attribute not found")
	ErrAttributeValueNotFound = errors.New("attribute value not found")
	ErrAttributeSetNotFound   = errors.New("attribute set not found")
	ErrTagNotFound            = errors.New("tag not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrAddressNotFound        = errors.New("shipping address not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrUploadJobNotFound      = errors.New("upload job not found")
)

var notFoundErrors = []error{
	ErrCategoryNotFound,
	ErrAttributeNotFound,
	ErrAttributeValueNotFound,
	ErrAttributeSetNotFound,
	ErrTagNotFound,
	ErrProductNotFound,
	ErrUserNotFound,
	ErrAddressNotFound,
	ErrOrderNotFound,
	ErrUploadJobNotFound,
	repository.ErrNotFound,
}

// IsNotFound reports whether err means the addressed resource does not exist
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Error codes carried by ValidationError and ConflictError
const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeDuplicateSKU            = "DUPLICATE_SKU"
	CodeDuplicateEmail          = "DUPLICATE_EMAIL"
	CodeDuplicateAttributeCode  = "DUPLICATE_ATTRIBUTE_CODE"
	CodeCategoryInUse           = "CATEGORY_IN_USE"
)

// ValidationError is returned when input breaks a business rule
type ValidationError struct {
	Code    string
	Field   string
	Message string
	Details interface{}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError is returned when a write collides with existing data
type ConflictError struct {
	Code    string
	Message string
	Details interface{}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// mapNotFound swaps the generic repository sentinel for a resource specific one
func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
