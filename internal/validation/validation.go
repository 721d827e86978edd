// Package validation checks and normalizes user and address input.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"catalog-admin-service/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldError represents a validation error with field details
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors is a collection of validation errors
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are validation errors
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

var (
	validate = validator.New()

	// ISO 3166-1 alpha-2
	countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

	phonePattern = regexp.MustCompile(`^[\+]?[(]?[0-9]{1,4}[)]?[-\s\.]?[(]?[0-9]{1,3}[)]?[-\s\.]?[0-9]{1,4}[-\s\.]?[0-9]{1,4}[-\s\.]?[0-9]{1,9}$`)

	postalCodePatterns = map[string]*regexp.Regexp{
		"US": regexp.MustCompile(`^\d{5}(-\d{4})?$`),
		"CA": regexp.MustCompile(`^[A-Za-z]\d[A-Za-z][ -]?\d[A-Za-z]\d$`),
		"GB": regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}$`),
		"AU": regexp.MustCompile(`^\d{4}$`),
		"IN": regexp.MustCompile(`^\d{6}$`),
		"DE": regexp.MustCompile(`^\d{5}$`),
		"FR": regexp.MustCompile(`^\d{5}$`),
	}
)

// Field length limits
const (
	MaxNameLength        = 100
	MaxAddressLineLength = 255
	MaxCityLength        = 100
	MaxPostalCodeLength  = 20
	MaxPhoneLength       = 50
	MinPasswordLength    = 8
	MaxPasswordLength    = 72
	MaxAddressesPerUser  = 20
)

// ValidateEmail reports whether email is a syntactically valid address
func ValidateEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// ValidatePhone accepts empty or internationally formatted numbers
func ValidatePhone(phone string) bool {
	return phone == "" || (len(phone) <= MaxPhoneLength && phonePattern.MatchString(phone))
}

// ValidateAddress validates a shipping address. Call SanitizeAddress first.
func ValidateAddress(address *models.UserShippingAddress) FieldErrors {
	var errs FieldErrors

	required := []struct {
		field string
		value string
	}{
		{"addressLine1", address.AddressLine1},
		{"city", address.City},
		{"postalCode", address.PostalCode},
		{"country", address.Country},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, FieldError{Field: r.field, Message: r.field + " is required", Code: "REQUIRED"})
		}
	}

	if len(address.AddressLine1) > MaxAddressLineLength || len(address.AddressLine2) > MaxAddressLineLength {
		errs = append(errs, FieldError{
			Field:   "addressLine1",
			Message: fmt.Sprintf("address lines must not exceed %d characters", MaxAddressLineLength),
			Code:    "MAX_LENGTH",
		})
	}
	if len(address.City) > MaxCityLength {
		errs = append(errs, FieldError{
			Field:   "city",
			Message: fmt.Sprintf("city must not exceed %d characters", MaxCityLength),
			Code:    "MAX_LENGTH",
		})
	}

	if address.Country != "" && !countryCodePattern.MatchString(address.Country) {
		errs = append(errs, FieldError{Field: "country", Message: "country must be an ISO 3166-1 alpha-2 code", Code: "INVALID_FORMAT"})
	}

	if address.PostalCode != "" {
		if len(address.PostalCode) > MaxPostalCodeLength {
			errs = append(errs, FieldError{Field: "postalCode", Message: "postal code is too long", Code: "MAX_LENGTH"})
		} else if pattern, ok := postalCodePatterns[address.Country]; ok && !pattern.MatchString(address.PostalCode) {
			errs = append(errs, FieldError{Field: "postalCode", Message: "invalid postal code for " + address.Country, Code: "INVALID_FORMAT"})
		}
	}

	if !ValidatePhone(address.Phone) {
		errs = append(errs, FieldError{Field: "phone", Message: "invalid phone number", Code: "INVALID_FORMAT"})
	}

	return errs
}

// SanitizeAddress trims fields and upper-cases country and postal code
func SanitizeAddress(address *models.UserShippingAddress) {
	address.FullName = strings.TrimSpace(address.FullName)
	address.Phone = strings.TrimSpace(address.Phone)
	address.AddressLine1 = strings.TrimSpace(address.AddressLine1)
	address.AddressLine2 = strings.TrimSpace(address.AddressLine2)
	address.City = strings.TrimSpace(address.City)
	address.State = strings.TrimSpace(address.State)
	address.PostalCode = strings.ToUpper(strings.TrimSpace(address.PostalCode))
	address.Country = strings.ToUpper(strings.TrimSpace(address.Country))
}

// AddressFromRequest builds a sanitized address model for userID
func AddressFromRequest(userID uuid.UUID, req models.AddressRequest) *models.UserShippingAddress {
	address := &models.UserShippingAddress{
		UserID:       userID,
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	}
	SanitizeAddress(address)
	return address
}
