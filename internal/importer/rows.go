package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-admin-service/internal/models"
)

const (
	colName              = "name"
	colSKU               = "sku"
	colDescription       = "description"
	colPrice             = "price"
	colCompareAtPrice    = "compare_at_price"
	colStockQuantity     = "stock_quantity"
	colStatus            = "status"
	colTags              = "tags"
	colAttributes        = "attributes"
	colComplementarySKUs = "complementary_skus"

	colEmail        = "email"
	colFirstName    = "first_name"
	colLastName     = "last_name"
	colPhone        = "phone"
	colPassword     = "password"
	colRole         = "role"
	colAddressLine1 = "address_line1"
	colAddressLine2 = "address_line2"
	colCity         = "city"
	colState        = "state"
	colPostalCode   = "postal_code"
	colCountry      = "country"
)

type rowErrorCollector struct {
	errs RowErrors
}

func (c *rowErrorCollector) add(row Row, column, format string, args ...interface{}) {
	c.errs = append(c.errs, models.ImportRowError{
		Row:     row.Line(),
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *rowErrorCollector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

// ProductItems converts parsed rows into bulk upload items. Category and
// attribute set come from the request, not from the file. All row problems
// are collected and returned together as RowErrors.
func ProductItems(rows []Row) ([]models.BulkProductItem, error) {
	var errs rowErrorCollector
	items := make([]models.BulkProductItem, 0, len(rows))

	for _, row := range rows {
		item := models.BulkProductItem{
			Name:        row[colName],
			SKU:         row[colSKU],
			Description: row[colDescription],
			Status:      models.ProductStatus(strings.ToUpper(row[colStatus])),
			Tags:        row[colTags],
		}
		if item.Name == "" {
			errs.add(row, colName, "name is required")
		}
		if item.SKU == "" {
			errs.add(row, colSKU, "sku is required")
		}

		if raw := row[colPrice]; raw == "" {
			errs.add(row, colPrice, "price is required")
		} else if price, err := decimal.NewFromString(raw); err != nil {
			errs.add(row, colPrice, "invalid price %q", raw)
		} else {
			item.Price = price
		}

		if raw := row[colCompareAtPrice]; raw != "" {
			if p, err := decimal.NewFromString(raw); err != nil {
				errs.add(row, colCompareAtPrice, "invalid compare_at_price %q", raw)
			} else {
				item.CompareAtPrice = &p
			}
		}

		if raw := row[colStockQuantity]; raw != "" {
			if n, err := strconv.Atoi(raw); err != nil {
				errs.add(row, colStockQuantity, "invalid stock_quantity %q", raw)
			} else {
				item.StockQuantity = n
			}
		}

		if item.Status != "" && !item.Status.IsValid() {
			errs.add(row, colStatus, "invalid status %q", row[colStatus])
		}

		attrs, err := parseAttributePairs(row[colAttributes])
		if err != nil {
			errs.add(row, colAttributes, "%s", err.Error())
		}
		item.Attributes = attrs
		item.ComplementarySKUs = splitList(row[colComplementarySKUs], ",")

		items = append(items, item)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return items, nil
}

// parseAttributePairs reads "Color:Black;Size:M". Only the first colon splits,
// so values may contain colons.
func parseAttributePairs(raw string) ([]models.BulkAttributeInput, error) {
	var out []models.BulkAttributeInput
	for _, pair := range splitList(raw, ";") {
		name, value, ok := strings.Cut(pair, ":")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("attribute %q must be written as Name:Value", pair)
		}
		out = append(out, models.BulkAttributeInput{Name: name, Value: value})
	}
	return out, nil
}

// UserRequests converts parsed rows into user bulk upload entries. A row
// with any address column set produces one default shipping address.
func UserRequests(rows []Row) ([]models.CreateUserRequest, error) {
	var errs rowErrorCollector
	users := make([]models.CreateUserRequest, 0, len(rows))

	for _, row := range rows {
		req := models.CreateUserRequest{
			FirstName: row[colFirstName],
			LastName:  row[colLastName],
			Email:     row[colEmail],
			Phone:     row[colPhone],
			Password:  row[colPassword],
			Role:      models.UserRole(strings.ToLower(row[colRole])),
		}
		if req.Email == "" {
			errs.add(row, colEmail, "email is required")
		}
		if req.Role != "" && !req.Role.IsValid() {
			errs.add(row, colRole, "invalid role %q", row[colRole])
		}

		addr := models.AddressRequest{
			FullName:     strings.TrimSpace(req.FirstName + " " + req.LastName),
			Phone:        req.Phone,
			AddressLine1: row[colAddressLine1],
			AddressLine2: row[colAddressLine2],
			City:         row[colCity],
			State:        row[colState],
			PostalCode:   row[colPostalCode],
			Country:      strings.ToUpper(row[colCountry]),
			IsDefault:    true,
		}
		if addr.AddressLine1 != "" || addr.City != "" || addr.PostalCode != "" || addr.Country != "" {
			req.ShippingAddresses = []models.AddressRequest{addr}
		}

		users = append(users, req)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return users, nil
}

func splitList(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
