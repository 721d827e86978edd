package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"catalog-admin-service/internal/models"
)

func TestFormatFromFileName(t *testing.T) {
	tests := []struct {
		name    string
		want    models.ImportFormat
		wantErr bool
	}{
		{"products.csv", models.ImportFormatCSV, false},
		{"Products.XLSX", models.ImportFormatXLSX, false},
		{"products.xls", "", true},
		{"products", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromFileName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV(t *testing.T) {
	input := "\ufeffName *,SKU *,Price *,Tags\n" +
		"Classic Tee,TEE-1,19.99,\"summer, cotton\"\n" +
		",,,\n" +
		"Cap,CAP-1,9.50,\n"

	rows, err := Parse(strings.NewReader(input), models.ImportFormatCSV, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Classic Tee", rows[0]["name"])
	assert.Equal(t, "TEE-1", rows[0]["sku"])
	assert.Equal(t, "summer, cotton", rows[0]["tags"])
	assert.Equal(t, 2, rows[0].Line())
	// blank line 3 is skipped but still counted
	assert.Equal(t, 4, rows[1].Line())
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, err := Parse(strings.NewReader("name,sku,price\n"), models.ImportFormatCSV, "")
	assert.ErrorIs(t, err, ErrNoDataRows)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Products")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Products", "A1", &[]interface{}{"name *", "sku *", "price *"}))
	require.NoError(t, f.SetSheetRow("Products", "A2", &[]interface{}{"Classic Tee", "TEE-1", "19.99"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := Parse(&buf, models.ImportFormatXLSX, "products")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "TEE-1", rows[0]["sku"])
	assert.Equal(t, 2, rows[0].Line())
}

func TestProductItems(t *testing.T) {
	rows := []Row{{
		"_row":               "2",
		"name":               "Classic Tee",
		"sku":                "TEE-1",
		"price":              "19.99",
		"compare_at_price":   "24.99",
		"stock_quantity":     "10",
		"status":             "active",
		"tags":               "summer,cotton",
		"attributes":         "Color:Black; Size:M ;Fit:Slim:Tall",
		"complementary_skus": "CAP-1, ,SOCK-1",
	}}

	items, err := ProductItems(rows)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.True(t, decimal.RequireFromString("19.99").Equal(item.Price))
	require.NotNil(t, item.CompareAtPrice)
	assert.True(t, decimal.RequireFromString("24.99").Equal(*item.CompareAtPrice))
	assert.Equal(t, 10, item.StockQuantity)
	assert.Equal(t, models.ProductStatusActive, item.Status)
	assert.Equal(t, "summer,cotton", item.Tags)
	assert.Equal(t, []models.BulkAttributeInput{
		{Name: "Color", Value: "Black"},
		{Name: "Size", Value: "M"},
		{Name: "Fit", Value: "Slim:Tall"},
	}, item.Attributes)
	assert.Equal(t, []string{"CAP-1", "SOCK-1"}, item.ComplementarySKUs)
	assert.Nil(t, item.CategoryID)
}

func TestProductItems_CollectsRowErrors(t *testing.T) {
	rows := []Row{
		{"_row": "2", "name": "Tee", "sku": "TEE-1", "price": "abc"},
		{"_row": "3", "sku": "TEE-2", "price": "5", "attributes": "Color"},
	}

	items, err := ProductItems(rows)
	assert.Nil(t, items)

	var rowErrs RowErrors
	require.True(t, errors.As(err, &rowErrs))
	require.Len(t, rowErrs, 3)
	assert.Equal(t, models.ImportRowError{Row: 2, Column: "price", Message: `invalid price "abc"`}, rowErrs[0])
	assert.Equal(t, 3, rowErrs[1].Row)
	assert.Equal(t, "name", rowErrs[1].Column)
	assert.Equal(t, "attributes", rowErrs[2].Column)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "and 2 more")
}

func TestUserRequests(t *testing.T) {
	rows := []Row{
		{"_row": "2", "email": "jane@example.com", "first_name": "Jane", "last_name": "Doe",
			"role": "Customer", "address_line1": "1 Market St", "city": "San Francisco",
			"postal_code": "94105", "country": "us"},
		{"_row": "3", "email": "joe@example.com", "first_name": "Joe"},
	}

	users, err := UserRequests(rows)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, models.UserRoleCustomer, users[0].Role)
	require.Len(t, users[0].ShippingAddresses, 1)
	addr := users[0].ShippingAddresses[0]
	assert.Equal(t, "Jane Doe", addr.FullName)
	assert.Equal(t, "US", addr.Country)
	assert.True(t, addr.IsDefault)

	assert.Empty(t, users[1].ShippingAddresses)
}

func TestUserRequests_InvalidRole(t *testing.T) {
	_, err := UserRequests([]Row{{"_row": "2", "email": "a@b.co", "role": "root"}})
	var rowErrs RowErrors
	require.True(t, errors.As(err, &rowErrs))
	assert.Equal(t, "role", rowErrs[0].Column)
}

func TestTemplateCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ProductTemplate().WriteCSV(&buf))
	assert.Equal(t,
		"name,sku,description,price,compare_at_price,stock_quantity,status,tags,attributes,complementary_skus\n",
		buf.String())
}

func TestTemplateXLSX_RoundTrip(t *testing.T) {
	tmpl := ProductTemplate()
	var buf bytes.Buffer
	require.NoError(t, tmpl.WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Products", "Instructions"}, f.GetSheetList())
	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "name *", rows[0][0])
	assert.Equal(t, "description", rows[0][2])
	assert.Equal(t, normalizeHeaders(rows[0])[0], "name")
}
