package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Column describes one column of an import file
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// Template is the downloadable description of an import file
type Template struct {
	Entity  string   `json:"entity"`
	Sheet   string   `json:"sheet"`
	Columns []Column `json:"columns"`
}

func ProductTemplate() Template {
	return Template{
		Entity: "products",
		Sheet:  "Products",
		Columns: []Column{
			{Name: colName, Description: "Product name", Required: true, Type: "string", Example: "Classic Tee"},
			{Name: colSKU, Description: "Unique stock keeping unit", Required: true, Type: "string", Example: "TEE-BLK-M"},
			{Name: colDescription, Description: "Long description", Type: "string", Example: "Soft cotton t-shirt"},
			{Name: colPrice, Description: "Selling price", Required: true, Type: "number", Example: "19.99"},
			{Name: colCompareAtPrice, Description: "Original price shown struck through", Type: "number", Example: "24.99"},
			{Name: colStockQuantity, Description: "Units in stock", Type: "number", Example: "100"},
			{Name: colStatus, Description: "DRAFT, ACTIVE, INACTIVE or ARCHIVED", Type: "string", Example: "ACTIVE"},
			{Name: colTags, Description: "Comma separated tags", Type: "string", Example: "summer,cotton"},
			{Name: colAttributes, Description: "Attribute values as Name:Value pairs separated by ;", Type: "string", Example: "Color:Black;Size:M"},
			{Name: colComplementarySKUs, Description: "Comma separated SKUs of related products", Type: "string", Example: "CAP-BLK"},
		},
	}
}

func UserTemplate() Template {
	return Template{
		Entity: "users",
		Sheet:  "Users",
		Columns: []Column{
			{Name: colEmail, Description: "Login email, unique", Required: true, Type: "string", Example: "jane@example.com"},
			{Name: colFirstName, Description: "First name", Required: true, Type: "string", Example: "Jane"},
			{Name: colLastName, Description: "Last name", Type: "string", Example: "Doe"},
			{Name: colPhone, Description: "Phone number", Type: "string", Example: "+14155550100"},
			{Name: colPassword, Description: "Initial password, generated when empty", Type: "string", Example: ""},
			{Name: colRole, Description: "admin, catalog_manager or customer", Type: "string", Example: "customer"},
			{Name: colAddressLine1, Description: "Default shipping address line 1", Type: "string", Example: "1 Market St"},
			{Name: colAddressLine2, Description: "Shipping address line 2", Type: "string", Example: "Suite 200"},
			{Name: colCity, Description: "Shipping city", Type: "string", Example: "San Francisco"},
			{Name: colState, Description: "Shipping state or region", Type: "string", Example: "CA"},
			{Name: colPostalCode, Description: "Shipping postal code", Type: "string", Example: "94105"},
			{Name: colCountry, Description: "ISO 3166-1 alpha-2 country code", Type: "string", Example: "US"},
		},
	}
}

// WriteCSV writes the header row of the template
func (t Template) WriteCSV(w io.Writer) error {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = col.Name
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a workbook with a header-only data sheet and an
// Instructions sheet describing every column. Required headers end in " *".
func (t Template) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.Sheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return err
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return err
	}

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		header, style := col.Name, headerStyle
		if col.Required {
			header, style = col.Name+" *", requiredStyle
		}
		if err := f.SetCellValue(t.Sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Sheet, cell, cell, style); err != nil {
			return err
		}
		letter, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(t.Sheet, letter, letter, 20)
	}

	const info = "Instructions"
	if _, err := f.NewSheet(info); err != nil {
		return err
	}
	_ = f.SetCellValue(info, "A1", fmt.Sprintf("Import %s: one row per record, required columns are marked with *", t.Entity))
	for i, h := range []string{"Column", "Description", "Required", "Type", "Example"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(info, cell, h)
	}
	for i, col := range t.Columns {
		row := i + 4
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		_ = f.SetCellValue(info, fmt.Sprintf("A%d", row), col.Name)
		_ = f.SetCellValue(info, fmt.Sprintf("B%d", row), col.Description)
		_ = f.SetCellValue(info, fmt.Sprintf("C%d", row), required)
		_ = f.SetCellValue(info, fmt.Sprintf("D%d", row), col.Type)
		_ = f.SetCellValue(info, fmt.Sprintf("E%d", row), col.Example)
	}
	_ = f.SetColWidth(info, "A", "A", 25)
	_ = f.SetColWidth(info, "B", "B", 60)
	_ = f.SetColWidth(info, "C", "E", 20)

	if idx, err := f.GetSheetIndex(t.Sheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f.Write(w)
}
