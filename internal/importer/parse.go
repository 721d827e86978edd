package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"catalog-admin-service/internal/models"
)

// rowKey holds the 1-based file line a parsed row came from
const rowKey = "_row"

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, use .csv or .xlsx")
	ErrNoDataRows        = errors.New("file must have a header row and at least one data row")
)

// Row is one data row keyed by normalized header name
type Row map[string]string

// Line returns the file line number of the row
func (r Row) Line() int {
	n, _ := strconv.Atoi(r[rowKey])
	return n
}

// RowErrors is returned when one or more rows could not be converted
type RowErrors []models.ImportRowError

func (e RowErrors) Error() string {
	if len(e) == 0 {
		return "no row errors"
	}
	first := e[0]
	msg := fmt.Sprintf("row %d: %s", first.Row, first.Message)
	if first.Column != "" {
		msg = fmt.Sprintf("row %d, column %s: %s", first.Row, first.Column, first.Message)
	}
	if len(e) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(e)-1)
	}
	return msg
}

// FormatFromFileName infers the import format from the file extension
func FormatFromFileName(name string) (models.ImportFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return models.ImportFormatCSV, nil
	case ".xlsx":
		return models.ImportFormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Parse reads all data rows of a CSV or XLSX file
func Parse(r io.Reader, format models.ImportFormat, sheet string) ([]Row, error) {
	var (
		rows []Row
		err  error
	)
	switch format {
	case models.ImportFormatCSV:
		rows, err = parseCSV(r)
	case models.ImportFormatXLSX:
		rows, err = parseXLSX(r, sheet)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}

func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.ToLower(h))
		out[i] = strings.TrimSpace(strings.TrimSuffix(h, "*"))
	}
	return out
}

func buildRow(headers, record []string, line int) (Row, bool) {
	row := make(Row, len(headers)+1)
	blank := true
	for i, value := range record {
		if i >= len(headers) || headers[i] == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if value != "" {
			blank = false
		}
		row[headers[i]] = value
	}
	row[rowKey] = strconv.Itoa(line)
	return row, blank
}

func parseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoDataRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	headers = normalizeHeaders(headers)

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", line, err)
		}
		row, blank := buildRow(headers, record, line)
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseXLSX(r io.Reader, sheet string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in Excel file")
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, sheet) {
			sheetName = name
			break
		}
	}

	records, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(records) < 2 {
		return nil, ErrNoDataRows
	}

	headers := normalizeHeaders(records[0])
	var rows []Row
	for i, record := range records[1:] {
		row, blank := buildRow(headers, record, i+2)
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
