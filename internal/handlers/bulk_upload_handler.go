package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-admin-service/internal/importer"
	"catalog-admin-service/internal/middleware"
	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/services"
)

// maxImportFileSize caps multipart uploads
const maxImportFileSize = 10 << 20

// BulkUploader runs all-or-nothing bulk uploads
type BulkUploader interface {
	UploadProducts(ctx context.Context, req *models.BulkProductUploadRequest, source models.UploadSource) (*models.BulkProductUploadResult, error)
	UploadUsers(ctx context.Context, req *models.BulkUserUploadRequest, source models.UploadSource) (*models.BulkUserUploadResult, error)
	ListJobs(ctx context.Context, jobType models.BulkUploadType, page models.Page) ([]models.BulkUploadJob, int64, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.BulkUploadJob, error)
}

type BulkUploadHandler struct {
	service BulkUploader
	logger  *logrus.Logger
}

func NewBulkUploadHandler(service BulkUploader, logger *logrus.Logger) *BulkUploadHandler {
	return &BulkUploadHandler{service: service, logger: logger}
}

// UploadProducts creates a batch of products in one transaction
// @Summary Bulk upload products
// @Description Creates every product of the payload or none. All items must share the batch leaf category and attribute set.
// @Tags Bulk Upload
// @Accept json
// @Produce json
// @Param body body models.BulkProductUploadRequest true "Products"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /bulk-upload/products [post]
func (h *BulkUploadHandler) UploadProducts(c *gin.Context) {
	var req models.BulkProductUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.UploadProducts(c.Request.Context(), &req, models.UploadSource{
		Format:      models.ImportFormatJSON,
		RequestedBy: middleware.UserID(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// UploadUsers creates a batch of users and their shipping addresses in one transaction
// @Summary Bulk upload users
// @Tags Bulk Upload
// @Accept json
// @Produce json
// @Param body body models.BulkUserUploadRequest true "Users"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /bulk-upload/users [post]
func (h *BulkUploadHandler) UploadUsers(c *gin.Context) {
	var req models.BulkUserUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.service.UploadUsers(c.Request.Context(), &req, models.UploadSource{
		Format:      models.ImportFormatJSON,
		RequestedBy: middleware.UserID(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// ImportProducts parses a CSV or XLSX file and runs it as a product bulk upload
// @Summary Import products from file
// @Tags Bulk Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Param category_id formData string true "Leaf category id"
// @Param attribute_set_id formData string true "Attribute set id"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /bulk-upload/products/import [post]
func (h *BulkUploadHandler) ImportProducts(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportFileSize)
	categoryID, err := uuid.Parse(c.PostForm("category_id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "INVALID_ID", "Invalid category_id format", "category_id", nil)
		return
	}
	setID, err := uuid.Parse(c.PostForm("attribute_set_id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "INVALID_ID", "Invalid attribute_set_id format", "attribute_set_id", nil)
		return
	}

	rows, source, ok := h.readImportFile(c, importer.ProductTemplate().Sheet)
	if !ok {
		return
	}
	items, err := importer.ProductItems(rows)
	if err != nil {
		h.respondRowErrors(c, err)
		return
	}

	result, err := h.service.UploadProducts(c.Request.Context(), &models.BulkProductUploadRequest{
		Products:       items,
		CategoryID:     categoryID,
		AttributeSetID: setID,
	}, source)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// ImportUsers parses a CSV or XLSX file and runs it as a user bulk upload
// @Summary Import users from file
// @Tags Bulk Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /bulk-upload/users/import [post]
func (h *BulkUploadHandler) ImportUsers(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportFileSize)
	rows, source, ok := h.readImportFile(c, importer.UserTemplate().Sheet)
	if !ok {
		return
	}
	users, err := importer.UserRequests(rows)
	if err != nil {
		h.respondRowErrors(c, err)
		return
	}

	result, err := h.service.UploadUsers(c.Request.Context(), &models.BulkUserUploadRequest{UserData: users}, source)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

func (h *BulkUploadHandler) readImportFile(c *gin.Context, sheet string) ([]importer.Row, models.UploadSource, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "MISSING_FILE", "A .csv or .xlsx file is required in field 'file'", "file", nil)
		return nil, models.UploadSource{}, false
	}
	format, err := importer.FormatFromFileName(fileHeader.Filename)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error(), "file", nil)
		return nil, models.UploadSource{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return nil, models.UploadSource{}, false
	}
	defer file.Close()

	rows, err := importer.Parse(file, format, sheet)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "INVALID_FILE", err.Error(), "file", nil)
		return nil, models.UploadSource{}, false
	}

	return rows, models.UploadSource{
		Format:      format,
		FileName:    fileHeader.Filename,
		RequestedBy: middleware.UserID(c),
	}, true
}

func (h *BulkUploadHandler) respondRowErrors(c *gin.Context, err error) {
	var rowErrs importer.RowErrors
	if errors.As(err, &rowErrs) {
		respondWithError(c, http.StatusBadRequest, "INVALID_ROWS", err.Error(), "", []models.ImportRowError(rowErrs))
		return
	}
	respondBadRequest(c, err.Error())
}

// GetProductTemplate downloads the product import template
// @Summary Download product import template
// @Tags Bulk Upload
// @Produce octet-stream
// @Param format query string false "csv, xlsx or json" default(csv)
// @Router /bulk-upload/products/template [get]
func (h *BulkUploadHandler) GetProductTemplate(c *gin.Context) {
	h.writeTemplate(c, importer.ProductTemplate())
}

// GetUserTemplate downloads the user import template
// @Summary Download user import template
// @Tags Bulk Upload
// @Produce octet-stream
// @Param format query string false "csv, xlsx or json" default(csv)
// @Router /bulk-upload/users/template [get]
func (h *BulkUploadHandler) GetUserTemplate(c *gin.Context) {
	h.writeTemplate(c, importer.UserTemplate())
}

func (h *BulkUploadHandler) writeTemplate(c *gin.Context, tmpl importer.Template) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	filename := tmpl.Entity + "_import_template." + format

	switch models.ImportFormat(format) {
	case models.ImportFormatCSV:
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Status(http.StatusOK)
		if err := tmpl.WriteCSV(c.Writer); err != nil {
			h.logger.WithError(err).Error("Failed to write CSV template")
		}
	case models.ImportFormatXLSX:
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Status(http.StatusOK)
		if err := tmpl.WriteXLSX(c.Writer); err != nil {
			h.logger.WithError(err).Error("Failed to write XLSX template")
		}
	case models.ImportFormatJSON:
		respondSuccess(c, http.StatusOK, tmpl)
	default:
		respondWithError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "format must be csv, xlsx or json", "format", nil)
	}
}

// ListJobs lists bulk upload audit records, newest first
func (h *BulkUploadHandler) ListJobs(c *gin.Context) {
	jobType := models.BulkUploadType(strings.ToUpper(c.Query("type")))
	if jobType != "" && jobType != models.BulkUploadTypeProducts && jobType != models.BulkUploadTypeUsers {
		respondWithError(c, http.StatusBadRequest, services.CodeValidation, "type must be PRODUCTS or USERS", "type", nil)
		return
	}

	page := parsePage(c)
	jobs, total, err := h.service.ListJobs(c.Request.Context(), jobType, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, jobs, page, total)
}

func (h *BulkUploadHandler) GetJob(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, job)
}
