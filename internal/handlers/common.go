package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/services"
)

func respondWithError(c *gin.Context, status int, code, message, field string, details interface{}) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
			Field:   field,
			Details: details,
		},
	})
}

func respondBadRequest(c *gin.Context, message string) {
	respondWithError(c, http.StatusBadRequest, services.CodeValidation, message, "", nil)
}

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(c, http.StatusBadRequest, validationErr.Code, validationErr.Message, validationErr.Field, validationErr.Details)
	case errors.As(err, &conflictErr):
		respondWithError(c, http.StatusConflict, conflictErr.Code, conflictErr.Message, "", conflictErr.Details)
	case services.IsNotFound(err):
		respondWithError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), "", nil)
	default:
		_ = c.Error(err)
		logger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		respondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", "", nil)
	}
}

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.SuccessResponse{Success: true, Data: data})
}

func respondList(c *gin.Context, data interface{}, page models.Page, total int64) {
	c.JSON(http.StatusOK, models.ListResponse{
		Success:    true,
		Data:       data,
		Pagination: models.NewPaginationInfo(page.Page, page.Limit, total),
	})
}

// parsePage reads ?page= and ?limit=, ignoring malformed values
func parsePage(c *gin.Context) models.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(models.DefaultPageSize)))
	return models.Page{Page: page, Limit: limit}.Normalize()
}

// parseUUIDParam parses a path parameter and writes a 400 when malformed
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+" format", name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalUUIDQuery parses an optional query parameter
func parseOptionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+" format", name, nil)
		return nil, false
	}
	return &id, true
}
