package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-admin-service/internal/models"
)

type AttributeManager interface {
	CreateAttribute(ctx context.Context, req models.CreateAttributeRequest) (*models.Attribute, error)
	GetAttribute(ctx context.Context, id uuid.UUID) (*models.Attribute, error)
	ListAttributes(ctx context.Context, search string, page models.Page) ([]models.Attribute, int64, error)
	UpdateAttribute(ctx context.Context, id uuid.UUID, req models.UpdateAttributeRequest) (*models.Attribute, error)
	DeleteAttribute(ctx context.Context, id uuid.UUID) error

	AddValue(ctx context.Context, attributeID uuid.UUID, value string) (*models.AttributeValue, bool, error)
	ListValues(ctx context.Context, attributeID uuid.UUID) ([]models.AttributeValue, error)
	DeleteValue(ctx context.Context, id uuid.UUID) error

	CreateSet(ctx context.Context, req models.AttributeSetRequest) (*models.AttributeSet, error)
	UpdateSet(ctx context.Context, id uuid.UUID, req models.AttributeSetRequest) (*models.AttributeSet, error)
	GetSet(ctx context.Context, id uuid.UUID) (*models.AttributeSet, error)
	ListSets(ctx context.Context, page models.Page) ([]models.AttributeSet, int64, error)
	DeleteSet(ctx context.Context, id uuid.UUID) error
}

type AttributeHandler struct {
	service AttributeManager
	logger  *logrus.Logger
}

func NewAttributeHandler(service AttributeManager, logger *logrus.Logger) *AttributeHandler {
	return &AttributeHandler{service: service, logger: logger}
}

// @Summary Create attribute
// @Tags Attributes
// @Accept json
// @Produce json
// @Param attribute body models.CreateAttributeRequest true "Attribute"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /attributes [post]
func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	var req models.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	attr, err := h.service.CreateAttribute(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, attr)
}

func (h *AttributeHandler) GetAttributes(c *gin.Context) {
	page := parsePage(c)
	attrs, total, err := h.service.ListAttributes(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, attrs, page, total)
}

func (h *AttributeHandler) GetAttribute(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	attr, err := h.service.GetAttribute(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, attr)
}

func (h *AttributeHandler) UpdateAttribute(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	attr, err := h.service.UpdateAttribute(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, attr)
}

func (h *AttributeHandler) DeleteAttribute(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteAttribute(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddValue finds or creates a value of the attribute. Existing values
// answer 200, new ones 201.
func (h *AttributeHandler) AddValue(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.AttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	value, created, err := h.service.AddValue(c.Request.Context(), id, req.Value)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(c, status, value)
}

func (h *AttributeHandler) GetValues(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	values, err := h.service.ListValues(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, values)
}

func (h *AttributeHandler) DeleteValue(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteValue(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateAttributeSet groups attributes and binds them to categories
// @Summary Create attribute set
// @Tags Attribute Sets
// @Accept json
// @Produce json
// @Param set body models.AttributeSetRequest true "Attribute set"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /attribute-sets [post]
func (h *AttributeHandler) CreateAttributeSet(c *gin.Context) {
	var req models.AttributeSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	set, err := h.service.CreateSet(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, set)
}

func (h *AttributeHandler) GetAttributeSets(c *gin.Context) {
	page := parsePage(c)
	sets, total, err := h.service.ListSets(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, sets, page, total)
}

func (h *AttributeHandler) GetAttributeSet(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	set, err := h.service.GetSet(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, set)
}

func (h *AttributeHandler) UpdateAttributeSet(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.AttributeSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	set, err := h.service.UpdateSet(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, set)
}

func (h *AttributeHandler) DeleteAttributeSet(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSet(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
