package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-admin-service/internal/models"
)

type CategoryManager interface {
	Create(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, filters models.CategoryFilters, page models.Page) ([]models.Category, int64, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListAttributeSets(ctx context.Context, id uuid.UUID) ([]models.AttributeSet, error)
}

type CategoryHandler struct {
	service CategoryManager
	logger  *logrus.Logger
}

func NewCategoryHandler(service CategoryManager, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

// CreateCategory creates a root category or a child of parentId
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param category body models.CreateCategoryRequest true "Category data"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	category, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, category)
}

// GetCategories lists categories
// @Summary List categories
// @Tags Categories
// @Produce json
// @Param parentId query string false "Only children of this category"
// @Param leafOnly query bool false "Only leaf categories"
// @Param search query string false "Name contains"
// @Success 200 {object} models.ListResponse
// @Router /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	parentID, ok := parseOptionalUUIDQuery(c, "parentId")
	if !ok {
		return
	}
	leafOnly, _ := strconv.ParseBool(c.Query("leafOnly"))

	page := parsePage(c)
	categories, total, err := h.service.List(c.Request.Context(), models.CategoryFilters{
		ParentID: parentID,
		LeafOnly: leafOnly,
		Search:   c.Query("search"),
	}, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, categories, page, total)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	category, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

// DeleteCategory refuses categories that still have children or products
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) GetCategoryAttributeSets(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sets, err := h.service.ListAttributeSets(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, sets)
}
