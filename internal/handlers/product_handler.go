package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-admin-service/internal/models"
)

type ProductManager interface {
	Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters models.ProductFilters, page models.Page) ([]models.Product, int64, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProductStatus) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductHandler struct {
	service ProductManager
	logger  *logrus.Logger
}

func NewProductHandler(service ProductManager, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

// CreateProduct creates one product with the same checks as a bulk upload
// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	product, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, product)
}

// GetProducts lists products
// @Summary List products
// @Tags Products
// @Produce json
// @Param categoryId query string false "Category filter"
// @Param status query string false "DRAFT, ACTIVE, INACTIVE or ARCHIVED"
// @Param search query string false "Name or SKU contains"
// @Param tag query string false "Tag name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.ListResponse
// @Router /products [get]
func (h *ProductHandler) GetProducts(c *gin.Context) {
	categoryID, ok := parseOptionalUUIDQuery(c, "categoryId")
	if !ok {
		return
	}

	page := parsePage(c)
	products, total, err := h.service.List(c.Request.Context(), models.ProductFilters{
		CategoryID: categoryID,
		Status:     models.ProductStatus(strings.ToUpper(c.Query("status"))),
		Search:     c.Query("search"),
		Tag:        c.Query("tag"),
	}, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, products, page, total)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	product, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

func (h *ProductHandler) UpdateProductStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	product, err := h.service.UpdateStatus(c.Request.Context(), id, models.ProductStatus(strings.ToUpper(string(req.Status))))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
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
