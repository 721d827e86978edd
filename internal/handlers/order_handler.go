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

type OrderManager interface {
	Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters models.OrderFilters, page models.Page) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req models.UpdateOrderStatusRequest) (*models.Order, error)
}

type OrderHandler struct {
	service OrderManager
	logger  *logrus.Logger
}

func NewOrderHandler(service OrderManager, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{service: service, logger: logger}
}

// CreateOrder places an order on behalf of a user. Prices are copied from
// the products at the time of the call.
// @Summary Create order
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body models.CreateOrderRequest true "Order"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, order)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := parseOptionalUUIDQuery(c, "userId")
	if !ok {
		return
	}
	page := parsePage(c)
	orders, total, err := h.service.List(c.Request.Context(), models.OrderFilters{
		Status: models.OrderStatus(strings.ToUpper(c.Query("status"))),
		UserID: userID,
	}, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, orders, page, total)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, order)
}

// UpdateOrderStatus moves an order along its lifecycle
// @Summary Update order status
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	req.Status = models.OrderStatus(strings.ToUpper(string(req.Status)))

	order, err := h.service.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, order)
}
