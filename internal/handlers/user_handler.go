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

type UserManager interface {
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, filters models.UserFilters, page models.Page) ([]models.User, int64, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserShippingAddress, error)
	AddAddress(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.UserShippingAddress, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req models.AddressRequest) (*models.UserShippingAddress, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

type UserHandler struct {
	service UserManager
	logger  *logrus.Logger
}

func NewUserHandler(service UserManager, logger *logrus.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body models.CreateUserRequest true "User"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	user, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, user)
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	page := parsePage(c)
	users, total, err := h.service.List(c.Request.Context(), models.UserFilters{
		Search: c.Query("search"),
		Role:   models.UserRole(strings.ToLower(c.Query("role"))),
	}, page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, users, page, total)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	user, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
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

func (h *UserHandler) GetAddresses(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	addresses, err := h.service.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, addresses)
}

func (h *UserHandler) AddAddress(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	address, err := h.service.AddAddress(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, address)
}

func (h *UserHandler) UpdateAddress(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	addressID, ok := parseUUIDParam(c, "addressId")
	if !ok {
		return
	}
	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	address, err := h.service.UpdateAddress(c.Request.Context(), userID, addressID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, address)
}

func (h *UserHandler) DeleteAddress(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	addressID, ok := parseUUIDParam(c, "addressId")
	if !ok {
		return
	}
	if err := h.service.DeleteAddress(c.Request.Context(), userID, addressID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
