package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-admin-service/internal/models"
)

type TagManager interface {
	Create(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context, search string, page models.Page) ([]models.Tag, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TagHandler struct {
	service TagManager
	logger  *logrus.Logger
}

func NewTagHandler(service TagManager, logger *logrus.Logger) *TagHandler {
	return &TagHandler{service: service, logger: logger}
}

// CreateTag returns the existing tag when the name matches case-insensitively
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req models.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	tag, err := h.service.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, tag)
}

func (h *TagHandler) GetTags(c *gin.Context) {
	page := parsePage(c)
	tags, total, err := h.service.List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, tags, page, total)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
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
