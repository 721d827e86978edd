package services

import (
	"context"

	"github.com/google/uuid"

	"catalog-admin-service/internal/models"
)

// EventPublisher receives change notifications after successful writes
type EventPublisher interface {
	PublishProductsBulkCreated(ctx context.Context, jobID, categoryID uuid.UUID, productIDs []uuid.UUID) error
	PublishProductCreated(ctx context.Context, product *models.Product) error
	PublishProductDeleted(ctx context.Context, productID uuid.UUID) error
	PublishUsersBulkCreated(ctx context.Context, jobID uuid.UUID, userIDs []uuid.UUID) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error
}
