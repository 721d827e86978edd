package repository

import (
	"context"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository handles database operations for orders
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order together with its items
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return translateError(r.db.WithContext(ctx).Omit("User").Create(order).Error)
}

// GetByID retrieves an order with items and the ordering user
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (r *OrderRepository) List(ctx context.Context, filters models.OrderFilters, page models.Page) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Scopes(paginate(page.Page, page.Limit)).
		Find(&orders).Error
	return orders, total, err
}

// UpdateStatus moves an order from one status to another. The update only
// applies while the order is still in from, so concurrent moves cannot both win.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, notes string) error {
	updates := map[string]interface{}{"status": to}
	if notes != "" {
		updates["notes"] = notes
	}
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
