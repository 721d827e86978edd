package repository

import (
	"context"
	"strings"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles users and their shipping addresses
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user row only; addresses are added with CreateAddress
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

// ExistingEmails returns which of emails are already registered
func (r *UserRepository) ExistingEmails(ctx context.Context, emails []string) ([]string, error) {
	var taken []string
	if len(emails) == 0 {
		return taken, nil
	}
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(strings.TrimSpace(e))
	}
	err := r.db.WithContext(ctx).Unscoped().Model(&models.User{}).
		Where("LOWER(email) IN ?", lowered).
		Pluck("email", &taken).Error
	return taken, err
}

// GetByID retrieves a user with addresses
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("ShippingAddresses", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_default DESC, created_at ASC")
		}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, filters models.UserFilters, page models.Page) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("created_at DESC").Scopes(paginate(page.Page, page.Limit)).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft deletes a user and removes the saved addresses
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserShippingAddress{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

// --- Address Methods ---

func (r *UserRepository) CreateAddress(ctx context.Context, address *models.UserShippingAddress) error {
	return translateError(r.db.WithContext(ctx).Create(address).Error)
}

func (r *UserRepository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserShippingAddress, error) {
	var addresses []models.UserShippingAddress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error
	return addresses, err
}

func (r *UserRepository) GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.UserShippingAddress, error) {
	var address models.UserShippingAddress
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &address, nil
}

// SaveAddress writes every column of an existing address
func (r *UserRepository) SaveAddress(ctx context.Context, address *models.UserShippingAddress) error {
	return translateError(r.db.WithContext(ctx).Save(address).Error)
}

func (r *UserRepository) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).Delete(&models.UserShippingAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearDefaultAddress unsets the default flag on every address of the user
// except keepID
func (r *UserRepository) ClearDefaultAddress(ctx context.Context, userID, keepID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.UserShippingAddress{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keepID, true).
		Update("is_default", false).Error
}
