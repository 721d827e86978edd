package repository

import (
	"context"
	"errors"
	"strings"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagRepository handles database operations for tags
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindByName looks up a tag ignoring case
func (r *TagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).First(&tag).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &tag, nil
}

// FindOrCreate returns the tag named name, inserting it when absent
func (r *TagRepository) FindOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)

	tag, err := r.FindByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tag = &models.Tag{Name: name, Slug: generateSlug(name)}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(tag).Error
	})
	if err != nil {
		if IsDuplicateKeyError(err) {
			return r.FindByName(ctx, name)
		}
		return nil, err
	}
	return tag, nil
}

func (r *TagRepository) List(ctx context.Context, search string, page models.Page) ([]models.Tag, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Tag{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tags []models.Tag
	err := query.Order("name ASC").Scopes(paginate(page.Page, page.Limit)).Find(&tags).Error
	return tags, total, err
}

// Delete removes a tag and its product links
func (r *TagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.ProductTag{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tag{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}
