package repository

import (
	"context"
	"strings"

	"catalog-admin-service/internal/cache"
	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	db    *gorm.DB
	cache *cache.CatalogCache
}

func NewCategoryRepository(db *gorm.DB, catalogCache *cache.CatalogCache) *CategoryRepository {
	return &CategoryRepository{db: db, cache: catalogCache}
}

// Create inserts a category, deriving the slug from the name when unset
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.Slug == "" {
		category.Slug = generateSlug(category.Name)
	}
	if err := r.db.WithContext(ctx).Omit("Parent", "Children").Create(category).Error; err != nil {
		return translateError(err)
	}
	if category.ParentID != nil {
		r.cache.Delete(ctx, cache.CategoryKey(*category.ParentID))
	}
	return nil
}

// GetByID retrieves a category with its direct children
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.cache.GetOrSetJSON(ctx, cache.CategoryKey(id), &category, func() (interface{}, error) {
		var c models.Category
		err := r.db.WithContext(ctx).
			Preload("Children", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC, name ASC")
			}).
			First(&c, "id = ?", id).Error
		if err != nil {
			return nil, translateError(err)
		}
		return &c, nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List retrieves categories matching filters
func (r *CategoryRepository) List(ctx context.Context, filters models.CategoryFilters, page models.Page) ([]models.Category, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Category{})

	if filters.ParentID != nil {
		query = query.Where("parent_id = ?", *filters.ParentID)
	}
	if filters.LeafOnly {
		query = query.Where("parent_id IS NOT NULL").
			Where("NOT EXISTS (SELECT 1 FROM categories child WHERE child.parent_id = categories.id AND child.deleted_at IS NULL)")
	}
	if filters.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filters.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []models.Category
	err := query.Order("position ASC, name ASC").
		Scopes(paginate(page.Page, page.Limit)).
		Find(&categories).Error
	return categories, total, err
}

// Update persists changed category fields
func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if name, ok := updates["name"].(string); ok {
		updates["slug"] = generateSlug(name)
	}
	result := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	// parent links may have moved, so cached children lists are stale
	r.cache.InvalidateCatalog(ctx)
	return nil
}

// Delete soft deletes a category and its attribute set relations
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.AttributeSetCategoryRelation{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Category{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return translateError(err)
	}
	r.cache.InvalidateCatalog(ctx)
	return nil
}

// CountChildren returns the number of live direct children
func (r *CategoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

// CountProducts returns the number of live products linked to the category
func (r *CategoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductCategory{}).
		Joins("JOIN products ON products.id = product_categories.product_id AND products.deleted_at IS NULL").
		Where("product_categories.category_id = ?", id).
		Count(&count).Error
	return count, err
}

// ListAttributeSets returns the attribute sets related to a category
func (r *CategoryRepository) ListAttributeSets(ctx context.Context, id uuid.UUID) ([]models.AttributeSet, error) {
	var sets []models.AttributeSet
	err := r.db.WithContext(ctx).
		Joins("JOIN attribute_set_category_relations rel ON rel.attribute_set_id = attribute_sets.id").
		Where("rel.category_id = ?", id).
		Preload("Attributes").
		Order("attribute_sets.name ASC").
		Find(&sets).Error
	return sets, err
}

// IsDescendant reports whether candidate sits below ancestor in the tree
func (r *CategoryRepository) IsDescendant(ctx context.Context, ancestor, candidate uuid.UUID) (bool, error) {
	current := candidate
	for depth := 0; depth < 64; depth++ {
		var c models.Category
		err := r.db.WithContext(ctx).Select("id", "parent_id").First(&c, "id = ?", current).Error
		if err != nil {
			return false, translateError(err)
		}
		if c.ParentID == nil {
			return false, nil
		}
		if *c.ParentID == ancestor {
			return true, nil
		}
		current = *c.ParentID
	}
	return false, nil
}

func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
