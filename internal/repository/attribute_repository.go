package repository

import (
	"context"
	"errors"
	"strings"

	"catalog-admin-service/internal/cache"
	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeRepository handles attributes, their values and attribute sets
type AttributeRepository struct {
	db    *gorm.DB
	cache *cache.CatalogCache
}

func NewAttributeRepository(db *gorm.DB, catalogCache *cache.CatalogCache) *AttributeRepository {
	return &AttributeRepository{db: db, cache: catalogCache}
}

// --- Attribute Methods ---

func (r *AttributeRepository) CreateAttribute(ctx context.Context, attribute *models.Attribute) error {
	return translateError(r.db.WithContext(ctx).Omit("Values").Create(attribute).Error)
}

// GetAttribute retrieves an attribute with its values
func (r *AttributeRepository) GetAttribute(ctx context.Context, id uuid.UUID) (*models.Attribute, error) {
	var attribute models.Attribute
	err := r.db.WithContext(ctx).
		Preload("Values", func(db *gorm.DB) *gorm.DB { return db.Order("value ASC") }).
		First(&attribute, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &attribute, nil
}

// FindAttributesByIDs returns the attributes that exist among ids
func (r *AttributeRepository) FindAttributesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Attribute, error) {
	var attributes []models.Attribute
	if len(ids) == 0 {
		return attributes, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&attributes).Error
	return attributes, err
}

func (r *AttributeRepository) ListAttributes(ctx context.Context, search string, page models.Page) ([]models.Attribute, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Attribute{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", likePattern(search), likePattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attributes []models.Attribute
	err := query.Order("name ASC").Scopes(paginate(page.Page, page.Limit)).Find(&attributes).Error
	return attributes, total, err
}

func (r *AttributeRepository) UpdateAttribute(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Attribute{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.cache.InvalidateCatalog(ctx)
	return nil
}

// DeleteAttribute removes an attribute together with its values, set
// memberships and product links
func (r *AttributeRepository) DeleteAttribute(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		valueIDs := tx.Model(&models.AttributeValue{}).Select("id").Where("attribute_id = ?", id)
		if err := tx.Where("attribute_value_id IN (?)", valueIDs).Delete(&models.ProductAttribute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&models.AttributeValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&models.AttributeSetAttribute{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Attribute{}, "id = ?", id)
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

// --- Attribute Value Methods ---

// FindValue looks up a value of an attribute ignoring case
func (r *AttributeRepository) FindValue(ctx context.Context, attributeID uuid.UUID, value string) (*models.AttributeValue, error) {
	var av models.AttributeValue
	err := r.db.WithContext(ctx).
		Where("attribute_id = ? AND LOWER(value) = LOWER(?)", attributeID, strings.TrimSpace(value)).
		First(&av).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &av, nil
}

// FindOrCreateValue returns the existing value row for (attributeID, value)
// or inserts a new one. created reports whether a row was inserted.
func (r *AttributeRepository) FindOrCreateValue(ctx context.Context, attributeID uuid.UUID, value string) (av *models.AttributeValue, created bool, err error) {
	value = strings.TrimSpace(value)

	av, err = r.FindValue(ctx, attributeID, value)
	if err == nil {
		return av, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	av = &models.AttributeValue{AttributeID: attributeID, Value: value}
	// savepoint so a lost insert race does not abort an outer transaction
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(av).Error
	})
	if err != nil {
		if IsDuplicateKeyError(err) {
			av, err = r.FindValue(ctx, attributeID, value)
			return av, false, err
		}
		return nil, false, err
	}
	return av, true, nil
}

func (r *AttributeRepository) ListValues(ctx context.Context, attributeID uuid.UUID) ([]models.AttributeValue, error) {
	var values []models.AttributeValue
	err := r.db.WithContext(ctx).Where("attribute_id = ?", attributeID).Order("value ASC").Find(&values).Error
	return values, err
}

// DeleteValue removes a value and unlinks it from products
func (r *AttributeRepository) DeleteValue(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attribute_value_id = ?", id).Delete(&models.ProductAttribute{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.AttributeValue{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

// --- Attribute Set Methods ---

// CreateSet inserts a set with its attribute and category links
func (r *AttributeRepository) CreateSet(ctx context.Context, set *models.AttributeSet, attributeIDs, categoryIDs []uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Attributes", "Categories").Create(set).Error; err != nil {
			return err
		}
		return replaceSetMembers(tx, set.ID, attributeIDs, categoryIDs)
	}))
}

// UpdateSet renames a set and replaces its attribute and category links
func (r *AttributeRepository) UpdateSet(ctx context.Context, set *models.AttributeSet, attributeIDs, categoryIDs []uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.AttributeSet{}).Where("id = ?", set.ID).
			Updates(map[string]interface{}{"name": set.Name, "description": set.Description})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return replaceSetMembers(tx, set.ID, attributeIDs, categoryIDs)
	})
	if err != nil {
		return translateError(err)
	}
	r.cache.Delete(ctx, cache.AttributeSetKey(set.ID))
	return nil
}

func replaceSetMembers(tx *gorm.DB, setID uuid.UUID, attributeIDs, categoryIDs []uuid.UUID) error {
	if err := tx.Where("attribute_set_id = ?", setID).Delete(&models.AttributeSetAttribute{}).Error; err != nil {
		return err
	}
	if err := tx.Where("attribute_set_id = ?", setID).Delete(&models.AttributeSetCategoryRelation{}).Error; err != nil {
		return err
	}

	if ids := uniqueIDs(attributeIDs); len(ids) > 0 {
		rows := make([]models.AttributeSetAttribute, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.AttributeSetAttribute{AttributeSetID: setID, AttributeID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	if ids := uniqueIDs(categoryIDs); len(ids) > 0 {
		rows := make([]models.AttributeSetCategoryRelation, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.AttributeSetCategoryRelation{AttributeSetID: setID, CategoryID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetSet retrieves a set with its attributes and categories
func (r *AttributeRepository) GetSet(ctx context.Context, id uuid.UUID) (*models.AttributeSet, error) {
	var set models.AttributeSet
	err := r.cache.GetOrSetJSON(ctx, cache.AttributeSetKey(id), &set, func() (interface{}, error) {
		var s models.AttributeSet
		err := r.db.WithContext(ctx).
			Preload("Attributes", func(db *gorm.DB) *gorm.DB { return db.Order("attributes.name ASC") }).
			Preload("Categories").
			First(&s, "id = ?", id).Error
		if err != nil {
			return nil, translateError(err)
		}
		return &s, nil
	})
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *AttributeRepository) ListSets(ctx context.Context, page models.Page) ([]models.AttributeSet, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AttributeSet{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sets []models.AttributeSet
	err := r.db.WithContext(ctx).
		Preload("Attributes").
		Order("name ASC").
		Scopes(paginate(page.Page, page.Limit)).
		Find(&sets).Error
	return sets, total, err
}

// DeleteSet removes a set and all of its links
func (r *AttributeRepository) DeleteSet(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replaceSetMembers(tx, id, nil, nil); err != nil {
			return err
		}
		if err := tx.Where("attribute_set_id = ?", id).Delete(&models.ProductAttributeSet{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.AttributeSet{}, "id = ?", id)
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
	r.cache.Delete(ctx, cache.AttributeSetKey(id))
	return nil
}

// IsSetRelatedToCategory reports whether the set applies to the category
func (r *AttributeRepository) IsSetRelatedToCategory(ctx context.Context, setID, categoryID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AttributeSetCategoryRelation{}).
		Where("attribute_set_id = ? AND category_id = ?", setID, categoryID).
		Count(&count).Error
	return count > 0, err
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
