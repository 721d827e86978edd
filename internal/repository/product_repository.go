package repository

import (
	"context"
	"strings"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository handles products and their junction rows
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts the product row only; links are attached separately
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.Slug == "" {
		product.Slug = generateSlug(product.Name)
	}
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error)
}

func (r *ProductRepository) AttachCategory(ctx context.Context, productID, categoryID uuid.UUID) error {
	return r.createLinks(ctx, &[]models.ProductCategory{{ProductID: productID, CategoryID: categoryID}})
}

func (r *ProductRepository) AttachAttributeSet(ctx context.Context, productID, setID uuid.UUID) error {
	return r.createLinks(ctx, &[]models.ProductAttributeSet{{ProductID: productID, AttributeSetID: setID}})
}

func (r *ProductRepository) AttachAttributeValues(ctx context.Context, productID uuid.UUID, valueIDs []uuid.UUID) error {
	ids := uniqueIDs(valueIDs)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.ProductAttribute, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.ProductAttribute{ProductID: productID, AttributeValueID: id})
	}
	return r.createLinks(ctx, &rows)
}

func (r *ProductRepository) AttachTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.ProductTag, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.ProductTag{ProductID: productID, TagID: id})
	}
	return r.createLinks(ctx, &rows)
}

// ReplaceTags drops the current tag links of a product and attaches tagIDs
func (r *ProductRepository) ReplaceTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductTag{}).Error; err != nil {
		return err
	}
	return r.AttachTags(ctx, productID, tagIDs)
}

func (r *ProductRepository) AttachComplementary(ctx context.Context, productID uuid.UUID, complementaryIDs []uuid.UUID) error {
	ids := uniqueIDs(complementaryIDs)
	rows := make([]models.ComplementaryProduct, 0, len(ids))
	for _, id := range ids {
		if id == productID {
			continue
		}
		rows = append(rows, models.ComplementaryProduct{ProductID: productID, ComplementaryProductID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return r.createLinks(ctx, &rows)
}

func (r *ProductRepository) createLinks(ctx context.Context, rows interface{}) error {
	return translateError(r.db.WithContext(ctx).Create(rows).Error)
}

// ExistingSKUs returns which of skus are already taken, including by
// soft deleted products since the unique index covers them too
func (r *ProductRepository) ExistingSKUs(ctx context.Context, skus []string) ([]string, error) {
	var taken []string
	if len(skus) == 0 {
		return taken, nil
	}
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("sku IN ?", skus).
		Pluck("sku", &taken).Error
	return taken, err
}

// FindIDsBySKUs maps live product SKUs to ids
func (r *ProductRepository) FindIDsBySKUs(ctx context.Context, skus []string) (map[string]uuid.UUID, error) {
	result := make(map[string]uuid.UUID, len(skus))
	if len(skus) == 0 {
		return result, nil
	}
	var rows []struct {
		ID  uuid.UUID
		SKU string `gorm:"column:sku"`
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("id", "sku").
		Where("sku IN ?", skus).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.SKU] = row.ID
	}
	return result, nil
}

// FindByIDs returns the live products among ids
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// GetByID retrieves a product with all of its links
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("AttributeValues.Attribute").
		Preload("AttributeSets").
		Preload("ComplementaryProducts").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// List retrieves products matching filters
func (r *ProductRepository) List(ctx context.Context, filters models.ProductFilters, page models.Page) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filters.CategoryID != nil {
		query = query.Where("id IN (?)",
			r.db.Model(&models.ProductCategory{}).Select("product_id").Where("category_id = ?", *filters.CategoryID))
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}
	if filters.Tag != "" {
		query = query.Where("id IN (?)",
			r.db.Model(&models.ProductTag{}).Select("product_tags.product_id").
				Joins("JOIN tags ON tags.id = product_tags.tag_id").
				Where("LOWER(tags.name) = ?", strings.ToLower(strings.TrimSpace(filters.Tag))))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Preload("Tags").
		Order("created_at DESC").
		Scopes(paginate(page.Page, page.Limit)).
		Find(&products).Error
	return products, total, err
}

// Update applies a partial update to a product
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	if name, ok := updates["name"].(string); ok {
		updates["slug"] = generateSlug(name)
	}
	result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft deletes a product and removes its junction rows
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		links := []interface{}{
			&models.ProductCategory{},
			&models.ProductTag{},
			&models.ProductAttribute{},
			&models.ProductAttributeSet{},
		}
		for _, link := range links {
			if err := tx.Where("product_id = ?", id).Delete(link).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("product_id = ? OR complementary_product_id = ?", id, id).
			Delete(&models.ComplementaryProduct{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}
