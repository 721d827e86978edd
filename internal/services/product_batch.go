package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Column limits of the products and attribute_values tables
const (
	MaxProductNameLength    = 255
	MaxSKULength            = 100
	MaxAttributeValueLength = 255
)

// productBatch is a product payload that passed every pre-insert check
type productBatch struct {
	category *models.Category
	set      *models.AttributeSet
	items    []models.BulkProductItem
	// resolved attribute id per item attribute, parallel to item.Attributes
	attributeIDs [][]uuid.UUID
	// complementary SKUs that already exist in the catalog
	knownSKUs map[string]uuid.UUID
}

// prepareProductBatch runs the existence and consistency checks that must
// hold before any row is written
func prepareProductBatch(ctx context.Context, store *repository.Store, req *models.BulkProductUploadRequest, maxItems int) (*productBatch, error) {
	if len(req.Products) == 0 {
		return nil, newValidationError("products", "at least one product is required")
	}
	if maxItems > 0 && len(req.Products) > maxItems {
		return nil, newValidationError("products", "a bulk upload accepts at most %d products, got %d", maxItems, len(req.Products))
	}
	if req.CategoryID == uuid.Nil {
		return nil, newValidationError("category_id", "category_id is required")
	}
	if req.AttributeSetID == uuid.Nil {
		return nil, newValidationError("attribute_set_id", "attribute_set_id is required")
	}

	for i, item := range req.Products {
		if item.CategoryID != nil && *item.CategoryID != req.CategoryID {
			return nil, newValidationError(fmt.Sprintf("products[%d].category_id", i),
				"category_id %s does not match the batch category %s", *item.CategoryID, req.CategoryID)
		}
		if item.AttributeSetID != nil && *item.AttributeSetID != req.AttributeSetID {
			return nil, newValidationError(fmt.Sprintf("products[%d].attribute_set_id", i),
				"attribute_set_id %s does not match the batch attribute set %s", *item.AttributeSetID, req.AttributeSetID)
		}
	}

	category, err := store.Categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("category_id", "category %s does not exist", req.CategoryID)
		}
		return nil, err
	}
	if category.ParentID == nil || len(category.Children) > 0 {
		return nil, newValidationError("category_id", "category %q is not a child category", category.Name)
	}

	set, err := store.Attributes.GetSet(ctx, req.AttributeSetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("attribute_set_id", "attribute set %s does not exist", req.AttributeSetID)
		}
		return nil, err
	}
	if len(set.Attributes) == 0 {
		return nil, newValidationError("attribute_set_id", "attribute set %q has no attributes", set.Name)
	}
	if !setCoversCategory(set, category.ID) {
		return nil, newValidationError("attribute_set_id", "attribute set %q is not assigned to category %q", set.Name, category.Name)
	}

	batch := &productBatch{
		category:     category,
		set:          set,
		items:        make([]models.BulkProductItem, len(req.Products)),
		attributeIDs: make([][]uuid.UUID, len(req.Products)),
	}

	skus := make(map[string]int, len(req.Products))
	for i, item := range req.Products {
		item.Name = strings.TrimSpace(item.Name)
		item.SKU = strings.TrimSpace(item.SKU)

		if err := validateProductItem(i, &item); err != nil {
			return nil, err
		}
		if first, dup := skus[item.SKU]; dup {
			return nil, &ConflictError{
				Code:    CodeDuplicateSKU,
				Message: fmt.Sprintf("SKU %q appears more than once in the upload (products[%d] and products[%d])", item.SKU, first, i),
			}
		}
		skus[item.SKU] = i

		ids, err := resolveItemAttributes(i, item.Attributes, set)
		if err != nil {
			return nil, err
		}
		batch.items[i] = item
		batch.attributeIDs[i] = ids
	}

	allSKUs := make([]string, 0, len(skus))
	for _, item := range batch.items {
		allSKUs = append(allSKUs, item.SKU)
	}
	taken, err := store.Products.ExistingSKUs(ctx, allSKUs)
	if err != nil {
		return nil, fmt.Errorf("failed to check SKUs: %w", err)
	}
	if len(taken) > 0 {
		return nil, &ConflictError{
			Code:    CodeDuplicateSKU,
			Message: fmt.Sprintf("product with SKU %q already exists", taken[0]),
			Details: map[string]interface{}{"skus": taken},
		}
	}

	knownSKUs, err := resolveComplementary(ctx, store, batch.items, skus)
	if err != nil {
		return nil, err
	}
	batch.knownSKUs = knownSKUs

	return batch, nil
}

func setCoversCategory(set *models.AttributeSet, categoryID uuid.UUID) bool {
	for _, c := range set.Categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}

func validateProductItem(i int, item *models.BulkProductItem) error {
	field := func(name string) string { return fmt.Sprintf("products[%d].%s", i, name) }

	if item.Name == "" {
		return newValidationError(field("name"), "name is required")
	}
	if utf8.RuneCountInString(item.Name) > MaxProductNameLength {
		return newValidationError(field("name"), "name must not exceed %d characters", MaxProductNameLength)
	}
	if item.SKU == "" {
		return newValidationError(field("sku"), "sku is required")
	}
	if utf8.RuneCountInString(item.SKU) > MaxSKULength {
		return newValidationError(field("sku"), "sku must not exceed %d characters", MaxSKULength)
	}
	if item.Price.IsNegative() {
		return newValidationError(field("price"), "price must not be negative")
	}
	if item.CompareAtPrice != nil && item.CompareAtPrice.IsNegative() {
		return newValidationError(field("compare_at_price"), "compare_at_price must not be negative")
	}
	if item.StockQuantity < 0 {
		return newValidationError(field("stock_quantity"), "stock_quantity must not be negative")
	}
	if item.Status != "" && !item.Status.IsValid() {
		return newValidationError(field("status"), "unknown status %q", item.Status)
	}
	for _, tag := range ParseTags(item.Tags) {
		if len(tag) > MaxTagLength {
			return newValidationError(field("tags"), "tag %q exceeds %d characters", tag, MaxTagLength)
		}
	}
	return nil
}

// resolveItemAttributes maps each item attribute, given by id or by name, onto
// an attribute of the set and checks required attributes are present
func resolveItemAttributes(i int, inputs []models.BulkAttributeInput, set *models.AttributeSet) ([]uuid.UUID, error) {
	byID := make(map[uuid.UUID]*models.Attribute, len(set.Attributes))
	byName := make(map[string]*models.Attribute, len(set.Attributes)*2)
	for k := range set.Attributes {
		a := &set.Attributes[k]
		byID[a.ID] = a
		byName[strings.ToLower(a.Name)] = a
		byName[strings.ToLower(a.Code)] = a
	}

	ids := make([]uuid.UUID, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for j, in := range inputs {
		field := fmt.Sprintf("products[%d].attributes[%d]", i, j)

		var attr *models.Attribute
		if in.AttributeID != uuid.Nil {
			attr = byID[in.AttributeID]
		} else if in.Name != "" {
			attr = byName[strings.ToLower(strings.TrimSpace(in.Name))]
		} else {
			return nil, newValidationError(field, "attribute_id or name is required")
		}
		if attr == nil {
			ref := in.Name
			if in.AttributeID != uuid.Nil {
				ref = in.AttributeID.String()
			}
			return nil, newValidationError(field, "attribute %q is not part of attribute set %q", ref, set.Name)
		}
		if strings.TrimSpace(in.Value) == "" {
			return nil, newValidationError(field, "value for attribute %q is required", attr.Name)
		}
		if utf8.RuneCountInString(strings.TrimSpace(in.Value)) > MaxAttributeValueLength {
			return nil, newValidationError(field, "value for attribute %q exceeds %d characters", attr.Name, MaxAttributeValueLength)
		}
		if seen[attr.ID] && attr.InputType != models.AttributeInputMultiSelect {
			return nil, newValidationError(field, "attribute %q accepts a single value", attr.Name)
		}
		seen[attr.ID] = true
		ids[j] = attr.ID
	}

	for _, a := range set.Attributes {
		if a.IsRequired && !seen[a.ID] {
			return nil, newValidationError(fmt.Sprintf("products[%d].attributes", i), "required attribute %q is missing", a.Name)
		}
	}
	return ids, nil
}

// resolveComplementary checks every complementary SKU refers to a product in
// the batch or an existing product and returns the ids of the existing ones
func resolveComplementary(ctx context.Context, store *repository.Store, items []models.BulkProductItem, batchSKUs map[string]int) (map[string]uuid.UUID, error) {
	var external []string
	for i := range items {
		for k, raw := range items[i].ComplementarySKUs {
			sku := strings.TrimSpace(raw)
			items[i].ComplementarySKUs[k] = sku
			if sku == "" {
				continue
			}
			if sku == items[i].SKU {
				return nil, newValidationError(fmt.Sprintf("products[%d].complementary_skus", i), "a product cannot complement itself")
			}
			if _, inBatch := batchSKUs[sku]; !inBatch {
				external = append(external, sku)
			}
		}
	}

	known, err := store.Products.FindIDsBySKUs(ctx, external)
	if err != nil {
		return nil, fmt.Errorf("failed to look up complementary products: %w", err)
	}
	for i := range items {
		for _, sku := range items[i].ComplementarySKUs {
			if sku == "" {
				continue
			}
			if _, inBatch := batchSKUs[sku]; inBatch {
				continue
			}
			if _, ok := known[sku]; !ok {
				return nil, newValidationError(fmt.Sprintf("products[%d].complementary_skus", i), "complementary product %q does not exist", sku)
			}
		}
	}
	return known, nil
}

// insertProductBatch writes every product of the batch with its junction rows.
// It must run inside a transaction; any error leaves nothing behind.
func insertProductBatch(ctx context.Context, tx *repository.Store, batch *productBatch) ([]*models.Product, error) {
	products := make([]*models.Product, 0, len(batch.items))
	skuIDs := make(map[string]uuid.UUID, len(batch.items)+len(batch.knownSKUs))
	for sku, id := range batch.knownSKUs {
		skuIDs[sku] = id
	}

	for i := range batch.items {
		product, err := insertProduct(ctx, tx, batch, i)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
		skuIDs[product.SKU] = product.ID
	}

	// second pass so items may reference products later in the same batch
	for i, product := range products {
		skus := batch.items[i].ComplementarySKUs
		if len(skus) == 0 {
			continue
		}
		ids := make([]uuid.UUID, 0, len(skus))
		for _, sku := range skus {
			if id, ok := skuIDs[sku]; ok {
				ids = append(ids, id)
			}
		}
		if err := tx.Products.AttachComplementary(ctx, product.ID, ids); err != nil {
			return nil, fmt.Errorf("failed to link complementary products of %q: %w", product.SKU, err)
		}
	}
	return products, nil
}

func insertProduct(ctx context.Context, tx *repository.Store, batch *productBatch, i int) (*models.Product, error) {
	item := batch.items[i]

	product := &models.Product{
		Name:           item.Name,
		SKU:            item.SKU,
		Description:    strings.TrimSpace(item.Description),
		Price:          item.Price,
		CompareAtPrice: item.CompareAtPrice,
		StockQuantity:  item.StockQuantity,
		Status:         item.Status,
	}
	if len(item.Specifications) > 0 {
		raw, err := json.Marshal(item.Specifications)
		if err != nil {
			return nil, newValidationError(fmt.Sprintf("products[%d].specifications", i), "specifications are not valid JSON")
		}
		product.Specifications = datatypes.JSON(raw)
	}

	if err := tx.Products.Create(ctx, product); err != nil {
		if repository.IsDuplicateKeyError(err) {
			return nil, &ConflictError{Code: CodeDuplicateSKU, Message: fmt.Sprintf("product with SKU %q already exists", item.SKU)}
		}
		return nil, fmt.Errorf("failed to create product %q: %w", item.SKU, err)
	}

	if err := tx.Products.AttachCategory(ctx, product.ID, batch.category.ID); err != nil {
		return nil, fmt.Errorf("failed to link category of %q: %w", item.SKU, err)
	}
	if err := tx.Products.AttachAttributeSet(ctx, product.ID, batch.set.ID); err != nil {
		return nil, fmt.Errorf("failed to link attribute set of %q: %w", item.SKU, err)
	}

	valueIDs := make([]uuid.UUID, 0, len(item.Attributes))
	for j, in := range item.Attributes {
		value, _, err := tx.Attributes.FindOrCreateValue(ctx, batch.attributeIDs[i][j], in.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve attribute value %q of %q: %w", in.Value, item.SKU, err)
		}
		valueIDs = append(valueIDs, value.ID)
	}
	if err := tx.Products.AttachAttributeValues(ctx, product.ID, valueIDs); err != nil {
		return nil, fmt.Errorf("failed to link attribute values of %q: %w", item.SKU, err)
	}

	tagIDs, err := resolveTags(ctx, tx, item.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags of %q: %w", item.SKU, err)
	}
	if err := tx.Products.AttachTags(ctx, product.ID, tagIDs); err != nil {
		return nil, fmt.Errorf("failed to link tags of %q: %w", item.SKU, err)
	}

	return product, nil
}
