package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ProductService manages single products. Creation goes through the same
// checks and insert routine as a bulk upload of one item.
type ProductService struct {
	store     *repository.Store
	publisher EventPublisher
	logger    *logrus.Entry
}

// NewProductService creates a ProductService. publisher may be nil.
func NewProductService(store *repository.Store, publisher EventPublisher, logger *logrus.Logger) *ProductService {
	return &ProductService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithField("component", "product-service"),
	}
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	item := req.BulkProductItem
	item.CategoryID = nil
	item.AttributeSetID = nil

	batch, err := prepareProductBatch(ctx, s.store, &models.BulkProductUploadRequest{
		Products:       []models.BulkProductItem{item},
		CategoryID:     req.CategoryID,
		AttributeSetID: req.AttributeSetID,
	}, 1)
	if err != nil {
		return nil, err
	}

	var created *models.Product
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		products, err := insertProductBatch(ctx, tx, batch)
		if err != nil {
			return err
		}
		created = products[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"product_id": created.ID, "sku": created.SKU}).Info("Product created")
	if s.publisher != nil {
		if err := s.publisher.PublishProductCreated(ctx, created); err != nil {
			s.logger.WithError(err).Warn("Failed to publish product created event")
		}
	}
	return s.Get(ctx, created.ID)
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.store.Products.GetByID(ctx, id)
	return product, mapNotFound(err, ErrProductNotFound)
}

func (s *ProductService) List(ctx context.Context, filters models.ProductFilters, page models.Page) ([]models.Product, int64, error) {
	if filters.Status != "" && !filters.Status.IsValid() {
		return nil, 0, newValidationError("status", "unknown status %q", filters.Status)
	}
	return s.store.Products.List(ctx, filters, page)
}

// Update applies scalar changes and, when Tags is set, replaces the tag links
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newValidationError("name", "name must not be empty")
		}
		if utf8.RuneCountInString(name) > MaxProductNameLength {
			return nil, newValidationError("name", "name must not exceed %d characters", MaxProductNameLength)
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, newValidationError("price", "price must not be negative")
		}
		updates["price"] = *req.Price
	}
	if req.CompareAtPrice != nil {
		if req.CompareAtPrice.IsNegative() {
			return nil, newValidationError("compareAtPrice", "compareAtPrice must not be negative")
		}
		updates["compare_at_price"] = *req.CompareAtPrice
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, newValidationError("stockQuantity", "stockQuantity must not be negative")
		}
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.Specifications != nil {
		raw, err := json.Marshal(req.Specifications)
		if err != nil {
			return nil, newValidationError("specifications", "specifications are not valid JSON")
		}
		updates["specifications"] = datatypes.JSON(raw)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Products.Update(ctx, id, updates); err != nil {
			return err
		}
		if req.Tags == nil {
			return nil
		}
		tagIDs, err := resolveTags(ctx, tx, *req.Tags)
		if err != nil {
			return err
		}
		return tx.Products.ReplaceTags(ctx, id, tagIDs)
	})
	if err != nil {
		return nil, mapNotFound(err, ErrProductNotFound)
	}
	return s.Get(ctx, id)
}

func (s *ProductService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProductStatus) (*models.Product, error) {
	if !status.IsValid() {
		return nil, newValidationError("status", "unknown status %q", status)
	}
	if err := s.store.Products.Update(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return nil, mapNotFound(err, ErrProductNotFound)
	}
	return s.Get(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Products.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrProductNotFound)
	}
	s.logger.WithField("product_id", id).Info("Product deleted")
	if s.publisher != nil {
		if err := s.publisher.PublishProductDeleted(ctx, id); err != nil {
			s.logger.WithError(err).Warn("Failed to publish product deleted event")
		}
	}
	return nil
}

// lookupProducts returns products keyed by id, failing on the first missing one
func lookupProducts(ctx context.Context, store *repository.Store, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	products, err := store.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
	}
	return byID, nil
}
