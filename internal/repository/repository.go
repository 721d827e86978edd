package repository

import (
	"context"
	"errors"
	"strings"

	"catalog-admin-service/internal/cache"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store groups the repositories that share one database handle
type Store struct {
	db    *gorm.DB
	cache *cache.CatalogCache

	Categories *CategoryRepository
	Attributes *AttributeRepository
	Tags       *TagRepository
	Products   *ProductRepository
	Users      *UserRepository
	Orders     *OrderRepository
	UploadJobs *UploadJobRepository
}

// NewStore creates repositories bound to db. catalogCache may be nil.
func NewStore(db *gorm.DB, catalogCache *cache.CatalogCache) *Store {
	return &Store{
		db:         db,
		cache:      catalogCache,
		Categories: NewCategoryRepository(db, catalogCache),
		Attributes: NewAttributeRepository(db, catalogCache),
		Tags:       NewTagRepository(db),
		Products:   NewProductRepository(db),
		Users:      NewUserRepository(db),
		Orders:     NewOrderRepository(db),
		UploadJobs: NewUploadJobRepository(db),
	}
}

// WithTransaction runs fn against a Store bound to a single transaction.
// Returning an error from fn rolls the transaction back.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx, s.cache))
	})
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translateError maps gorm errors onto repository sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case IsDuplicateKeyError(err):
		return ErrDuplicateKey
	}
	return err
}

// IsDuplicateKeyError reports whether err is a unique constraint violation
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicateKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
