package services

import (
	"context"
	"strings"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MaxTagLength bounds a single tag name
const MaxTagLength = 100

// TagService manages product tags
type TagService struct {
	store  *repository.Store
	logger *logrus.Entry
}

func NewTagService(store *repository.Store, logger *logrus.Logger) *TagService {
	return &TagService{store: store, logger: logger.WithField("component", "tag-service")}
}

// Create returns the tag named name, creating it when absent
func (s *TagService) Create(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", "tag name is required")
	}
	if len(name) > MaxTagLength {
		return nil, newValidationError("name", "tag name must not exceed %d characters", MaxTagLength)
	}
	return s.store.Tags.FindOrCreate(ctx, name)
}

func (s *TagService) List(ctx context.Context, search string, page models.Page) ([]models.Tag, int64, error) {
	return s.store.Tags.List(ctx, search, page)
}

func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.store.Tags.Delete(ctx, id), ErrTagNotFound)
}

// ParseTags splits a comma separated tag string, dropping blanks and
// case-insensitive repeats while keeping first-seen order
func ParseTags(raw string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// resolveTags find-or-creates every tag in raw and returns their ids
func resolveTags(ctx context.Context, tx *repository.Store, raw string) ([]uuid.UUID, error) {
	names := ParseTags(raw)
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		tag, err := tx.Tags.FindOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
