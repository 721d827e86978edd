package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AttributeService manages attributes, attribute values and attribute sets
type AttributeService struct {
	store  *repository.Store
	logger *logrus.Entry
}

func NewAttributeService(store *repository.Store, logger *logrus.Logger) *AttributeService {
	return &AttributeService{store: store, logger: logger.WithField("component", "attribute-service")}
}

// CreateAttribute creates an attribute and its initial values
func (s *AttributeService) CreateAttribute(ctx context.Context, req models.CreateAttributeRequest) (*models.Attribute, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name", "name is required")
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = attributeCode(name)
	}
	inputType := req.InputType
	if inputType == "" {
		inputType = models.AttributeInputText
	}
	if !inputType.IsValid() {
		return nil, newValidationError("inputType", "unknown input type %q", req.InputType)
	}

	for _, v := range req.Values {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > MaxAttributeValueLength {
			return nil, newValidationError("values", "value must not exceed %d characters", MaxAttributeValueLength)
		}
	}

	attribute := &models.Attribute{Name: name, Code: code, InputType: inputType, IsRequired: req.IsRequired}
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Attributes.CreateAttribute(ctx, attribute); err != nil {
			return err
		}
		for _, v := range req.Values {
			if strings.TrimSpace(v) == "" {
				continue
			}
			if _, _, err := tx.Attributes.FindOrCreateValue(ctx, attribute.ID, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, &ConflictError{Code: CodeDuplicateAttributeCode, Message: fmt.Sprintf("attribute with code %q already exists", code)}
		}
		return nil, fmt.Errorf("failed to create attribute: %w", err)
	}
	return s.GetAttribute(ctx, attribute.ID)
}

func (s *AttributeService) GetAttribute(ctx context.Context, id uuid.UUID) (*models.Attribute, error) {
	attribute, err := s.store.Attributes.GetAttribute(ctx, id)
	return attribute, mapNotFound(err, ErrAttributeNotFound)
}

func (s *AttributeService) ListAttributes(ctx context.Context, search string, page models.Page) ([]models.Attribute, int64, error) {
	return s.store.Attributes.ListAttributes(ctx, search, page)
}

func (s *AttributeService) UpdateAttribute(ctx context.Context, id uuid.UUID, req models.UpdateAttributeRequest) (*models.Attribute, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newValidationError("name", "name must not be empty")
		}
		updates["name"] = name
	}
	if req.InputType != nil {
		if !req.InputType.IsValid() {
			return nil, newValidationError("inputType", "unknown input type %q", *req.InputType)
		}
		updates["input_type"] = *req.InputType
	}
	if req.IsRequired != nil {
		updates["is_required"] = *req.IsRequired
	}
	if len(updates) > 0 {
		if err := s.store.Attributes.UpdateAttribute(ctx, id, updates); err != nil {
			return nil, mapNotFound(err, ErrAttributeNotFound)
		}
	}
	return s.GetAttribute(ctx, id)
}

func (s *AttributeService) DeleteAttribute(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.store.Attributes.DeleteAttribute(ctx, id), ErrAttributeNotFound)
}

// AddValue find-or-creates a value of an attribute. created reports whether a
// new row was inserted.
func (s *AttributeService) AddValue(ctx context.Context, attributeID uuid.UUID, value string) (*models.AttributeValue, bool, error) {
	if strings.TrimSpace(value) == "" {
		return nil, false, newValidationError("value", "value is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(value)) > MaxAttributeValueLength {
		return nil, false, newValidationError("value", "value must not exceed %d characters", MaxAttributeValueLength)
	}
	if _, err := s.GetAttribute(ctx, attributeID); err != nil {
		return nil, false, err
	}
	return s.store.Attributes.FindOrCreateValue(ctx, attributeID, value)
}

func (s *AttributeService) ListValues(ctx context.Context, attributeID uuid.UUID) ([]models.AttributeValue, error) {
	if _, err := s.GetAttribute(ctx, attributeID); err != nil {
		return nil, err
	}
	return s.store.Attributes.ListValues(ctx, attributeID)
}

func (s *AttributeService) DeleteValue(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.store.Attributes.DeleteValue(ctx, id), ErrAttributeValueNotFound)
}

// --- Attribute sets ---

func (s *AttributeService) CreateSet(ctx context.Context, req models.AttributeSetRequest) (*models.AttributeSet, error) {
	set, err := s.validateSetRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Attributes.CreateSet(ctx, set, req.AttributeIDs, req.CategoryIDs); err != nil {
		return nil, fmt.Errorf("failed to create attribute set: %w", err)
	}
	s.logger.WithField("attribute_set_id", set.ID).Info("Attribute set created")
	return s.GetSet(ctx, set.ID)
}

func (s *AttributeService) UpdateSet(ctx context.Context, id uuid.UUID, req models.AttributeSetRequest) (*models.AttributeSet, error) {
	set, err := s.validateSetRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	set.ID = id
	if err := s.store.Attributes.UpdateSet(ctx, set, req.AttributeIDs, req.CategoryIDs); err != nil {
		return nil, mapNotFound(err, ErrAttributeSetNotFound)
	}
	return s.GetSet(ctx, id)
}

func (s *AttributeService) GetSet(ctx context.Context, id uuid.UUID) (*models.AttributeSet, error) {
	set, err := s.store.Attributes.GetSet(ctx, id)
	return set, mapNotFound(err, ErrAttributeSetNotFound)
}

func (s *AttributeService) ListSets(ctx context.Context, page models.Page) ([]models.AttributeSet, int64, error) {
	return s.store.Attributes.ListSets(ctx, page)
}

func (s *AttributeService) DeleteSet(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.store.Attributes.DeleteSet(ctx, id), ErrAttributeSetNotFound)
}

// validateSetRequest checks that every referenced attribute and category exists
func (s *AttributeService) validateSetRequest(ctx context.Context, req models.AttributeSetRequest) (*models.AttributeSet, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name", "name is required")
	}

	attributeIDs := uniqueUUIDs(req.AttributeIDs)
	found, err := s.store.Attributes.FindAttributesByIDs(ctx, attributeIDs)
	if err != nil {
		return nil, err
	}
	if len(found) != len(attributeIDs) {
		return nil, newValidationError("attributeIds", "%d of %d attributes do not exist", len(attributeIDs)-len(found), len(attributeIDs))
	}

	for _, id := range req.CategoryIDs {
		if _, err := s.store.Categories.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, newValidationError("categoryIds", "category %s does not exist", id)
			}
			return nil, err
		}
	}

	return &models.AttributeSet{Name: name, Description: strings.TrimSpace(req.Description)}, nil
}

// attributeCode derives a machine code such as "shoe_size" from a name
func attributeCode(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}

func uniqueUUIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
