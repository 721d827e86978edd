package services

import (
	"context"
	"fmt"
	"strings"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"catalog-admin-service/internal/validation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserService manages users and their shipping addresses
type UserService struct {
	store  *repository.Store
	logger *logrus.Entry
}

func NewUserService(store *repository.Store, logger *logrus.Logger) *UserService {
	return &UserService{store: store, logger: logger.WithField("component", "user-service")}
}

// Create inserts one user with addresses using the bulk upload rules
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	prepared, err := prepareUsers(ctx, s.store, "user", []models.CreateUserRequest{req}, 1)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		users, err := insertUsers(ctx, tx, prepared)
		if err != nil {
			return err
		}
		created = users[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", created.ID).Info("User created")
	return s.Get(ctx, created.ID)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	return user, mapNotFound(err, ErrUserNotFound)
}

func (s *UserService) List(ctx context.Context, filters models.UserFilters, page models.Page) ([]models.User, int64, error) {
	if filters.Role != "" && !filters.Role.IsValid() {
		return nil, 0, newValidationError("role", "unknown role %q", filters.Role)
	}
	return s.store.Users.List(ctx, filters, page)
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if !validation.ValidatePhone(phone) {
			return nil, newValidationError("phone", "invalid phone number")
		}
		updates["phone"] = phone
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, newValidationError("role", "unknown role %q", *req.Role)
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != nil {
		if err := checkPasswordLength(*req.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
		updates["must_reset_password"] = false
	}

	if err := s.store.Users.Update(ctx, id, updates); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Users.Delete(ctx, id); err != nil {
		return mapNotFound(err, ErrUserNotFound)
	}
	s.logger.WithField("user_id", id).Info("User deleted")
	return nil
}

// --- Addresses ---

func (s *UserService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserShippingAddress, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Users.ListAddresses(ctx, userID)
}

// AddAddress saves a new address. The first address of a user, or one marked
// default, becomes the only default.
func (s *UserService) AddAddress(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.UserShippingAddress, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.ShippingAddresses) >= validation.MaxAddressesPerUser {
		return nil, newValidationError("shippingAddresses", "at most %d addresses are allowed", validation.MaxAddressesPerUser)
	}

	address := validation.AddressFromRequest(userID, req)
	if err := addressError(validation.ValidateAddress(address)); err != nil {
		return nil, err
	}
	if len(user.ShippingAddresses) == 0 {
		address.IsDefault = true
	}

	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.CreateAddress(ctx, address); err != nil {
			return err
		}
		if address.IsDefault {
			return tx.Users.ClearDefaultAddress(ctx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	return address, nil
}

func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req models.AddressRequest) (*models.UserShippingAddress, error) {
	existing, err := s.store.Users.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, mapNotFound(err, ErrAddressNotFound)
	}

	address := validation.AddressFromRequest(userID, req)
	if err := addressError(validation.ValidateAddress(address)); err != nil {
		return nil, err
	}
	address.ID = existing.ID
	address.CreatedAt = existing.CreatedAt
	// the default can move to another address but not be dropped here
	if existing.IsDefault {
		address.IsDefault = true
	}

	err = s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.SaveAddress(ctx, address); err != nil {
			return err
		}
		if address.IsDefault {
			return tx.Users.ClearDefaultAddress(ctx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return address, nil
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.store.Users.DeleteAddress(ctx, userID, addressID); err != nil {
		return mapNotFound(err, ErrAddressNotFound)
	}
	return nil
}

func addressError(errs validation.FieldErrors) error {
	if !errs.HasErrors() {
		return nil
	}
	return &ValidationError{Code: CodeValidation, Field: errs[0].Field, Message: errs[0].Message, Details: errs}
}
