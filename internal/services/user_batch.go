package services

import (
	"context"
	"fmt"
	"strings"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/repository"
	"catalog-admin-service/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the bcrypt cost for stored passwords
var passwordHashCost = bcrypt.DefaultCost

// preparedUser is a validated user ready for insertion
type preparedUser struct {
	user      *models.User
	addresses []*models.UserShippingAddress
}

// prepareUsers validates user payloads, hashes passwords and checks email
// uniqueness against the payload and the database. field names the payload
// key used in error messages.
func prepareUsers(ctx context.Context, store *repository.Store, field string, reqs []models.CreateUserRequest, maxItems int) ([]preparedUser, error) {
	if len(reqs) == 0 {
		return nil, newValidationError(field, "at least one user is required")
	}
	if maxItems > 0 && len(reqs) > maxItems {
		return nil, newValidationError(field, "a bulk upload accepts at most %d users, got %d", maxItems, len(reqs))
	}

	prepared := make([]preparedUser, 0, len(reqs))
	emails := make(map[string]int, len(reqs))
	for i, req := range reqs {
		prefix := fmt.Sprintf("%s[%d]", field, i)

		pu, err := prepareUser(prefix, req)
		if err != nil {
			return nil, err
		}
		if first, dup := emails[pu.user.Email]; dup {
			return nil, &ConflictError{
				Code:    CodeDuplicateEmail,
				Message: fmt.Sprintf("email %q appears more than once in the upload (%s[%d] and %s)", pu.user.Email, field, first, prefix),
			}
		}
		emails[pu.user.Email] = i
		prepared = append(prepared, pu)
	}

	all := make([]string, 0, len(prepared))
	for _, pu := range prepared {
		all = append(all, pu.user.Email)
	}
	taken, err := store.Users.ExistingEmails(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("failed to check emails: %w", err)
	}
	if len(taken) > 0 {
		return nil, &ConflictError{
			Code:    CodeDuplicateEmail,
			Message: fmt.Sprintf("user with email %q already exists", taken[0]),
			Details: map[string]interface{}{"emails": taken},
		}
	}
	return prepared, nil
}

func prepareUser(prefix string, req models.CreateUserRequest) (preparedUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.ValidateEmail(email) {
		return preparedUser{}, newValidationError(prefix+".email", "invalid email address %q", req.Email)
	}

	role := req.Role
	if role == "" {
		role = models.UserRoleCustomer
	}
	if !role.IsValid() {
		return preparedUser{}, newValidationError(prefix+".role", "unknown role %q", req.Role)
	}

	phone := strings.TrimSpace(req.Phone)
	if !validation.ValidatePhone(phone) {
		return preparedUser{}, newValidationError(prefix+".phone", "invalid phone number")
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if len(firstName) > validation.MaxNameLength || len(lastName) > validation.MaxNameLength {
		return preparedUser{}, newValidationError(prefix, "names must not exceed %d characters", validation.MaxNameLength)
	}

	password := req.Password
	mustReset := false
	if password == "" {
		// placeholder credential; the user has to set a real one on first login
		password = uuid.NewString()
		mustReset = true
	} else if err := checkPasswordLength(password); err != nil {
		err.Field = prefix + ".password"
		return preparedUser{}, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return preparedUser{}, err
	}

	if len(req.ShippingAddresses) > validation.MaxAddressesPerUser {
		return preparedUser{}, newValidationError(prefix+".shippingAddresses", "at most %d addresses are allowed", validation.MaxAddressesPerUser)
	}
	addresses := make([]*models.UserShippingAddress, 0, len(req.ShippingAddresses))
	hasDefault := false
	for j, ar := range req.ShippingAddresses {
		address := validation.AddressFromRequest(uuid.Nil, ar)
		if errs := validation.ValidateAddress(address); errs.HasErrors() {
			return preparedUser{}, &ValidationError{
				Code:    CodeValidation,
				Field:   fmt.Sprintf("%s.shippingAddresses[%d].%s", prefix, j, errs[0].Field),
				Message: errs[0].Message,
				Details: errs,
			}
		}
		if address.IsDefault {
			if hasDefault {
				address.IsDefault = false
			}
			hasDefault = true
		}
		addresses = append(addresses, address)
	}
	if !hasDefault && len(addresses) > 0 {
		addresses[0].IsDefault = true
	}

	return preparedUser{
		user: &models.User{
			FirstName:         firstName,
			LastName:          lastName,
			Email:             email,
			Phone:             phone,
			PasswordHash:      hash,
			Role:              role,
			IsActive:          true,
			MustResetPassword: mustReset,
		},
		addresses: addresses,
	}, nil
}

// insertUsers writes users and their addresses; run it inside a transaction
func insertUsers(ctx context.Context, tx *repository.Store, prepared []preparedUser) ([]*models.User, error) {
	users := make([]*models.User, 0, len(prepared))
	for _, pu := range prepared {
		if err := tx.Users.Create(ctx, pu.user); err != nil {
			if repository.IsDuplicateKeyError(err) {
				return nil, &ConflictError{Code: CodeDuplicateEmail, Message: fmt.Sprintf("user with email %q already exists", pu.user.Email)}
			}
			return nil, fmt.Errorf("failed to create user %q: %w", pu.user.Email, err)
		}
		for _, address := range pu.addresses {
			address.UserID = pu.user.ID
			if err := tx.Users.CreateAddress(ctx, address); err != nil {
				return nil, fmt.Errorf("failed to create address for %q: %w", pu.user.Email, err)
			}
			pu.user.ShippingAddresses = append(pu.user.ShippingAddresses, *address)
		}
		users = append(users, pu.user)
	}
	return users, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPasswordLength(password string) *ValidationError {
	if len(password) < validation.MinPasswordLength || len(password) > validation.MaxPasswordLength {
		return newValidationError("password", "password must be between %d and %d characters",
			validation.MinPasswordLength, validation.MaxPasswordLength)
	}
	return nil
}
