package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/services"
)

// the embedded interfaces stay nil; tests only call the overridden methods

type MockCategoryManager struct {
	mock.Mock
	CategoryManager
}

func (m *MockCategoryManager) List(ctx context.Context, filters models.CategoryFilters, page models.Page) ([]models.Category, int64, error) {
	args := m.Called(ctx, filters, page)
	return args.Get(0).([]models.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryManager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockAttributeManager struct {
	mock.Mock
	AttributeManager
}

func (m *MockAttributeManager) AddValue(ctx context.Context, attributeID uuid.UUID, value string) (*models.AttributeValue, bool, error) {
	args := m.Called(ctx, attributeID, value)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.AttributeValue), args.Bool(1), args.Error(2)
}

type MockUserManager struct {
	mock.Mock
	UserManager
}

func (m *MockUserManager) AddAddress(ctx context.Context, userID uuid.UUID, req models.AddressRequest) (*models.UserShippingAddress, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserShippingAddress), args.Error(1)
}

func TestDeleteCategory_InUse(t *testing.T) {
	svc := new(MockCategoryManager)
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(&services.ConflictError{
		Code:    services.CodeCategoryInUse,
		Message: "category has 1 child categories and 0 products",
	})

	r := setupTestRouter()
	r.DELETE("/categories/:id", NewCategoryHandler(svc, testLogger()).DeleteCategory)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/categories/"+id.String(), nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.CodeCategoryInUse, decodeError(t, w).Code)
}

func TestGetCategories_LeafOnly(t *testing.T) {
	svc := new(MockCategoryManager)
	svc.On("List", mock.Anything, models.CategoryFilters{LeafOnly: true, Search: "shirt"}, models.Page{Page: 2, Limit: 10}).
		Return([]models.Category{}, int64(0), nil)

	r := setupTestRouter()
	r.GET("/categories", NewCategoryHandler(svc, testLogger()).GetCategories)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/categories?leafOnly=true&search=shirt&page=2&limit=10", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/categories?parentId=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddAttributeValue_CreatedOrExisting(t *testing.T) {
	attributeID := uuid.New()
	value := &models.AttributeValue{ID: uuid.New(), AttributeID: attributeID, Value: "Red"}

	tests := []struct {
		name       string
		created    bool
		wantStatus int
	}{
		{name: "new value", created: true, wantStatus: http.StatusCreated},
		{name: "existing value", created: false, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAttributeManager)
			svc.On("AddValue", mock.Anything, attributeID, "Red").Return(value, tt.created, nil)

			r := setupTestRouter()
			r.POST("/attributes/:id/values", NewAttributeHandler(svc, testLogger()).AddValue)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, jsonRequest(http.MethodPost, "/attributes/"+attributeID.String()+"/values", map[string]string{"value": "Red"}))
			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAddAttributeValue_UnknownAttribute(t *testing.T) {
	svc := new(MockAttributeManager)
	svc.On("AddValue", mock.Anything, mock.Anything, "Red").Return(nil, false, services.ErrAttributeNotFound)

	r := setupTestRouter()
	r.POST("/attributes/:id/values", NewAttributeHandler(svc, testLogger()).AddValue)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/attributes/"+uuid.NewString()+"/values", map[string]string{"value": "Red"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddAddress_ValidationDetails(t *testing.T) {
	svc := new(MockUserManager)
	userID := uuid.New()
	svc.On("AddAddress", mock.Anything, userID, mock.AnythingOfType("models.AddressRequest")).
		Return(nil, &services.ValidationError{Code: services.CodeValidation, Field: "postalCode", Message: "invalid postal code for US"})

	r := setupTestRouter()
	r.POST("/users/:id/addresses", NewUserHandler(svc, testLogger()).AddAddress)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/users/"+userID.String()+"/addresses", map[string]string{
		"addressLine1": "1 Main St",
		"city":         "Springfield",
		"postalCode":   "ABC",
		"country":      "US",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, services.CodeValidation, body.Code)
	assert.Equal(t, "postalCode", body.Field)
}
