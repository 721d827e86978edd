package services

import (
	"context"
	"strings"
	"testing"

	"catalog-admin-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCategoryService_CreateRequiresExistingParent(t *testing.T) {
	svc := NewCategoryService(newTestStore(t), testLogger())
	missing := uuid.New()

	_, err := svc.Create(context.Background(), models.CreateCategoryRequest{Name: "Orphan", ParentID: &missing})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "parentId", validationErr.Field)

	_, err = svc.Create(context.Background(), models.CreateCategoryRequest{Name: "   "})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)
}

func TestCategoryService_UpdateRejectsCycles(t *testing.T) {
	store := newTestStore(t)
	svc := NewCategoryService(store, testLogger())
	ctx := context.Background()

	root, err := svc.Create(ctx, models.CreateCategoryRequest{Name: "Home"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, models.CreateCategoryRequest{Name: "Kitchen", ParentID: &root.ID})
	require.NoError(t, err)

	_, err = svc.Update(ctx, root.ID, models.UpdateCategoryRequest{ParentID: &child.ID})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "parentId", validationErr.Field)

	_, err = svc.Update(ctx, root.ID, models.UpdateCategoryRequest{ParentID: &root.ID})
	require.ErrorAs(t, err, &validationErr)

	name := "Home & Living"
	updated, err := svc.Update(ctx, root.ID, models.UpdateCategoryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	store := newTestStore(t)
	f := newCatalogFixture(t, store)
	ctx := context.Background()
	svc := NewCategoryService(store, testLogger())

	var conflict *ConflictError
	err := svc.Delete(ctx, f.root.ID)
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeCategoryInUse, conflict.Code)

	_, err = NewBulkUploadService(store, nil, testLogger(), 0).UploadProducts(ctx, f.request(tee("T-1", "Red")), models.UploadSource{})
	require.NoError(t, err)
	err = svc.Delete(ctx, f.leaf.ID)
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeCategoryInUse, conflict.Code)

	empty, err := svc.Create(ctx, models.CreateCategoryRequest{Name: "Empty", ParentID: &f.root.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, empty.ID))
	assert.ErrorIs(t, svc.Delete(ctx, empty.ID), ErrCategoryNotFound)
}

func TestCategoryService_ListAttributeSets(t *testing.T) {
	store := newTestStore(t)
	f := newCatalogFixture(t, store)

	sets, err := NewCategoryService(store, testLogger()).ListAttributeSets(context.Background(), f.leaf.ID)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, f.set.ID, sets[0].ID)
}

func TestAttributeService_CreateAndValues(t *testing.T) {
	store := newTestStore(t)
	svc := NewAttributeService(store, testLogger())
	ctx := context.Background()

	attr, err := svc.CreateAttribute(ctx, models.CreateAttributeRequest{Name: "Shoe Size", Values: []string{"42", " 42 ", "", "43"}})
	require.NoError(t, err)
	assert.Equal(t, "shoe_size", attr.Code)
	assert.Equal(t, models.AttributeInputText, attr.InputType)

	values, err := svc.ListValues(ctx, attr.ID)
	require.NoError(t, err)
	assert.Len(t, values, 2)

	value, created, err := svc.AddValue(ctx, attr.ID, "44")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.AddValue(ctx, attr.ID, "44")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, value.ID, again.ID)

	_, _, err = svc.AddValue(ctx, uuid.New(), "44")
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	_, _, err = svc.AddValue(ctx, attr.ID, strings.Repeat("9", MaxAttributeValueLength+1))
	var tooLong *ValidationError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, "value", tooLong.Field)

	_, err = svc.CreateAttribute(ctx, models.CreateAttributeRequest{Name: "shoe size"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeDuplicateAttributeCode, conflict.Code)

	_, err = svc.CreateAttribute(ctx, models.CreateAttributeRequest{Name: "Fit", InputType: "SLIDER"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "inputType", validationErr.Field)
}

func TestAttributeService_SetRequiresExistingMembers(t *testing.T) {
	svc := NewAttributeService(newTestStore(t), testLogger())

	_, err := svc.CreateSet(context.Background(), models.AttributeSetRequest{
		Name:         "Broken",
		AttributeIDs: []uuid.UUID{uuid.New()},
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "attributeIds", validationErr.Field)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: nil},
		{raw: " , ,", want: nil},
		{raw: "summer", want: []string{"summer"}},
		{raw: "Summer, cotton ,SUMMER,,  Sale", want: []string{"Summer", "cotton", "Sale"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTags(tt.raw), tt.raw)
	}
}

func TestTagService_CreateIsFindOrCreate(t *testing.T) {
	svc := NewTagService(newTestStore(t), testLogger())
	ctx := context.Background()

	first, err := svc.Create(ctx, "Organic")
	require.NoError(t, err)
	second, err := svc.Create(ctx, " organic ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	tags, total, err := svc.List(ctx, "", models.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, tags, 1)

	_, err = svc.Create(ctx, "")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestProductService_CreateUpdateDelete(t *testing.T) {
	store := newTestStore(t)
	f := newCatalogFixture(t, store)
	ctx := context.Background()

	publisher := new(MockEventPublisher)
	publisher.On("PublishProductCreated", mock.Anything, mock.Anything).Return(nil)
	publisher.On("PublishProductDeleted", mock.Anything, mock.Anything).Return(nil)
	svc := NewProductService(store, publisher, testLogger())

	item := tee("SOLO-1", "Red")
	item.Tags = "new"
	product, err := svc.Create(ctx, models.CreateProductRequest{
		BulkProductItem: item,
		CategoryID:      f.leaf.ID,
		AttributeSetID:  f.set.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "SOLO-1", product.SKU)
	require.Len(t, product.Tags, 1)

	_, err = svc.Create(ctx, models.CreateProductRequest{BulkProductItem: item, CategoryID: f.leaf.ID, AttributeSetID: f.set.ID})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeDuplicateSKU, conflict.Code)

	price := decimal.RequireFromString("24.00")
	tags := "sale, clearance"
	updated, err := svc.Update(ctx, product.ID, models.UpdateProductRequest{Price: &price, Tags: &tags})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Len(t, updated.Tags, 2)

	archived, err := svc.UpdateStatus(ctx, product.ID, models.ProductStatusArchived)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusArchived, archived.Status)

	_, err = svc.UpdateStatus(ctx, product.ID, "GONE")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, svc.Delete(ctx, product.ID))
	_, err = svc.Get(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	publisher.AssertExpectations(t)
}

func TestUserService_AddressDefaults(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, testLogger())
	ctx := context.Background()

	user, err := svc.Create(ctx, models.CreateUserRequest{FirstName: "Lin", Email: "lin@example.com"})
	require.NoError(t, err)
	assert.True(t, user.MustResetPassword)

	home := models.AddressRequest{AddressLine1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "us"}
	first, err := svc.AddAddress(ctx, user.ID, home)
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "US", first.Country)

	work := home
	work.AddressLine1 = "9 Office Park"
	work.IsDefault = true
	second, err := svc.AddAddress(ctx, user.ID, work)
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	addresses, err := svc.ListAddresses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	for _, a := range addresses {
		assert.Equal(t, a.ID == second.ID, a.IsDefault, a.AddressLine1)
	}

	bad := home
	bad.PostalCode = "ABC"
	_, err = svc.AddAddress(ctx, user.ID, bad)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "postalCode", validationErr.Field)

	require.NoError(t, svc.DeleteAddress(ctx, user.ID, first.ID))
	assert.ErrorIs(t, svc.DeleteAddress(ctx, user.ID, first.ID), ErrAddressNotFound)
}

func TestUserService_UpdatePasswordClearsReset(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, testLogger())
	ctx := context.Background()

	user, err := svc.Create(ctx, models.CreateUserRequest{Email: "kai@example.com"})
	require.NoError(t, err)

	password := "a-better-secret"
	updated, err := svc.Update(ctx, user.ID, models.UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	assert.False(t, updated.MustResetPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))

	short := "short"
	_, err = svc.Update(ctx, user.ID, models.UpdateUserRequest{Password: &short})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "password", validationErr.Field)

	_, err = svc.Create(ctx, models.CreateUserRequest{Email: "KAI@example.com"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeDuplicateEmail, conflict.Code)
}
