package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-admin-service/internal/models"
	"catalog-admin-service/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	return NewStore(testutil.NewTestDB(t), nil)
}

func createCategory(t *testing.T, s *Store, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, ParentID: parentID, IsActive: true}
	require.NoError(t, s.Categories.Create(context.Background(), c))
	return c
}

func TestCategoryRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := createCategory(t, s, "Men's Shoes", nil)
	child := createCategory(t, s, "Running", &root.ID)

	assert.Equal(t, "mens-shoes", root.Slug)

	got, err := s.Categories.GetByID(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, got.Children, 1)
	assert.Equal(t, child.ID, got.Children[0].ID)

	_, err = s.Categories.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryRepository_ListLeafOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := createCategory(t, s, "Apparel", nil)
	mid := createCategory(t, s, "Tops", &root.ID)
	leaf := createCategory(t, s, "T-Shirts", &mid.ID)

	categories, total, err := s.Categories.List(ctx, models.CategoryFilters{LeafOnly: true}, models.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, categories, 1)
	assert.Equal(t, leaf.ID, categories[0].ID)
}

func TestCategoryRepository_IsDescendant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := createCategory(t, s, "Home", nil)
	mid := createCategory(t, s, "Kitchen", &root.ID)
	leaf := createCategory(t, s, "Knives", &mid.ID)

	ok, err := s.Categories.IsDescendant(ctx, root.ID, leaf.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Categories.IsDescendant(ctx, leaf.ID, root.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAttributeRepository_FindOrCreateValueReusesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	color := &models.Attribute{Name: "Color", Code: "color", InputType: models.AttributeInputSelect}
	require.NoError(t, s.Attributes.CreateAttribute(ctx, color))

	first, created, err := s.Attributes.FindOrCreateValue(ctx, color.ID, "Red")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.Attributes.FindOrCreateValue(ctx, color.ID, "  red ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	values, err := s.Attributes.ListValues(ctx, color.ID)
	require.NoError(t, err)
	assert.Len(t, values, 1)
}

func TestAttributeRepository_ValueMatchIsExact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	size := &models.Attribute{Name: "Size", Code: "size", InputType: models.AttributeInputSelect}
	require.NoError(t, s.Attributes.CreateAttribute(ctx, size))

	xl, _, err := s.Attributes.FindOrCreateValue(ctx, size.ID, "XL")
	require.NoError(t, err)
	xxl, created, err := s.Attributes.FindOrCreateValue(ctx, size.ID, "XXL")
	require.NoError(t, err)

	assert.True(t, created)
	assert.NotEqual(t, xl.ID, xxl.ID)
}

func TestAttributeRepository_SetMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := createCategory(t, s, "Footwear", nil)
	leaf := createCategory(t, s, "Sneakers", &root.ID)
	color := &models.Attribute{Name: "Color", Code: "color", InputType: models.AttributeInputSelect}
	require.NoError(t, s.Attributes.CreateAttribute(ctx, color))

	set := &models.AttributeSet{Name: "Shoes"}
	require.NoError(t, s.Attributes.CreateSet(ctx, set, []uuid.UUID{color.ID, color.ID}, []uuid.UUID{leaf.ID}))

	got, err := s.Attributes.GetSet(ctx, set.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attributes, 1)
	assert.True(t, got.HasAttribute(color.ID))

	related, err := s.Attributes.IsSetRelatedToCategory(ctx, set.ID, leaf.ID)
	require.NoError(t, err)
	assert.True(t, related)

	related, err = s.Attributes.IsSetRelatedToCategory(ctx, set.ID, root.ID)
	require.NoError(t, err)
	assert.False(t, related)

	sets, err := s.Categories.ListAttributeSets(ctx, leaf.ID)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, set.ID, sets[0].ID)
}

func TestTagRepository_FindOrCreateIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Tags.FindOrCreate(ctx, "Summer Sale")
	require.NoError(t, err)
	b, err := s.Tags.FindOrCreate(ctx, "summer sale")
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "summer-sale", a.Slug)
}

func TestProductRepository_ExistingSKUsAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := createCategory(t, s, "Books", nil)
	leaf := createCategory(t, s, "Fiction", &root.ID)

	p := &models.Product{Name: "Dune", SKU: "BK-001", Price: decimal.RequireFromString("12.50")}
	require.NoError(t, s.Products.Create(ctx, p))
	require.NoError(t, s.Products.AttachCategory(ctx, p.ID, leaf.ID))

	taken, err := s.Products.ExistingSKUs(ctx, []string{"BK-001", "BK-002"})
	require.NoError(t, err)
	assert.Equal(t, []string{"BK-001"}, taken)

	got, err := s.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusDraft, got.Status)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.50")))
	require.Len(t, got.Categories, 1)

	require.NoError(t, s.Products.Delete(ctx, p.ID))
	_, err = s.Products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := s.Categories.CountProducts(ctx, leaf.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// soft deleted products still hold their SKU
	taken, err = s.Products.ExistingSKUs(ctx, []string{"BK-001"})
	require.NoError(t, err)
	assert.Len(t, taken, 1)
}

func TestProductRepository_DuplicateSKU(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Products.Create(ctx, &models.Product{Name: "A", SKU: "DUP", Price: decimal.NewFromInt(1)}))
	err := s.Products.Create(ctx, &models.Product{Name: "B", SKU: "DUP", Price: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestStore_WithTransactionRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(tx *Store) error {
		if err := tx.Products.Create(ctx, &models.Product{Name: "Lamp", SKU: "LMP-1", Price: decimal.NewFromInt(30)}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	taken, err := s.Products.ExistingSKUs(ctx, []string{"LMP-1"})
	require.NoError(t, err)
	assert.Empty(t, taken)
}

func TestUserRepository_AddressesAndEmails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Email: "Jane@Example.com", FirstName: "Jane", IsActive: true}
	require.NoError(t, s.Users.Create(ctx, u))
	assert.Equal(t, models.UserRoleCustomer, u.Role)

	first := &models.UserShippingAddress{UserID: u.ID, AddressLine1: "1 Main St", City: "Austin", PostalCode: "78701", Country: "US", IsDefault: true}
	second := &models.UserShippingAddress{UserID: u.ID, AddressLine1: "2 Side St", City: "Austin", PostalCode: "78702", Country: "US", IsDefault: true}
	require.NoError(t, s.Users.CreateAddress(ctx, first))
	require.NoError(t, s.Users.CreateAddress(ctx, second))
	require.NoError(t, s.Users.ClearDefaultAddress(ctx, u.ID, second.ID))

	got, err := s.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.ShippingAddresses, 2)
	assert.Equal(t, second.ID, got.ShippingAddresses[0].ID)
	assert.False(t, got.ShippingAddresses[1].IsDefault)

	taken, err := s.Users.ExistingEmails(ctx, []string{"JANE@example.com", "other@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, taken)
}

func TestOrderRepository_UpdateStatusGuardsCurrentStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Email: "buyer@example.com"}
	require.NoError(t, s.Users.Create(ctx, u))
	order := &models.Order{
		OrderNumber: "ORD-20260101-ABC123",
		UserID:      u.ID,
		Subtotal:    decimal.NewFromInt(10),
		Total:       decimal.NewFromInt(10),
		Items: []models.OrderItem{
			{ProductID: uuid.New(), ProductName: "Mug", SKU: "MUG", Quantity: 1, UnitPrice: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(10)},
		},
	}
	require.NoError(t, s.Orders.Create(ctx, order))

	require.NoError(t, s.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusPlaced, models.OrderStatusConfirmed, ""))
	err := s.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusPlaced, models.OrderStatusCancelled, "")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.Len(t, got.Items, 1)
}

func TestUploadJobRepository_DeleteOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := &models.BulkUploadJob{Type: models.BulkUploadTypeProducts, Status: models.BulkUploadStatusCompleted, Source: models.ImportFormatJSON, CreatedAt: time.Now().AddDate(0, 0, -40)}
	recent := &models.BulkUploadJob{Type: models.BulkUploadTypeUsers, Status: models.BulkUploadStatusFailed, Source: models.ImportFormatCSV}
	require.NoError(t, s.UploadJobs.Create(ctx, old))
	require.NoError(t, s.UploadJobs.Create(ctx, recent))

	removed, err := s.UploadJobs.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	jobs, total, err := s.UploadJobs.List(ctx, "", models.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, recent.ID, jobs[0].ID)
}
