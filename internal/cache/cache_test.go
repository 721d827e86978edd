package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name string `json:"name"`
}

func TestNewCatalogCache_NilClient(t *testing.T) {
	assert.Nil(t, NewCatalogCache(nil, 0, nil))
}

func TestGetOrSetJSON_NilCacheCallsLoader(t *testing.T) {
	var c *CatalogCache
	calls := 0

	var got cachedThing
	err := c.GetOrSetJSON(context.Background(), "k", &got, func() (interface{}, error) {
		calls++
		return &cachedThing{Name: "shoes"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "shoes", got.Name)
}

func TestGetOrSetJSON_NilCachePropagatesLoaderError(t *testing.T) {
	var c *CatalogCache
	loadErr := errors.New("boom")

	var got cachedThing
	err := c.GetOrSetJSON(context.Background(), "k", &got, func() (interface{}, error) {
		return nil, loadErr
	})

	assert.ErrorIs(t, err, loadErr)
}

func TestNilCacheInvalidationIsNoop(t *testing.T) {
	var c *CatalogCache
	assert.NotPanics(t, func() {
		c.Delete(context.Background(), "a", "b")
		c.InvalidateCatalog(context.Background())
	})
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7f1c1a52-5f59-4c1e-9a43-3c1f3a3c2b10")
	assert.Equal(t, "catalog-admin:category:7f1c1a52-5f59-4c1e-9a43-3c1f3a3c2b10", CategoryKey(id))
	assert.Equal(t, "catalog-admin:attribute-set:7f1c1a52-5f59-4c1e-9a43-3c1f3a3c2b10", AttributeSetKey(id))
}
