// Package cache provides a Redis read-through cache for catalog lookups.
// A nil *CatalogCache is valid and disables caching.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "catalog-admin"

// CatalogCache caches JSON encoded catalog entities in Redis
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

// NewCatalogCache returns nil when client is nil so callers can pass the
// result around without checking
func NewCatalogCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *CatalogCache {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &CatalogCache{
		client: client,
		ttl:    ttl,
		logger: logger.WithField("component", "catalog-cache"),
	}
}

func CategoryKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:category:%s", keyPrefix, id)
}

func AttributeSetKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:attribute-set:%s", keyPrefix, id)
}

// GetOrSetJSON decodes the cached value for key into dest. On a miss it calls
// load, stores the result and decodes it into dest.
func (c *CatalogCache) GetOrSetJSON(ctx context.Context, key string, dest interface{}, load func() (interface{}, error)) error {
	if c == nil {
		return loadInto(dest, load)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		c.logger.WithField("key", key).Warn("Discarding undecodable cache entry")
	} else if err != redis.Nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	}

	value, err := load()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return json.Unmarshal(data, dest)
}

// Delete removes keys, logging failures
func (c *CatalogCache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WithError(err).Warn("Cache invalidation failed")
	}
}

// DeletePattern removes every key matching pattern
func (c *CatalogCache) DeletePattern(ctx context.Context, pattern string) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WithError(err).WithField("pattern", pattern).Warn("Cache scan failed")
		return
	}
	c.Delete(ctx, keys...)
}

// InvalidateCatalog drops every cached category and attribute set
func (c *CatalogCache) InvalidateCatalog(ctx context.Context) {
	c.DeletePattern(ctx, keyPrefix+":*")
}

func loadInto(dest interface{}, load func() (interface{}, error)) error {
	value, err := load()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
