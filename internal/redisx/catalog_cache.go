package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/redis/go-redis/v9"
)

// CatalogCache is a cache-aside store for raw storefront catalogs.
type CatalogCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func (c *CatalogCache) Get(ctx context.Context, subdomain string) (storefront.StorefrontData, bool, error) {
	b, err := c.Redis.Get(ctx, fmt.Sprintf(KeyStorefront, subdomain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return storefront.StorefrontData{}, false, nil
	}
	if err != nil {
		return storefront.StorefrontData{}, false, err
	}
	var data storefront.StorefrontData
	if err := json.Unmarshal(b, &data); err != nil {
		return storefront.StorefrontData{}, false, fmt.Errorf("decode catalog: %w", err)
	}
	return data, true, nil
}

func (c *CatalogCache) Set(ctx context.Context, subdomain string, data storefront.StorefrontData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = TTLCatalog
	}
	return c.Redis.Set(ctx, fmt.Sprintf(KeyStorefront, subdomain), b, ttl).Err()
}

func (c *CatalogCache) Delete(ctx context.Context, subdomain string) error {
	return c.Redis.Del(ctx, fmt.Sprintf(KeyStorefront, subdomain)).Err()
}
