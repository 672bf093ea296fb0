package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"golang.org/x/sync/singleflight"
)

const fetchTimeout = 10 * time.Second

// Catalog is a storefront with its products already mapped.
type Catalog struct {
	Store     Store              `json:"store"`
	Products  []catalog.Product  `json:"products"`
	FullRange catalog.PriceRange `json:"full_range"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// CatalogCache holds raw storefront data by subdomain.
type CatalogCache interface {
	Get(ctx context.Context, subdomain string) (StorefrontData, bool, error)
	Set(ctx context.Context, subdomain string, data StorefrontData) error
	Delete(ctx context.Context, subdomain string) error
}

// Loader fetches and maps catalogs. Concurrent loads of one subdomain share
// a single fetch; a configured cache is consulted first.
type Loader struct {
	Source Fetcher
	Cache  CatalogCache // optional
	Mapper Mapper

	group singleflight.Group
}

func (l *Loader) Load(ctx context.Context, subdomain string) (Catalog, error) {
	if subdomain == "" {
		return Catalog{}, ErrNoSubdomain
	}
	// the shared fetch outlives any one caller; each caller still stops
	// waiting when its own context ends
	ch := l.group.DoChan(subdomain, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return l.fetch(fctx, subdomain)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Catalog{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return Catalog{}, res.Err
	}
	data := res.Val.(StorefrontData)
	products := l.Mapper.MapProducts(data.Products)
	return Catalog{
		Store:     data.Store,
		Products:  products,
		FullRange: catalog.FullRange(products),
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (l *Loader) fetch(ctx context.Context, subdomain string) (StorefrontData, error) {
	if l.Cache != nil {
		data, ok, err := l.Cache.Get(ctx, subdomain)
		if err != nil {
			log.Printf("catalog cache get %s: %v", subdomain, err)
		} else if ok {
			return data, nil
		}
	}

	data, err := l.Source.FetchStorefront(ctx, subdomain)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return StorefrontData{}, err
		}
		return StorefrontData{}, fmt.Errorf("fetch storefront %s: %w", subdomain, err)
	}

	if l.Cache != nil {
		if err := l.Cache.Set(ctx, subdomain, data); err != nil {
			log.Printf("catalog cache set %s: %v", subdomain, err)
		}
	}
	return data, nil
}

// Invalidate drops the cached catalog of subdomain.
func (l *Loader) Invalidate(ctx context.Context, subdomain string) error {
	l.group.Forget(subdomain)
	if l.Cache == nil {
		return nil
	}
	return l.Cache.Delete(ctx, subdomain)
}
