package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of *pgxpool.Pool the repo uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repo is the storefront data service backed by Postgres.
// Only public stores and products are visible.
type Repo struct{ DB DB }

const searchLimit = 20

const (
	qStoreBySubdomain = `SELECT id, name, logo_url, subdomain, plan, timezone, created_at
                         FROM stores WHERE subdomain=$1 AND is_public`
	qStoreProducts = `SELECT id, name, sale_price, category, stock, main_image_url,
                             long_description, on_promotion, promo_price, created_at
                      FROM products WHERE store_id=$1 AND is_public ORDER BY created_at, id`
	qPublicStores = `SELECT id, name, logo_url, subdomain
                     FROM stores WHERE is_public ORDER BY name`
	qSearchStores = `SELECT id, name, logo_url, subdomain
                     FROM stores WHERE is_public AND strpos(lower(name), lower($1)) > 0
                     ORDER BY name LIMIT $2`
)

func (r *Repo) FetchStorefront(ctx context.Context, subdomain string) (storefront.StorefrontData, error) {
	var s storefront.Store
	err := r.DB.QueryRow(ctx, qStoreBySubdomain, subdomain).
		Scan(&s.ID, &s.Name, &s.LogoURL, &s.Subdomain, &s.Plan, &s.Timezone, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storefront.StorefrontData{}, storefront.ErrStoreNotFound
	}
	if err != nil {
		return storefront.StorefrontData{}, fmt.Errorf("query store: %w", err)
	}

	rows, err := r.DB.Query(ctx, qStoreProducts, s.ID)
	if err != nil {
		return storefront.StorefrontData{}, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []storefront.RawProduct{}
	for rows.Next() {
		var p storefront.RawProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.SalePrice, &p.Category, &p.Stock, &p.MainImageURL,
			&p.LongDescription, &p.OnPromotion, &p.PromoPrice, &p.CreatedAt); err != nil {
			return storefront.StorefrontData{}, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return storefront.StorefrontData{}, err
	}
	return storefront.StorefrontData{Store: s, Products: products}, nil
}

func (r *Repo) SearchBusinesses(ctx context.Context, term string) ([]storefront.BusinessResult, error) {
	return r.businesses(ctx, qSearchStores, term, searchLimit)
}

func (r *Repo) ListPublic(ctx context.Context) ([]storefront.BusinessResult, error) {
	return r.businesses(ctx, qPublicStores)
}

func (r *Repo) businesses(ctx context.Context, q string, args ...any) ([]storefront.BusinessResult, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query stores: %w", err)
	}
	defer rows.Close()

	out := []storefront.BusinessResult{}
	for rows.Next() {
		var b storefront.BusinessResult
		if err := rows.Scan(&b.ID, &b.Name, &b.LogoURL, &b.Subdomain); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Ping reports whether the data service is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `SELECT 1`)
	return err
}
