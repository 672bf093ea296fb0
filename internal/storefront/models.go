package storefront

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrNoSubdomain   = errors.New("no subdomain provided")
)

// Store is a business as the data service returns it.
type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	Subdomain string    `json:"subdomain"`
	Plan      *string   `json:"plan,omitempty"`
	Timezone  *string   `json:"timezone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RawProduct is a catalog record before mapping; every optional field may be missing.
type RawProduct struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	SalePrice       *float64  `json:"sale_price,omitempty"`
	Category        *string   `json:"category,omitempty"`
	Stock           *int      `json:"stock,omitempty"`
	MainImageURL    *string   `json:"main_image_url,omitempty"`
	LongDescription *string   `json:"long_description,omitempty"`
	OnPromotion     *bool     `json:"on_promotion,omitempty"`
	PromoPrice      *float64  `json:"promo_price,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type StorefrontData struct {
	Store    Store        `json:"store"`
	Products []RawProduct `json:"products"`
}

type BusinessResult struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	LogoURL   *string `json:"logo_url"`
	Subdomain string  `json:"subdomain"`
}

// Fetcher loads a storefront's raw catalog. A missing store is reported as
// ErrStoreNotFound; any other error is a transport failure.
type Fetcher interface {
	FetchStorefront(ctx context.Context, subdomain string) (StorefrontData, error)
}

type Searcher interface {
	SearchBusinesses(ctx context.Context, term string) ([]BusinessResult, error)
	ListPublic(ctx context.Context) ([]BusinessResult, error)
}
