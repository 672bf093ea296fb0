package redisx

import (
	"fmt"
	"time"
)

const (
	// Cart lines: cart:{subdomain}:{cart_id} -> JSON array of lines
	KeyCart = "cart:%s:%s"

	// Raw storefront catalog: storefront:{subdomain} -> JSON StorefrontData
	KeyStorefront = "storefront:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart    = 7 * 24 * time.Hour
	TTLCatalog = 5 * time.Minute
	TTLDedup   = 48 * time.Hour
)

func CartKey(subdomain, cartID string) string {
	return fmt.Sprintf(KeyCart, subdomain, cartID)
}
