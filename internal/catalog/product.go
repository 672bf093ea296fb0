package catalog

// Product is the normalized catalog entry the filter engine works on.
// Products are never mutated after mapping.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"` // set only when discounted
	Images        []string `json:"images"`
	Category      string   `json:"category"`
	Stock         int      `json:"stock"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	Tags          []string `json:"tags,omitempty"`
	SKU           string   `json:"sku,omitempty"`
	OnPromotion   bool     `json:"on_promotion"`
}

// OnSale reports whether the product carries a strike-through price above its effective price.
func (p Product) OnSale() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// MainImage returns the first image or "".
func (p Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Product) bestsellerScore() float64 {
	return float64(p.ReviewCount) * p.Rating
}

// Find returns the product with the given id.
func Find(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
