package storefront

import (
	"fmt"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/catalog"
)

const (
	DefaultCategory = "Varios"
	DefaultStock    = 10
	defaultTag      = "producto"
	fallbackImage   = "https://images.pexels.com/photos/1300972/pexels-photo-1300972.jpeg?auto=compress&cs=tinysrgb&w=400"
)

var categoryImages = map[string]string{
	"Frutas y Verduras":   "https://images.pexels.com/photos/1300972/pexels-photo-1300972.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Panadería":           "https://images.pexels.com/photos/209206/pexels-photo-209206.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Lácteos":             "https://images.pexels.com/photos/773253/pexels-photo-773253.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Carnes":              "https://images.pexels.com/photos/361184/asparagus-steak-veal-steak-veal-361184.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Snacks":              "https://images.pexels.com/photos/1295572/pexels-photo-1295572.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Bebidas":             "https://images.pexels.com/photos/1571460/pexels-photo-1571460.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Botellas":            "https://images.pexels.com/photos/1571460/pexels-photo-1571460.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Cocteles":            "https://images.pexels.com/photos/1571460/pexels-photo-1571460.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Comidas":             "https://images.pexels.com/photos/361184/asparagus-steak-veal-steak-veal-361184.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Entradas":            "https://images.pexels.com/photos/1295572/pexels-photo-1295572.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Tacos y Quesadillas": "https://images.pexels.com/photos/361184/asparagus-steak-veal-steak-veal-361184.jpeg?auto=compress&cs=tinysrgb&w=400",
	"Tostadas":            "https://images.pexels.com/photos/209206/pexels-photo-209206.jpeg?auto=compress&cs=tinysrgb&w=400",
}

// CategoryImage is the stock picture used when a product has none.
func CategoryImage(category string) string {
	if u, ok := categoryImages[category]; ok {
		return u
	}
	return fallbackImage
}

// Mapper turns raw records into catalog products. Seeder fills the fields
// the data service does not provide yet; nil leaves them zero.
type Mapper struct {
	Seeder Seeder
}

func (m Mapper) MapProduct(raw RawProduct) catalog.Product {
	category := DefaultCategory
	if raw.Category != nil && *raw.Category != "" {
		category = *raw.Category
	}

	sale := deref(raw.SalePrice)
	price := sale
	var original *float64
	if deref(raw.OnPromotion) && raw.PromoPrice != nil && *raw.PromoPrice > 0 && *raw.PromoPrice < sale {
		price = *raw.PromoPrice
		original = &sale
	}

	description := fmt.Sprintf("Delicioso %s de la mejor calidad.", raw.Name)
	if raw.LongDescription != nil && *raw.LongDescription != "" {
		description = *raw.LongDescription
	}

	images := []string{CategoryImage(category)}
	if raw.MainImageURL != nil && *raw.MainImageURL != "" {
		images = []string{*raw.MainImageURL, CategoryImage(category)}
	}

	stock := DefaultStock
	if raw.Stock != nil {
		stock = max(*raw.Stock, 0)
	}

	tags := []string{defaultTag}
	if raw.Category != nil && *raw.Category != "" {
		tags = []string{strings.ToLower(*raw.Category)}
	}

	p := catalog.Product{
		ID:            raw.ID,
		Name:          raw.Name,
		Description:   description,
		Price:         max(price, 0),
		OriginalPrice: original,
		Images:        images,
		Category:      category,
		Stock:         stock,
		Tags:          tags,
		SKU:           raw.ID,
		OnPromotion:   original != nil,
	}
	if m.Seeder != nil {
		p.Rating, p.ReviewCount = m.Seeder.Seed(raw.ID)
	}
	return p
}

func (m Mapper) MapProducts(raws []RawProduct) []catalog.Product {
	out := make([]catalog.Product, 0, len(raws))
	for _, r := range raws {
		out = append(out, m.MapProduct(r))
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
