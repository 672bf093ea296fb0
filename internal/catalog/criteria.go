package catalog

import (
	"math"
	"slices"
)

type SortMode string

const (
	SortDefault    SortMode = "default"
	SortPriceLow   SortMode = "price-low"
	SortPriceHigh  SortMode = "price-high"
	SortRating     SortMode = "rating"
	SortTrending   SortMode = "trending"
	SortBestseller SortMode = "bestseller"
)

var sortModes = map[SortMode]bool{
	SortDefault:    true,
	SortPriceLow:   true,
	SortPriceHigh:  true,
	SortRating:     true,
	SortTrending:   true,
	SortBestseller: true,
}

// ParseSortMode falls back to SortDefault for anything it does not know.
func ParseSortMode(s string) SortMode {
	if m := SortMode(s); sortModes[m] {
		return m
	}
	return SortDefault
}

// PriceRange is a closed interval; both ends are inclusive.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UnboundedRange admits every non-negative price.
var UnboundedRange = PriceRange{Min: 0, Max: math.MaxFloat64}

func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

func (r PriceRange) Valid() bool { return r.Min <= r.Max }

// Narrower reports whether r excludes part of full.
func (r PriceRange) Narrower(full PriceRange) bool {
	return r.Min > full.Min || r.Max < full.Max
}

type Criteria struct {
	SearchTerm         string     `json:"search_term"`
	SelectedCategories []string   `json:"selected_categories"`
	PriceRange         PriceRange `json:"price_range"`
	SortBy             SortMode   `json:"sort_by"`
	ShowOnSale         bool       `json:"show_on_sale"`
}

// DefaultCriteria is the neutral state: nothing filtered, nothing reordered.
func DefaultCriteria(full PriceRange) Criteria {
	return Criteria{
		SelectedCategories: []string{},
		PriceRange:         full,
		SortBy:             SortDefault,
	}
}

func (c Criteria) clone() Criteria {
	c.SelectedCategories = slices.Clone(c.SelectedCategories)
	if c.SelectedCategories == nil {
		c.SelectedCategories = []string{}
	}
	return c
}

// ActiveCount counts the filter conditions that differ from the neutral state.
func (c Criteria) ActiveCount(full PriceRange) int {
	n := 0
	if c.SearchTerm != "" {
		n++
	}
	if len(c.SelectedCategories) > 0 {
		n++
	}
	if c.PriceRange.Narrower(full) {
		n++
	}
	if c.SortBy != SortDefault {
		n++
	}
	if c.ShowOnSale {
		n++
	}
	return n
}

// toggleCategory adds cat when absent and removes it when present.
func toggleCategory(selected []string, cat string) []string {
	if i := slices.Index(selected, cat); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), cat)
}
