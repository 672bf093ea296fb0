package catalog

import "math"

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories lists distinct categories in first-seen order with product counts.
func Categories(products []Product) []CategoryCount {
	idx := map[string]int{}
	out := []CategoryCount{}
	for _, p := range products {
		i, ok := idx[p.Category]
		if !ok {
			idx[p.Category] = len(out)
			out = append(out, CategoryCount{Name: p.Category, Count: 1})
			continue
		}
		out[i].Count++
	}
	return out
}

// FullRange spans zero to the highest price in products, rounded up to a
// whole unit. An empty catalog yields UnboundedRange.
func FullRange(products []Product) PriceRange {
	if len(products) == 0 {
		return UnboundedRange
	}
	hi := 0.0
	for _, p := range products {
		hi = math.Max(hi, p.Price)
	}
	return PriceRange{Min: 0, Max: math.Ceil(hi)}
}
