package cart

import "slices"

// TaxRate is applied to the subtotal of every cart.
const TaxRate = 0.08

// Item is what a product card hands to the cart: a line without a quantity.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	MaxStock int     `json:"maxStock"`
}

// Line is one cart entry keyed by product id. 1 <= Quantity <= MaxStock.
type Line struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	MaxStock int     `json:"maxStock"`
}

type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// The functions below never modify their input slice.

// AddItem bumps an existing line by one up to its stock ceiling or appends a
// new line with quantity 1. Items with nothing in stock are ignored, since a
// line with quantity 1 and maxStock 0 would already exceed its ceiling.
func AddItem(lines []Line, it Item) []Line {
	if i := indexOf(lines, it.ID); i >= 0 {
		out := slices.Clone(lines)
		out[i].Quantity = min(out[i].Quantity+1, out[i].MaxStock)
		return out
	}
	if it.MaxStock < 1 {
		return lines
	}
	return append(slices.Clone(lines), Line{
		ID:       it.ID,
		Name:     it.Name,
		Price:    it.Price,
		Image:    it.Image,
		Category: it.Category,
		Quantity: 1,
		MaxStock: it.MaxStock,
	})
}

func RemoveItem(lines []Line, id string) []Line {
	i := indexOf(lines, id)
	if i < 0 {
		return lines
	}
	return slices.Delete(slices.Clone(lines), i, i+1)
}

// UpdateQuantity sets a line's quantity clamped to its stock ceiling.
// A quantity of zero or less removes the line.
func UpdateQuantity(lines []Line, id string, quantity int) []Line {
	if quantity <= 0 {
		return RemoveItem(lines, id)
	}
	i := indexOf(lines, id)
	if i < 0 {
		return lines
	}
	out := slices.Clone(lines)
	out[i].Quantity = min(quantity, out[i].MaxStock)
	return out
}

func ClearCart([]Line) []Line { return []Line{} }

// Restore sanitizes lines read back from storage: empty ids and
// non-positive quantities are dropped, duplicates merged, quantities clamped.
func Restore(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ID == "" || l.Quantity <= 0 || l.MaxStock < 1 {
			continue
		}
		if i := indexOf(out, l.ID); i >= 0 {
			out[i].Quantity = min(out[i].Quantity+l.Quantity, out[i].MaxStock)
			continue
		}
		l.Quantity = min(l.Quantity, l.MaxStock)
		out = append(out, l)
	}
	return out
}

func ComputeTotals(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal += l.Price * float64(l.Quantity)
		t.ItemCount += l.Quantity
	}
	t.Tax = t.Subtotal * TaxRate
	t.Total = t.Subtotal + t.Tax
	return t
}

func indexOf(lines []Line, id string) int {
	return slices.IndexFunc(lines, func(l Line) bool { return l.ID == id })
}
