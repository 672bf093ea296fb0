package catalog

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Apply narrows products by c and then sorts the survivors. The input slice is
// never modified; stages run search, category, price, on-sale, sort.
func Apply(products []Product, c Criteria) []Product {
	out := make([]Product, 0, len(products))
	matchSearch := searchMatcher(c.SearchTerm)
	for _, p := range products {
		if !matchSearch(p) {
			continue
		}
		if len(c.SelectedCategories) > 0 && !slices.Contains(c.SelectedCategories, p.Category) {
			continue
		}
		if !c.PriceRange.Contains(p.Price) {
			continue
		}
		if c.ShowOnSale && !p.OnSale() {
			continue
		}
		out = append(out, p)
	}
	sortProducts(out, c.SortBy)
	return out
}

func searchMatcher(term string) func(Product) bool {
	if term == "" {
		return func(Product) bool { return true }
	}
	// Caser carries state; one per call.
	fold := cases.Fold()
	needle := fold.String(term)
	has := func(s string) bool { return strings.Contains(fold.String(s), needle) }
	return func(p Product) bool {
		if has(p.Name) || has(p.Description) || has(p.Category) {
			return true
		}
		return slices.ContainsFunc(p.Tags, has)
	}
}

func sortProducts(ps []Product, mode SortMode) {
	var less func(a, b Product) int
	switch mode {
	case SortPriceLow:
		less = func(a, b Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceHigh:
		less = func(a, b Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortRating:
		less = func(a, b Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortTrending:
		less = func(a, b Product) int { return cmp.Compare(b.ReviewCount, a.ReviewCount) }
	case SortBestseller:
		less = func(a, b Product) int { return cmp.Compare(b.bestsellerScore(), a.bestsellerScore()) }
	default:
		return
	}
	slices.SortStableFunc(ps, less)
}

// Filter holds the criteria of one browsing session. Every update swaps the
// whole criteria value under the lock, so readers never see a partial update.
type Filter struct {
	mu       sync.RWMutex
	full     PriceRange
	criteria Criteria
}

// NewFilter starts from the neutral criteria for the given full price range.
func NewFilter(full PriceRange) *Filter {
	return &Filter{full: full, criteria: DefaultCriteria(full)}
}

func (f *Filter) update(fn func(c *Criteria)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.criteria.clone()
	fn(&next)
	f.criteria = next
}

// Criteria returns a copy of the current criteria.
func (f *Filter) Criteria() Criteria {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.criteria.clone()
}

// FullRange is the price range the neutral criteria use.
func (f *Filter) FullRange() PriceRange {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.full
}

// UpdateSearch stores term verbatim.
func (f *Filter) UpdateSearch(term string) {
	f.update(func(c *Criteria) { c.SearchTerm = term })
}

func (f *Filter) ToggleCategory(cat string) {
	f.update(func(c *Criteria) { c.SelectedCategories = toggleCategory(c.SelectedCategories, cat) })
}

// UpdatePriceRange replaces the range as given; callers keep Min <= Max.
func (f *Filter) UpdatePriceRange(r PriceRange) {
	f.update(func(c *Criteria) { c.PriceRange = r })
}

func (f *Filter) UpdateSortBy(mode SortMode) {
	f.update(func(c *Criteria) { c.SortBy = mode })
}

func (f *Filter) ToggleOnSale() {
	f.update(func(c *Criteria) { c.ShowOnSale = !c.ShowOnSale })
}

func (f *Filter) ClearFilters() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.criteria = DefaultCriteria(f.full)
}

// SetFullRange changes the neutral price range, e.g. after a new catalog
// arrives. A price range equal to the old full range follows the new one.
func (f *Filter) SetFullRange(full PriceRange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.criteria.PriceRange == f.full {
		f.criteria = f.criteria.clone()
		f.criteria.PriceRange = full
	}
	f.full = full
}

func (f *Filter) ActiveFiltersCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.criteria.ActiveCount(f.full)
}

// Apply runs the engine over products with the current criteria.
func (f *Filter) Apply(products []Product) []Product {
	return Apply(products, f.Criteria())
}
