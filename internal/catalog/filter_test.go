package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func ids(ps []Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func sampleProducts() []Product {
	return []Product{
		{ID: "bread", Name: "Pan de masa madre", Description: "Hogaza", Category: "Panadería", Price: 4.5, Rating: 4.2, ReviewCount: 30, Tags: []string{"panadería"}},
		{ID: "milk", Name: "Leche entera", Description: "1 litro", Category: "Lácteos", Price: 1.2, OriginalPrice: ptr(1.5), Rating: 3.9, ReviewCount: 12},
		{ID: "cheese", Name: "Queso fresco", Description: "Artesanal", Category: "Lácteos", Price: 6, Rating: 4.8, ReviewCount: 5, Tags: []string{"organic"}},
		{ID: "wine", Name: "Vino tinto", Description: "Reserva", Category: "Bebidas", Price: 18, OriginalPrice: ptr(18), Rating: 4.1, ReviewCount: 40},
	}
}

func TestApply_Search(t *testing.T) {
	products := sampleProducts()

	t.Run("empty_term_keeps_everything", func(t *testing.T) {
		got := Apply(products, DefaultCriteria(UnboundedRange))
		assert.Equal(t, products, got)
	})

	t.Run("matches_name_case_insensitive", func(t *testing.T) {
		c := DefaultCriteria(UnboundedRange)
		c.SearchTerm = "LECHE"
		assert.Equal(t, []string{"milk"}, ids(Apply(products, c)))
	})

	t.Run("matches_category_with_accents", func(t *testing.T) {
		c := DefaultCriteria(UnboundedRange)
		c.SearchTerm = "LÁCTEOS"
		assert.Equal(t, []string{"milk", "cheese"}, ids(Apply(products, c)))
	})

	t.Run("matches_description_and_tags", func(t *testing.T) {
		c := DefaultCriteria(UnboundedRange)
		c.SearchTerm = "reserva"
		assert.Equal(t, []string{"wine"}, ids(Apply(products, c)))

		c.SearchTerm = "organ"
		assert.Equal(t, []string{"cheese"}, ids(Apply(products, c)))
	})

	t.Run("term_is_not_trimmed", func(t *testing.T) {
		c := DefaultCriteria(UnboundedRange)
		c.SearchTerm = " leche"
		assert.Empty(t, Apply(products, c))
	})
}

func TestApply_CategoryPriceSale(t *testing.T) {
	products := sampleProducts()

	c := DefaultCriteria(UnboundedRange)
	c.SelectedCategories = []string{"Lácteos", "Bebidas"}
	assert.Equal(t, []string{"milk", "cheese", "wine"}, ids(Apply(products, c)))

	c.PriceRange = PriceRange{Min: 1.2, Max: 6}
	assert.Equal(t, []string{"milk", "cheese"}, ids(Apply(products, c)), "bounds are inclusive")

	c.ShowOnSale = true
	assert.Equal(t, []string{"milk"}, ids(Apply(products, c)), "filters are conjunctive")

	c = DefaultCriteria(UnboundedRange)
	c.ShowOnSale = true
	assert.Equal(t, []string{"milk"}, ids(Apply(products, c)), "original price equal to price is not a sale")

	c = DefaultCriteria(UnboundedRange)
	c.PriceRange = PriceRange{Min: 100, Max: 200}
	assert.Empty(t, Apply(products, c))
}

func TestApply_OnSaleScenario(t *testing.T) {
	products := []Product{
		{ID: "a", Price: 10, Category: "Bakery"},
		{ID: "b", Price: 20, Category: "Dairy", OriginalPrice: ptr(25)},
	}
	c := DefaultCriteria(UnboundedRange)
	c.ShowOnSale = true
	assert.Equal(t, []string{"b"}, ids(Apply(products, c)))
}

func TestApply_Sort(t *testing.T) {
	products := sampleProducts()

	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortDefault, []string{"bread", "milk", "cheese", "wine"}},
		{SortPriceLow, []string{"milk", "bread", "cheese", "wine"}},
		{SortPriceHigh, []string{"wine", "cheese", "bread", "milk"}},
		{SortRating, []string{"cheese", "bread", "wine", "milk"}},
		{SortTrending, []string{"wine", "bread", "milk", "cheese"}},
		{SortBestseller, []string{"wine", "bread", "milk", "cheese"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			c := DefaultCriteria(UnboundedRange)
			c.SortBy = tt.mode
			assert.Equal(t, tt.want, ids(Apply(products, c)))
		})
	}

	t.Run("input_untouched", func(t *testing.T) {
		c := DefaultCriteria(UnboundedRange)
		c.SortBy = SortPriceHigh
		_ = Apply(products, c)
		assert.Equal(t, []string{"bread", "milk", "cheese", "wine"}, ids(products))
	})

	t.Run("stable_on_ties", func(t *testing.T) {
		ties := []Product{{ID: "x", Price: 5}, {ID: "y", Price: 5}, {ID: "z", Price: 1}}
		c := DefaultCriteria(UnboundedRange)
		c.SortBy = SortPriceHigh
		assert.Equal(t, []string{"x", "y", "z"}, ids(Apply(ties, c)))
	})
}

func TestApply_BestsellerScenario(t *testing.T) {
	products := []Product{
		{ID: "second", Rating: 5, ReviewCount: 3},
		{ID: "first", Rating: 4, ReviewCount: 10},
	}
	c := DefaultCriteria(UnboundedRange)
	c.SortBy = SortBestseller
	assert.Equal(t, []string{"first", "second"}, ids(Apply(products, c)))
}

func TestApply_EmptyAndDeterministic(t *testing.T) {
	assert.Empty(t, Apply(nil, DefaultCriteria(UnboundedRange)))

	c := DefaultCriteria(UnboundedRange)
	c.SearchTerm = "a"
	c.SortBy = SortRating
	products := sampleProducts()
	assert.Equal(t, Apply(products, c), Apply(products, c))
}

func TestApply_IsSubsequence(t *testing.T) {
	products := sampleProducts()
	c := DefaultCriteria(UnboundedRange)
	c.SelectedCategories = []string{"Lácteos", "Panadería"}

	got := Apply(products, c)
	pos := 0
	for _, p := range got {
		for pos < len(products) && products[pos].ID != p.ID {
			pos++
		}
		require.Less(t, pos, len(products), "%s out of order", p.ID)
		pos++
	}
}

func TestFilter_Updates(t *testing.T) {
	f := NewFilter(PriceRange{Min: 0, Max: 100})
	assert.Equal(t, 0, f.ActiveFiltersCount())

	f.UpdateSearch("pan")
	f.ToggleCategory("Panadería")
	f.UpdatePriceRange(PriceRange{Min: 0, Max: 50})
	f.UpdateSortBy(SortRating)
	f.ToggleOnSale()

	c := f.Criteria()
	assert.Equal(t, "pan", c.SearchTerm)
	assert.Equal(t, []string{"Panadería"}, c.SelectedCategories)
	assert.Equal(t, PriceRange{Min: 0, Max: 50}, c.PriceRange)
	assert.Equal(t, SortRating, c.SortBy)
	assert.True(t, c.ShowOnSale)
	assert.Equal(t, 5, f.ActiveFiltersCount())

	f.ToggleCategory("Bebidas")
	f.ToggleCategory("Lácteos")
	assert.Equal(t, 5, f.ActiveFiltersCount(), "each condition counts once")

	f.ClearFilters()
	assert.Equal(t, DefaultCriteria(PriceRange{Min: 0, Max: 100}), f.Criteria())
	assert.Equal(t, 0, f.ActiveFiltersCount())
}

func TestFilter_ToggleCategoryIsItsOwnInverse(t *testing.T) {
	f := NewFilter(UnboundedRange)
	f.ToggleCategory("a")
	f.ToggleCategory("b")
	f.ToggleCategory("c")
	before := f.Criteria().SelectedCategories

	f.ToggleCategory("b")
	assert.Equal(t, []string{"a", "c"}, f.Criteria().SelectedCategories, "insertion order preserved")
	f.ToggleCategory("b")
	assert.ElementsMatch(t, before, f.Criteria().SelectedCategories)

	f.ToggleCategory("z")
	f.ToggleCategory("z")
	assert.Equal(t, []string{"a", "c", "b"}, f.Criteria().SelectedCategories)
}

func TestFilter_CriteriaIsACopy(t *testing.T) {
	f := NewFilter(UnboundedRange)
	f.ToggleCategory("a")
	c := f.Criteria()
	c.SelectedCategories[0] = "mutated"
	assert.Equal(t, []string{"a"}, f.Criteria().SelectedCategories)
}

func TestFilter_ClearThenApplyReturnsInput(t *testing.T) {
	products := sampleProducts()
	f := NewFilter(FullRange(products))
	f.UpdateSearch("queso")
	f.UpdateSortBy(SortPriceHigh)
	f.ClearFilters()
	assert.Equal(t, products, f.Apply(products))
}

func TestFilter_PriceRangeActiveCount(t *testing.T) {
	full := PriceRange{Min: 0, Max: 100}
	c := DefaultCriteria(full)
	require.True(t, c.PriceRange.Valid())

	c.PriceRange = PriceRange{Min: 1, Max: 100}
	assert.Equal(t, 1, c.ActiveCount(full))
	c.PriceRange = PriceRange{Min: 0, Max: 99}
	assert.Equal(t, 1, c.ActiveCount(full))
	c.PriceRange = PriceRange{Min: 0, Max: 500}
	assert.Equal(t, 0, c.ActiveCount(full), "wider than full is not narrowing")
}

func TestFilter_SetFullRange(t *testing.T) {
	f := NewFilter(UnboundedRange)
	f.SetFullRange(PriceRange{Min: 0, Max: 20})
	assert.Equal(t, PriceRange{Min: 0, Max: 20}, f.Criteria().PriceRange)

	f.UpdatePriceRange(PriceRange{Min: 2, Max: 10})
	f.SetFullRange(PriceRange{Min: 0, Max: 40})
	assert.Equal(t, PriceRange{Min: 2, Max: 10}, f.Criteria().PriceRange, "user range kept")
	assert.Equal(t, PriceRange{Min: 0, Max: 40}, f.FullRange())
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, SortBestseller, ParseSortMode("bestseller"))
	assert.Equal(t, SortDefault, ParseSortMode("newest"))
	assert.Equal(t, SortDefault, ParseSortMode(""))
}

func TestFacets(t *testing.T) {
	products := sampleProducts()
	assert.Equal(t, []CategoryCount{
		{Name: "Panadería", Count: 1},
		{Name: "Lácteos", Count: 2},
		{Name: "Bebidas", Count: 1},
	}, Categories(products))

	assert.Equal(t, PriceRange{Min: 0, Max: 18}, FullRange(products))
	assert.Equal(t, UnboundedRange, FullRange(nil))

	p, ok := Find(products, "wine")
	require.True(t, ok)
	assert.Equal(t, "Vino tinto", p.Name)
	_, ok = Find(products, "nope")
	assert.False(t, ok)
}
