package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/go-chi/chi/v5"
)

type StorefrontHandler struct {
	Catalogs   storefront.CatalogLoader
	Businesses storefront.Searcher
}

type StoreResp struct {
	Store      storefront.Store        `json:"store"`
	Categories []catalog.CategoryCount `json:"categories"`
	PriceRange catalog.PriceRange      `json:"price_range"`
	Count      int                     `json:"product_count"`
}

type ProductsResp struct {
	Store         storefront.Store  `json:"store"`
	Products      []catalog.Product `json:"products"`
	Count         int               `json:"count"`
	ActiveFilters int               `json:"active_filters"`
	Criteria      catalog.Criteria  `json:"criteria"`
}

type BusinessResp struct {
	storefront.BusinessResult
	URL string `json:"url"`
}

func (h *StorefrontHandler) Register(r chi.Router) {
	r.Get("/businesses", h.listBusinesses)
	r.Get("/store", h.getStore)
	r.Get("/products", h.listProducts)
	r.Get("/storefronts/{subdomain}", h.getStore)
	r.Get("/storefronts/{subdomain}/products", h.listProducts)
}

func (h *StorefrontHandler) load(w http.ResponseWriter, r *http.Request) (storefront.Catalog, bool) {
	sub, err := subdomainOf(r)
	if err != nil {
		writeError(w, err)
		return storefront.Catalog{}, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cat, err := h.Catalogs.Load(ctx, sub)
	if err != nil {
		writeError(w, err)
		return storefront.Catalog{}, false
	}
	return cat, true
}

func (h *StorefrontHandler) getStore(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, StoreResp{
		Store:      cat.Store,
		Categories: catalog.Categories(cat.Products),
		PriceRange: cat.FullRange,
		Count:      len(cat.Products),
	})
}

func (h *StorefrontHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.load(w, r)
	if !ok {
		return
	}
	f, err := filterFromQuery(r.URL.Query(), cat.FullRange)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	products := f.Apply(cat.Products)
	writeJSON(w, http.StatusOK, ProductsResp{
		Store:         cat.Store,
		Products:      products,
		Count:         len(products),
		ActiveFilters: f.ActiveFiltersCount(),
		Criteria:      f.Criteria(),
	})
}

type queryError string

func (e queryError) Error() string { return string(e) }

// filterFromQuery replays query parameters as filter updates. Repeated
// category values toggle, so a category given twice cancels out.
func filterFromQuery(q url.Values, full catalog.PriceRange) (*catalog.Filter, error) {
	f := catalog.NewFilter(full)
	if q.Has("q") {
		f.UpdateSearch(q.Get("q"))
	}
	for _, c := range q["category"] {
		f.ToggleCategory(c)
	}

	pr := full
	if v := q.Get("min"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, queryError("invalid min")
		}
		pr.Min = n
	}
	if v := q.Get("max"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, queryError("invalid max")
		}
		pr.Max = n
	}
	if !pr.Valid() {
		return nil, queryError("min must not exceed max")
	}
	if pr != full {
		f.UpdatePriceRange(pr)
	}

	if v := q.Get("sort"); v != "" {
		f.UpdateSortBy(catalog.ParseSortMode(v))
	}
	if v := q.Get("sale"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, queryError("invalid sale")
		}
		if on {
			f.ToggleOnSale()
		}
	}
	return f, nil
}

func (h *StorefrontHandler) listBusinesses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var (
		res []storefront.BusinessResult
		err error
	)
	if q := r.URL.Query(); q.Has("q") {
		res, err = storefront.SearchBusinesses(ctx, h.Businesses, q.Get("q"))
	} else {
		res, err = h.Businesses.ListPublic(ctx)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]BusinessResp, 0, len(res))
	for _, b := range res {
		out = append(out, BusinessResp{
			BusinessResult: b,
			URL:            storefront.StorefrontURL(scheme(r), r.Host, b.Subdomain),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
