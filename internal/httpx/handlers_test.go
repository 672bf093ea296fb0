package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(f float64) *float64 { return &f }
func sp(s string) *string   { return &s }
func ip(i int) *int         { return &i }
func bp(b bool) *bool       { return &b }

type dataService struct {
	stores map[string]storefront.StorefrontData
	down   bool
}

func (d *dataService) FetchStorefront(_ context.Context, sub string) (storefront.StorefrontData, error) {
	if d.down {
		return storefront.StorefrontData{}, errors.New("connection refused")
	}
	data, ok := d.stores[sub]
	if !ok {
		return storefront.StorefrontData{}, storefront.ErrStoreNotFound
	}
	return data, nil
}

func (d *dataService) SearchBusinesses(_ context.Context, term string) ([]storefront.BusinessResult, error) {
	var out []storefront.BusinessResult
	for _, s := range d.stores {
		if strings.Contains(strings.ToLower(s.Store.Name), strings.ToLower(term)) {
			out = append(out, storefront.BusinessResult{ID: s.Store.ID, Name: s.Store.Name, Subdomain: s.Store.Subdomain})
		}
	}
	return out, nil
}

func (d *dataService) ListPublic(ctx context.Context) ([]storefront.BusinessResult, error) {
	return d.SearchBusinesses(ctx, "")
}

type capturePublisher struct {
	mu     sync.Mutex
	envs   []events.Envelope
	err    error
	during func() // runs while the publish is in flight
}

func (p *capturePublisher) PublishEnvelope(_ string, env events.Envelope) error {
	if p.during != nil {
		p.during()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.envs = append(p.envs, env)
	return nil
}

func lunaData() storefront.StorefrontData {
	return storefront.StorefrontData{
		Store: storefront.Store{ID: "s1", Name: "Panadería Luna", Subdomain: "luna"},
		Products: []storefront.RawProduct{
			{ID: "a", Name: "Baguette", SalePrice: fp(10), Category: sp("Panadería"), Stock: ip(5)},
			{ID: "b", Name: "Yogurt", SalePrice: fp(25), OnPromotion: bp(true), PromoPrice: fp(20), Category: sp("Lácteos"), Stock: ip(3)},
			{ID: "x", Name: "Galleta", SalePrice: fp(5), Category: sp("Snacks"), Stock: ip(2)},
		},
	}
}

type fixture struct {
	router *chi.Mux
	data   *dataService
	pub    *capturePublisher
	carts  *cart.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	data := &dataService{stores: map[string]storefront.StorefrontData{"luna": lunaData()}}
	loader := &storefront.Loader{Source: data}
	pub := &capturePublisher{}
	carts := &cart.Service{Store: cart.NewMemoryStore()}

	r := NewRouter()
	(&StorefrontHandler{Catalogs: loader, Businesses: data}).Register(r)
	(&CartHandler{Catalogs: loader, Carts: carts, Producer: pub, Service: "storefront-api"}).Register(r)
	return &fixture{router: r, data: data, pub: pub, carts: carts}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func productIDs(resp ProductsResp) []string {
	out := []string{}
	for _, p := range resp.Products {
		out = append(out, p.ID)
	}
	return out
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		target string
		want   []string
		active int
	}{
		{"unfiltered", "/storefronts/luna/products", []string{"a", "b", "x"}, 0},
		{"search", "/storefronts/luna/products?q=YOG", []string{"b"}, 1},
		{"category", "/storefronts/luna/products?category=Panader%C3%ADa&category=Snacks", []string{"a", "x"}, 1},
		{"category_toggled_twice", "/storefronts/luna/products?category=Snacks&category=Snacks", []string{"a", "b", "x"}, 0},
		{"price", "/storefronts/luna/products?min=5&max=10", []string{"a", "x"}, 1},
		{"sale", "/storefronts/luna/products?sale=true", []string{"b"}, 1},
		{"sort", "/storefronts/luna/products?sort=price-low", []string{"x", "a", "b"}, 1},
		{"combined", "/storefronts/luna/products?sort=price-high&max=15", []string{"a", "x"}, 2},
		{"host_resolved", "http://localhost:5173/products?subdomain=luna&sort=price-high", []string{"b", "a", "x"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decode[ProductsResp](t, rec)
			assert.Equal(t, tt.want, productIDs(resp))
			assert.Equal(t, len(tt.want), resp.Count)
			assert.Equal(t, tt.active, resp.ActiveFilters)
		})
	}
}

func TestListProducts_Errors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/storefronts/luna/products?min=9&max=2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/storefronts/luna/products?max=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/storefronts/ghost/products", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "marketplace host has no storefront")

	f.data.down = true
	rec = f.do(t, http.MethodGet, "/storefronts/luna/products", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetStore(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/storefronts/luna", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[StoreResp](t, rec)
	assert.Equal(t, "Panadería Luna", resp.Store.Name)
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Categories, 3)
	assert.Equal(t, 20.0, resp.PriceRange.Max)
}

func TestListBusinesses(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/businesses?q=lu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]BusinessResp](t, rec))

	rec = f.do(t, http.MethodGet, "/businesses?q=luna", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[[]BusinessResp](t, rec)
	require.Len(t, res, 1)
	assert.Equal(t, "luna", res[0].Subdomain)
	assert.Equal(t, "http://luna.example.com", res[0].URL)

	rec = f.do(t, http.MethodGet, "/businesses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]BusinessResp](t, rec), 1)
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/storefronts/luna/carts", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[CreateCartResp](t, rec).CartID
	base := "/storefronts/luna/carts/" + id

	for i := 0; i < 3; i++ {
		rec = f.do(t, http.MethodPost, base+"/items", `{"product_id":"x"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	st := decode[cart.State](t, rec)
	assert.Equal(t, id, st.ID)
	require.Len(t, st.Lines, 1)
	assert.Equal(t, 2, st.Lines[0].Quantity, "capped at stock")
	assert.InDelta(t, 10, st.Totals.Subtotal, 1e-9)
	assert.InDelta(t, 0.8, st.Totals.Tax, 1e-9)
	assert.InDelta(t, 10.8, st.Totals.Total, 1e-9)

	rec = f.do(t, http.MethodPost, base+"/items", `{"product_id":"b"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	st = decode[cart.State](t, rec)
	assert.Equal(t, 20.0, st.Lines[1].Price, "promotional price captured")

	rec = f.do(t, http.MethodPatch, base+"/items/b", `{"quantity":9}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[cart.State](t, rec).Lines[1].Quantity)

	rec = f.do(t, http.MethodPatch, base+"/items/b", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[cart.State](t, rec).Lines, 1)

	rec = f.do(t, http.MethodDelete, base+"/items/x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cart.State](t, rec).Lines)

	rec = f.do(t, http.MethodPost, base+"/items", `{"product_id":"a"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cart.State](t, rec).Lines)

	rec = f.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cart.State](t, rec).Lines)
}

func TestCartErrors(t *testing.T) {
	f := newFixture(t)
	base := "/storefronts/luna/carts/6f1c2b0e-8d7a-4c55-9a53-0e6c6f0d2a11"

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/storefronts/luna/carts/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, base+"/items", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, base+"/items", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPatch, base+"/items/a", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, base+"/items", `{"product_id":"zzz"}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/storefronts/ghost/carts", "").Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, base+"/checkout", "").Code)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	base := "/storefronts/luna/carts/6f1c2b0e-8d7a-4c55-9a53-0e6c6f0d2a11"

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/items", `{"product_id":"a"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/items", `{"product_id":"a"}`).Code)

	rec := f.do(t, http.MethodPost, base+"/checkout", "")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	resp := decode[CheckoutResp](t, rec)
	assert.InDelta(t, 21.6, resp.Totals.Total, 1e-9)

	require.Len(t, f.pub.envs, 1)
	env := f.pub.envs[0]
	assert.Equal(t, events.EventCheckoutRequested, env.EventType)
	assert.Equal(t, resp.EventID, env.EventID)
	var payload events.CheckoutRequestedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "luna", payload.Subdomain)
	assert.Equal(t, 2, payload.Totals.ItemCount)

	rec = f.do(t, http.MethodGet, base, "")
	assert.Empty(t, decode[cart.State](t, rec).Lines, "checkout empties the cart")
}

func TestCheckout_PublishFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker unavailable")
	base := "/storefronts/luna/carts/6f1c2b0e-8d7a-4c55-9a53-0e6c6f0d2a11"

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/items", `{"product_id":"a"}`).Code)
	rec := f.do(t, http.MethodPost, base+"/checkout", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = f.do(t, http.MethodGet, base, "")
	assert.Len(t, decode[cart.State](t, rec).Lines, 1)
}

func TestCheckout_PublishFailureKeepsConcurrentAdds(t *testing.T) {
	f := newFixture(t)
	base := "/storefronts/luna/carts/6f1c2b0e-8d7a-4c55-9a53-0e6c6f0d2a11"
	f.pub.err = errors.New("broker unavailable")
	f.pub.during = func() {
		rec := f.do(t, http.MethodPost, base+"/items", `{"product_id":"x"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, base+"/items", `{"product_id":"a"}`).Code)
	assert.Equal(t, http.StatusBadGateway, f.do(t, http.MethodPost, base+"/checkout", "").Code)

	st := decode[cart.State](t, f.do(t, http.MethodGet, base, ""))
	require.Len(t, st.Lines, 2)
	assert.Equal(t, "x", st.Lines[0].ID)
	assert.Equal(t, "a", st.Lines[1].ID)
	assert.Equal(t, 1, st.Lines[1].Quantity)
}
