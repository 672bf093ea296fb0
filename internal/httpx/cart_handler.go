package httpx

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type Publisher interface {
	PublishEnvelope(key string, env events.Envelope) error
}

type CartHandler struct {
	Catalogs storefront.CatalogLoader
	Carts    *cart.Service
	Producer Publisher
	Service  string
}

type AddItemReq struct {
	ProductID string `json:"product_id" validate:"required"`
}

type UpdateQuantityReq struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type CreateCartResp struct {
	CartID string `json:"cart_id"`
}

type CheckoutResp struct {
	CartID  string      `json:"cart_id"`
	EventID string      `json:"event_id"`
	Totals  cart.Totals `json:"totals"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Post("/storefronts/{subdomain}/carts", h.createCart)
	r.Get("/storefronts/{subdomain}/carts/{cartID}", h.getCart)
	r.Delete("/storefronts/{subdomain}/carts/{cartID}", h.clearCart)
	r.Post("/storefronts/{subdomain}/carts/{cartID}/items", h.addItem)
	r.Patch("/storefronts/{subdomain}/carts/{cartID}/items/{productID}", h.updateQuantity)
	r.Delete("/storefronts/{subdomain}/carts/{cartID}/items/{productID}", h.removeItem)
	r.Post("/storefronts/{subdomain}/carts/{cartID}/checkout", h.checkout)
}

// cartKey validates the path and returns the store key of the cart.
func cartKey(w http.ResponseWriter, r *http.Request) (key, cartID string, ok bool) {
	sub := chi.URLParam(r, "subdomain")
	cartID = chi.URLParam(r, "cartID")
	if _, err := uuid.Parse(cartID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart id"})
		return "", "", false
	}
	return redisx.CartKey(sub, cartID), cartID, true
}

func respond(w http.ResponseWriter, cartID string, st cart.State, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	st.ID = cartID
	writeJSON(w, http.StatusOK, st)
}

func (h *CartHandler) createCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := h.Catalogs.Load(ctx, chi.URLParam(r, "subdomain")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateCartResp{CartID: uuid.NewString()})
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	key, id, ok := cartKey(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	st, err := h.Carts.Get(ctx, key)
	respond(w, id, st, err)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	key, id, ok := cartKey(w, r)
	if !ok {
		return
	}
	var req AddItemReq
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// price and stock come from the catalog, never from the client
	cat, err := h.Catalogs.Load(ctx, chi.URLParam(r, "subdomain"))
	if err != nil {
		writeError(w, err)
		return
	}
	p, found := catalog.Find(cat.Products, req.ProductID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	st, err := h.Carts.AddItem(ctx, key, cart.Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.MainImage(),
		Category: p.Category,
		MaxStock: p.Stock,
	})
	respond(w, id, st, err)
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	key, id, ok := cartKey(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	st, err := h.Carts.UpdateQuantity(ctx, key, chi.URLParam(r, "productID"), *req.Quantity)
	respond(w, id, st, err)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	key, id, ok := cartKey(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	st, err := h.Carts.RemoveItem(ctx, key, chi.URLParam(r, "productID"))
	respond(w, id, st, err)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	key, id, ok := cartKey(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	st, err := h.Carts.Clear(ctx, key)
	respond(w, id, st, err)
}

// checkout is a stub: it hands the cart to downstream consumers as an event
// and empties it. No payment happens here.
func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	key, id, ok := cartKey(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := h.Carts.Take(ctx, key)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(st.Lines) == 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "cart is empty"})
		return
	}

	env, err := events.NewEnvelope(events.EventCheckoutRequested, h.Service, middleware.GetReqID(r.Context()), id,
		events.CheckoutRequestedPayload{
			CartID:    id,
			Subdomain: chi.URLParam(r, "subdomain"),
			Items:     st.Lines,
			Totals:    st.Totals,
		})
	if err == nil {
		err = h.Producer.PublishEnvelope(id, env)
	}
	if err != nil {
		// put the lines back so the shopper can retry, keeping anything
		// added since Take
		rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		if _, rerr := h.Carts.Merge(rctx, key, st.Lines); rerr != nil {
			log.Printf("restore cart %s after failed checkout: %v", id, rerr)
		}
		rcancel()
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, CheckoutResp{CartID: id, EventID: env.EventID, Totals: st.Totals})
}
