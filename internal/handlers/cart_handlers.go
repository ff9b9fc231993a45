package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rabiauynk/Organik-kose/internal/api"
	"github.com/rabiauynk/Organik-kose/internal/cart"
	"github.com/rabiauynk/Organik-kose/internal/format"
	"github.com/rabiauynk/Organik-kose/internal/platform/httpx"
)

type cartLineView struct {
	ProductID        string      `json:"productId"`
	Name             string      `json:"name"`
	UnitPrice        api.Price   `json:"unitPrice"`
	Quantity         int         `json:"quantity"`
	ImageURL         string      `json:"imageUrl"`
	Origin           cart.Origin `json:"origin"`
	DisplayUnitPrice string      `json:"displayUnitPrice"`
	LineTotal        api.Price   `json:"lineTotal"`
}

type cartView struct {
	Items         []cartLineView `json:"items"`
	Total         api.Price      `json:"total"`
	DisplayTotal  string         `json:"displayTotal"`
	Authoritative bool           `json:"authoritative"`
}

type addItemRequest struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice api.Price `json:"unitPrice"`
	ImageURL  string    `json:"imageUrl"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func buildCartView(snap cart.Snapshot) cartView {
	items := make([]cartLineView, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		items = append(items, cartLineView{
			ProductID:        line.ProductID,
			Name:             line.Name,
			UnitPrice:        line.UnitPrice,
			Quantity:         line.Quantity,
			ImageURL:         line.ImageURL,
			Origin:           line.Origin,
			DisplayUnitPrice: format.Currency(int64(line.UnitPrice), "TRY"),
			LineTotal:        line.UnitPrice * api.Price(line.Quantity),
		})
	}
	total := snap.Total()
	return cartView{
		Items:         items,
		Total:         total,
		DisplayTotal:  format.Currency(int64(total), "TRY"),
		Authoritative: snap.Authoritative,
	}
}

// CartView returns the published cart snapshot.
func (h *Handlers) CartView(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, buildCartView(h.cart.Snapshot()))
}

// AddCartItem adds one unit of the product. Failures are surfaced to the
// caller and leave the cart untouched.
func (h *Handlers) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "productId is required", http.StatusBadRequest))
		return
	}
	if req.UnitPrice < 0 {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "unitPrice must be non-negative", http.StatusBadRequest))
		return
	}

	err := h.cart.AddItem(r.Context(), cart.Product{
		ProductID: strings.TrimSpace(req.ProductID),
		Name:      strings.TrimSpace(req.Name),
		UnitPrice: req.UnitPrice,
		ImageURL:  strings.TrimSpace(req.ImageURL),
	})
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildCartView(h.cart.Snapshot()))
}

// SetCartQuantity sets the absolute quantity of a line; zero and below remove it.
func (h *Handlers) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}

	if err := h.cart.SetQuantity(r.Context(), productID, req.Quantity); err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildCartView(h.cart.Snapshot()))
}

// RemoveCartItem removes a line.
func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.RemoveItem(r.Context(), chi.URLParam(r, "productID")); err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildCartView(h.cart.Snapshot()))
}

// ClearCart empties the cart; locally honoured even when the backend call fails.
func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buildCartView(h.cart.Snapshot()))
}
