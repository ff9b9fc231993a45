package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rabiauynk/Organik-kose/internal/platform/httpx"
)

// AllOrders lists every order in the shop (admin).
func (h *Handlers) AllOrders(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	orders, err := h.orders.ListAllOrders(r.Context(), token)
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order along its fulfilment states (admin).
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "status is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), token, chi.URLParam(r, "orderID"), status)
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}
