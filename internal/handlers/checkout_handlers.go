package handlers

import (
	"net/http"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rabiauynk/Organik-kose/internal/platform/httpx"
)

// Checkout converts the server-side cart into an order, then empties the
// local cart. The remote cart is the order source, so the snapshot here is
// only consulted to reject an obviously empty checkout early.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	if len(h.cart.Snapshot().Lines) == 0 {
		httpx.WriteError(r.Context(), w, httpx.NewError("empty_cart", "cart has no items to order", http.StatusConflict))
		return
	}

	key := ulid.Make().String()
	order, err := h.orders.CreateOrderFromCart(r.Context(), token, key)
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}

	if err := h.cart.Clear(r.Context()); err != nil {
		h.logger.Warn("cart clear after checkout failed", zap.String("order_id", order.ID), zap.Error(err))
	}

	httpx.WriteJSON(w, http.StatusCreated, order)
}

// MyOrders lists the signed-in customer's orders.
func (h *Handlers) MyOrders(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	orders, err := h.orders.ListMyOrders(r.Context(), token)
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}
