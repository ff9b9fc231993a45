package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
)

const idempotencyHeader = "Idempotency-Key"

// CreateOrderFromCart asks the backend to turn the current cart into an order.
// The idempotency key guards against double submission on flaky connections;
// pass an empty key to skip the header.
func (c *Client) CreateOrderFromCart(ctx context.Context, token, idempotencyKey string) (Order, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/orders/from-cart", nil, token)
	if err != nil {
		return Order{}, err
	}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		req.Header.Set(idempotencyHeader, key)
	}

	var payload orderPayload
	if err := c.fetch(req, &payload); err != nil {
		return Order{}, err
	}
	order, err := payload.normalize()
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// ListMyOrders returns the calling user's order history.
func (c *Client) ListMyOrders(ctx context.Context, token string) ([]Order, error) {
	return c.listOrders(ctx, token, "/orders/my-orders")
}

// ListAllOrders returns every order in the shop. Admin capability required.
func (c *Client) ListAllOrders(ctx context.Context, token string) ([]Order, error) {
	return c.listOrders(ctx, token, "/orders")
}

func (c *Client) listOrders(ctx context.Context, token, endpoint string) ([]Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, err
	}

	var payload []orderPayload
	if err := c.fetch(req, &payload); err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(payload))
	for _, raw := range payload {
		order, err := raw.normalize()
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to a new fulfilment status. Admin
// capability required. The status value is the backend's concern and passed
// through opaquely.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, orderID, status string) (Order, error) {
	endpoint := path.Join("/orders", url.PathEscape(strings.TrimSpace(orderID)), "status")
	req, err := c.newJSONRequest(ctx, http.MethodPut, endpoint, strings.TrimSpace(status), token)
	if err != nil {
		return Order{}, err
	}

	var payload orderPayload
	if err := c.fetch(req, &payload); err != nil {
		return Order{}, err
	}
	order, err := payload.normalize()
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}
