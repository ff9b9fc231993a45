package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// ListCartItems fetches the authoritative cart, preserving the backend's
// ordering. Entries that fail shape validation abort the whole read so the
// synchronizer never republishes a partially valid cart.
func (c *Client) ListCartItems(ctx context.Context, token string) ([]CartEntry, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/cart", nil, token)
	if err != nil {
		return nil, err
	}

	var payload []cartEntryPayload
	if err := c.fetch(req, &payload); err != nil {
		return nil, err
	}

	entries := make([]CartEntry, 0, len(payload))
	for _, raw := range payload {
		entry, err := raw.normalize()
		if err != nil {
			return nil, fmt.Errorf("list cart: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// AddCartItem requests the backend to add quantity units of the product. The
// backend computes merges of duplicate adds itself.
func (c *Client) AddCartItem(ctx context.Context, token, productID string, quantity int) error {
	id, err := numericID(productID)
	if err != nil {
		return err
	}
	body := map[string]any{
		"productId": id,
		"quantity":  quantity,
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/cart/add", body, token)
	if err != nil {
		return err
	}
	return c.ok(req)
}

// UpdateCartItem sets the absolute quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, token, productID string, quantity int) error {
	id, err := numericID(productID)
	if err != nil {
		return err
	}
	body := map[string]any{
		"productId": id,
		"quantity":  quantity,
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/cart/update", body, token)
	if err != nil {
		return err
	}
	return c.ok(req)
}

// RemoveCartItem removes the line for the given product.
func (c *Client) RemoveCartItem(ctx context.Context, token, productID string) error {
	endpoint := path.Join("/cart/remove", url.PathEscape(strings.TrimSpace(productID)))
	req, err := c.newRequest(ctx, http.MethodDelete, endpoint, nil, token)
	if err != nil {
		return err
	}
	return c.ok(req)
}

// ClearCart empties the remote cart.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/cart/clear", nil, token)
	if err != nil {
		return err
	}
	return c.ok(req)
}

// numericID converts the string product identifier used throughout the client
// into the numeric form the backend expects in JSON bodies.
func numericID(productID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(productID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("api: product id %q is not numeric", productID)
	}
	return id, nil
}
