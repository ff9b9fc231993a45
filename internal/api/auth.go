package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Login authenticates the user and returns the normalised auth result
// including the opaque bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	body := map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/login", body, "")
	if err != nil {
		return AuthResult{}, err
	}

	var payload authPayload
	if err := c.fetch(req, &payload); err != nil {
		return AuthResult{}, err
	}
	result, err := payload.normalize()
	if err != nil {
		return AuthResult{}, fmt.Errorf("login: %w", err)
	}
	return result, nil
}

// Register creates a new account. A successful registration returns the same
// shape as Login and is treated by callers as an implicit login.
func (c *Client) Register(ctx context.Context, reg RegisterRequest) (AuthResult, error) {
	body := map[string]string{
		"email":    strings.TrimSpace(reg.Email),
		"password": reg.Password,
		"name":     strings.TrimSpace(reg.DisplayName),
		"phone":    strings.TrimSpace(reg.Phone),
		"address":  strings.TrimSpace(reg.Address),
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/auth/register", body, "")
	if err != nil {
		return AuthResult{}, err
	}

	var payload authPayload
	if err := c.fetch(req, &payload); err != nil {
		return AuthResult{}, err
	}
	result, err := payload.normalize()
	if err != nil {
		return AuthResult{}, fmt.Errorf("register: %w", err)
	}
	return result, nil
}
