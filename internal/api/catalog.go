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

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context, token string) ([]Product, error) {
	return c.listProducts(ctx, token, "/products")
}

// SearchProducts returns products whose name matches the query.
func (c *Client) SearchProducts(ctx context.Context, token, query string) ([]Product, error) {
	endpoint := "/products/search?q=" + url.QueryEscape(strings.TrimSpace(query))
	return c.listProducts(ctx, token, endpoint)
}

// ListProductsByCategory returns the products of a single category.
func (c *Client) ListProductsByCategory(ctx context.Context, token, categoryID string) ([]Product, error) {
	endpoint := path.Join("/products/category", url.PathEscape(strings.TrimSpace(categoryID)))
	return c.listProducts(ctx, token, endpoint)
}

func (c *Client) listProducts(ctx context.Context, token, endpoint string) ([]Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, err
	}

	var payload []productPayload
	if err := c.fetch(req, &payload); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(payload))
	for _, raw := range payload {
		product, err := raw.normalize()
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, product)
	}
	return products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, token, productID string) (Product, error) {
	endpoint := path.Join("/products", url.PathEscape(strings.TrimSpace(productID)))
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return Product{}, err
	}

	var payload productPayload
	if err := c.fetch(req, &payload); err != nil {
		return Product{}, err
	}
	product, err := payload.normalize()
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// CreateProduct creates a catalog entry. Admin capability required.
func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput) (Product, error) {
	body, err := productInputBody(input)
	if err != nil {
		return Product{}, err
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/products", body, token)
	if err != nil {
		return Product{}, err
	}

	var payload productPayload
	if err := c.fetch(req, &payload); err != nil {
		return Product{}, err
	}
	product, err := payload.normalize()
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

// UpdateProduct replaces the writable fields of a product. Admin capability required.
func (c *Client) UpdateProduct(ctx context.Context, token, productID string, input ProductInput) (Product, error) {
	body, err := productInputBody(input)
	if err != nil {
		return Product{}, err
	}
	endpoint := path.Join("/products", url.PathEscape(strings.TrimSpace(productID)))
	req, err := c.newJSONRequest(ctx, http.MethodPut, endpoint, body, token)
	if err != nil {
		return Product{}, err
	}

	var payload productPayload
	if err := c.fetch(req, &payload); err != nil {
		return Product{}, err
	}
	product, err := payload.normalize()
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a catalog entry. Admin capability required.
func (c *Client) DeleteProduct(ctx context.Context, token, productID string) error {
	endpoint := path.Join("/products", url.PathEscape(strings.TrimSpace(productID)))
	req, err := c.newRequest(ctx, http.MethodDelete, endpoint, nil, token)
	if err != nil {
		return err
	}
	return c.ok(req)
}

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context, token string) ([]Category, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/categories", nil, token)
	if err != nil {
		return nil, err
	}

	var payload []categoryPayload
	if err := c.fetch(req, &payload); err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(payload))
	for _, raw := range payload {
		category, err := raw.normalize()
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// CreateCategory creates a category. Admin capability required.
func (c *Client) CreateCategory(ctx context.Context, token string, input CategoryInput) (Category, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/categories", categoryInputBody(input), token)
	if err != nil {
		return Category{}, err
	}

	var payload categoryPayload
	if err := c.fetch(req, &payload); err != nil {
		return Category{}, err
	}
	category, err := payload.normalize()
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// UpdateCategory replaces the writable fields of a category. Admin capability required.
func (c *Client) UpdateCategory(ctx context.Context, token, categoryID string, input CategoryInput) (Category, error) {
	endpoint := path.Join("/categories", url.PathEscape(strings.TrimSpace(categoryID)))
	req, err := c.newJSONRequest(ctx, http.MethodPut, endpoint, categoryInputBody(input), token)
	if err != nil {
		return Category{}, err
	}

	var payload categoryPayload
	if err := c.fetch(req, &payload); err != nil {
		return Category{}, err
	}
	category, err := payload.normalize()
	if err != nil {
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category. Admin capability required.
func (c *Client) DeleteCategory(ctx context.Context, token, categoryID string) error {
	endpoint := path.Join("/categories", url.PathEscape(strings.TrimSpace(categoryID)))
	req, err := c.newRequest(ctx, http.MethodDelete, endpoint, nil, token)
	if err != nil {
		return err
	}
	return c.ok(req)
}

func productInputBody(input ProductInput) (productInputPayload, error) {
	categoryID, err := strconv.ParseInt(strings.TrimSpace(input.CategoryID), 10, 64)
	if err != nil {
		return productInputPayload{}, fmt.Errorf("api: category id %q is not numeric", input.CategoryID)
	}
	return productInputPayload{
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Stock:       input.Stock,
		CategoryID:  categoryID,
	}, nil
}

func categoryInputBody(input CategoryInput) map[string]string {
	return map[string]string{
		"name":        strings.TrimSpace(input.Name),
		"description": strings.TrimSpace(input.Description),
		"icon":        strings.TrimSpace(input.Icon),
	}
}
