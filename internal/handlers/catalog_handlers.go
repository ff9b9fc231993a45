package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rabiauynk/Organik-kose/internal/api"
	"github.com/rabiauynk/Organik-kose/internal/platform/httpx"
)

// ListProducts lists the catalog. Supports ?q= full-text search and
// ?category= filtering, mirroring the storefront's browse modes.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	token := h.sessions.Token()

	var (
		products []api.Product
		err      error
	)
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	switch {
	case query != "":
		products, err = h.catalog.SearchProducts(r.Context(), token, query)
	case category != "":
		products, err = h.catalog.ListProductsByCategory(r.Context(), token, category)
	default:
		products, err = h.catalog.ListProducts(r.Context(), token)
	}
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}

// GetProduct returns a single product.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), h.sessions.Token(), chi.URLParam(r, "productID"))
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

// ListCategories returns all categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context(), h.sessions.Token())
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, categories)
}

type productRequest struct {
	Name        string    `json:"name"`
	Price       api.Price `json:"price"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Stock       int       `json:"stock"`
	CategoryID  string    `json:"categoryId"`
}

func (req productRequest) validate() (api.ProductInput, string) {
	if strings.TrimSpace(req.Name) == "" {
		return api.ProductInput{}, "name is required"
	}
	if req.Price < 0 {
		return api.ProductInput{}, "price must be non-negative"
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		return api.ProductInput{}, "categoryId is required"
	}
	return api.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}, ""
}

// CreateProduct creates a catalog entry (admin).
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}
	input, problem := req.validate()
	if problem != "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", problem, http.StatusBadRequest))
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), token, input)
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces a product's writable fields (admin).
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}
	input, problem := req.validate()
	if problem != "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", problem, http.StatusBadRequest))
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), token, chi.URLParam(r, "productID"), input)
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a catalog entry (admin).
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), token, chi.URLParam(r, "productID")); err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CreateCategory creates a category (admin).
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "name is required", http.StatusBadRequest))
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), token, api.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, category)
}

// UpdateCategory replaces a category's writable fields (admin).
func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", "name is required", http.StatusBadRequest))
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), token, chi.URLParam(r, "categoryID"), api.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category (admin).
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	token, ok := h.requireToken(r.Context(), w)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), token, chi.URLParam(r, "categoryID")); err != nil {
		h.backendError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
