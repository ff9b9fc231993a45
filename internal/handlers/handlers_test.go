package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/rabiauynk/Organik-kose/internal/api"
	"github.com/rabiauynk/Organik-kose/internal/cart"
	"github.com/rabiauynk/Organik-kose/internal/handlers"
	"github.com/rabiauynk/Organik-kose/internal/localstore"
	"github.com/rabiauynk/Organik-kose/internal/session"
)

// stubBackend plays the remote shop API for every contract the handlers pull
// in. Unset hooks fall back to benign zero behaviour.
type stubBackend struct {
	loginFn       func(email, password string) (api.AuthResult, error)
	listCartFn    func(token string) ([]api.CartEntry, error)
	addCartFn     func(token, productID string, quantity int) error
	listProducts  func(token string) ([]api.Product, error)
	createOrderFn func(token, key string) (api.Order, error)

	cartEntries []api.CartEntry
}

func (s *stubBackend) Login(_ context.Context, email, password string) (api.AuthResult, error) {
	if s.loginFn != nil {
		return s.loginFn(email, password)
	}
	return api.AuthResult{}, api.ErrUnauthorized
}

func (s *stubBackend) Register(_ context.Context, reg api.RegisterRequest) (api.AuthResult, error) {
	return api.AuthResult{Token: "tok", UserID: "1", Email: reg.Email, DisplayName: reg.DisplayName, Role: "USER"}, nil
}

func (s *stubBackend) ListCartItems(_ context.Context, token string) ([]api.CartEntry, error) {
	if s.listCartFn != nil {
		return s.listCartFn(token)
	}
	return s.cartEntries, nil
}

func (s *stubBackend) AddCartItem(_ context.Context, token, productID string, quantity int) error {
	if s.addCartFn != nil {
		return s.addCartFn(token, productID, quantity)
	}
	return nil
}

func (s *stubBackend) UpdateCartItem(context.Context, string, string, int) error { return nil }
func (s *stubBackend) RemoveCartItem(context.Context, string, string) error      { return nil }
func (s *stubBackend) ClearCart(context.Context, string) error {
	s.cartEntries = nil
	return nil
}

func (s *stubBackend) ListProducts(_ context.Context, token string) ([]api.Product, error) {
	if s.listProducts != nil {
		return s.listProducts(token)
	}
	return nil, nil
}

func (s *stubBackend) SearchProducts(context.Context, string, string) ([]api.Product, error) {
	return nil, nil
}

func (s *stubBackend) ListProductsByCategory(context.Context, string, string) ([]api.Product, error) {
	return nil, nil
}

func (s *stubBackend) GetProduct(context.Context, string, string) (api.Product, error) {
	return api.Product{}, api.ErrNotFound
}

func (s *stubBackend) CreateProduct(_ context.Context, _ string, input api.ProductInput) (api.Product, error) {
	return api.Product{ID: "100", Name: input.Name, Price: input.Price, CategoryID: input.CategoryID}, nil
}

func (s *stubBackend) UpdateProduct(_ context.Context, _ string, productID string, input api.ProductInput) (api.Product, error) {
	return api.Product{ID: productID, Name: input.Name, Price: input.Price}, nil
}

func (s *stubBackend) DeleteProduct(context.Context, string, string) error { return nil }

func (s *stubBackend) ListCategories(context.Context, string) ([]api.Category, error) {
	return nil, nil
}

func (s *stubBackend) CreateCategory(_ context.Context, _ string, input api.CategoryInput) (api.Category, error) {
	return api.Category{ID: "10", Name: input.Name}, nil
}

func (s *stubBackend) UpdateCategory(_ context.Context, _ string, categoryID string, input api.CategoryInput) (api.Category, error) {
	return api.Category{ID: categoryID, Name: input.Name}, nil
}

func (s *stubBackend) DeleteCategory(context.Context, string, string) error { return nil }

func (s *stubBackend) CreateOrderFromCart(_ context.Context, token, key string) (api.Order, error) {
	if s.createOrderFn != nil {
		return s.createOrderFn(token, key)
	}
	return api.Order{ID: "11", Status: "PENDING"}, nil
}

func (s *stubBackend) ListMyOrders(context.Context, string) ([]api.Order, error) { return nil, nil }
func (s *stubBackend) ListAllOrders(context.Context, string) ([]api.Order, error) {
	return []api.Order{{ID: "11", Status: "PENDING"}}, nil
}

func (s *stubBackend) UpdateOrderStatus(_ context.Context, _ string, orderID, status string) (api.Order, error) {
	return api.Order{ID: orderID, Status: status}, nil
}

func newHarness(t *testing.T, backend *stubBackend) http.Handler {
	t.Helper()

	store, err := localstore.New(afero.NewMemMapFs(), "state")
	require.NoError(t, err)

	sessions, err := session.NewManager(session.Deps{Auth: backend, Store: store})
	require.NoError(t, err)

	carts, err := cart.New(cart.Deps{Service: backend, Store: store, Token: sessions.Token})
	require.NoError(t, err)
	require.NoError(t, carts.Initialize(context.Background()))

	h, err := handlers.New(handlers.Deps{
		Cart:       carts,
		Sessions:   sessions,
		Catalog:    backend,
		Orders:     backend,
		AdminPanel: true,
	})
	require.NoError(t, err)
	return h.Routes()
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, router http.Handler, role string, backend *stubBackend) {
	t.Helper()
	backend.loginFn = func(email, password string) (api.AuthResult, error) {
		return api.AuthResult{Token: "tok", UserID: "42", Email: email, Role: role}, nil
	}
	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ayse@example.com",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newHarness(t, &stubBackend{})
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	router := newHarness(t, &stubBackend{})
	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "ayse@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var envelope struct {
		Code string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "invalid_credentials", envelope.Code)
}

func TestAdminRoutesAreGated(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	router := newHarness(t, backend)

	rec := doJSON(t, router, http.MethodGet, "/admin/orders", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	loginAs(t, router, "USER", backend)
	rec = doJSON(t, router, http.MethodGet, "/admin/orders", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminCanManageOrders(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	router := newHarness(t, backend)
	loginAs(t, router, "ADMIN", backend)

	rec := doJSON(t, router, http.MethodGet, "/admin/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/admin/orders/11/status", map[string]string{"status": "SHIPPED"})
	require.Equal(t, http.StatusOK, rec.Code)

	var order struct {
		Status string `json:"Status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, "SHIPPED", order.Status)
}

func TestAddCartItemReturnsCartView(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	backend.addCartFn = func(token, productID string, quantity int) error {
		backend.cartEntries = []api.CartEntry{{
			Product:  api.Product{ID: productID, Name: "Organik Elma", Price: 4500, ImageURL: "/img.png", Active: true},
			Quantity: quantity,
		}}
		return nil
	}
	router := newHarness(t, backend)
	loginAs(t, router, "USER", backend)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", map[string]any{
		"productId": "7",
		"name":      "Organik Elma",
		"unitPrice": 45.00,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		DisplayTotal  string `json:"displayTotal"`
		Authoritative bool   `json:"authoritative"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	require.Equal(t, "7", view.Items[0].ProductID)
	require.Equal(t, "₺45.00", view.DisplayTotal)
	require.True(t, view.Authoritative)
}

func TestAddCartItemFailureSurfaces(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{
		addCartFn: func(token, productID string, quantity int) error {
			return api.ErrUnavailable
		},
	}
	router := newHarness(t, backend)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", map[string]any{"productId": "7"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/cart/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Empty(t, view.Items)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	router := newHarness(t, backend)
	loginAs(t, router, "USER", backend)

	rec := doJSON(t, router, http.MethodPost, "/checkout", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	t.Parallel()

	var receivedKey string
	backend := &stubBackend{}
	backend.addCartFn = func(token, productID string, quantity int) error {
		backend.cartEntries = []api.CartEntry{{
			Product:  api.Product{ID: productID, Name: "Organik Elma", Price: 4500, ImageURL: "/img.png", Active: true},
			Quantity: quantity,
		}}
		return nil
	}
	backend.createOrderFn = func(token, key string) (api.Order, error) {
		receivedKey = key
		return api.Order{ID: "11", Status: "PENDING", TotalAmount: 4500}, nil
	}
	router := newHarness(t, backend)
	loginAs(t, router, "USER", backend)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", map[string]any{"productId": "7", "unitPrice": 45.0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, receivedKey)

	rec = doJSON(t, router, http.MethodGet, "/cart/", nil)
	var view struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Empty(t, view.Items)
}

func TestUnauthorizedBackendResponseForcesLogout(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	backend.listProducts = func(token string) ([]api.Product, error) {
		return nil, api.ErrUnauthorized
	}
	router := newHarness(t, backend)
	loginAs(t, router, "USER", backend)

	rec := doJSON(t, router, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.False(t, view.Authenticated)
}
