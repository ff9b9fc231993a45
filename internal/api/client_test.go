package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rabiauynk/Organik-kose/internal/api"
)

func newClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := api.NewClient(ts.URL+"/api", ts.Client())
	require.NoError(t, err)
	return client
}

func TestLoginNormalizesAuthResponse(t *testing.T) {
	t.Parallel()

	var body map[string]string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-123","id":42,"email":"ayse@example.com","name":"Ayşe","role":"admin"}`))
	})

	result, err := client.Login(context.Background(), " ayse@example.com ", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "ayse@example.com", body["email"])
	require.Equal(t, "s3cret", body["password"])
	require.Equal(t, "tok-123", result.Token)
	require.Equal(t, "42", result.UserID)
	require.Equal(t, "ADMIN", result.Role)
	require.Equal(t, "Ayşe", result.DisplayName)
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Geçersiz e-posta veya şifre"))
	})

	_, err := client.Login(context.Background(), "ayse@example.com", "wrong")
	require.ErrorIs(t, err, api.ErrUnauthorized)

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.Status)
	require.Equal(t, "Geçersiz e-posta veya şifre", statusErr.Message)
}

func TestLoginRejectsMissingToken(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"ayse@example.com"}`))
	})

	_, err := client.Login(context.Background(), "ayse@example.com", "s3cret")
	require.ErrorIs(t, err, api.ErrInvalidResponse)
}

func TestListCartItemsNormalizesEntries(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/cart", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"product":{"id":7,"isim":"Organik Elma","fiyat":45.5,"stok":12,"category":{"id":3,"name":"Meyve"}},"quantity":2},
			{"product":{"id":9,"isim":"Köy Yumurtası","fiyat":120,"resimUrl":"/img/yumurta.png","aktif":false,"categoryId":4,"categoryName":"Kahvaltılık"},"quantity":1}
		]`))
	})

	entries, err := client.ListCartItems(context.Background(), "tok-123")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "7", entries[0].Product.ID)
	require.Equal(t, "Organik Elma", entries[0].Product.Name)
	require.Equal(t, api.Price(4550), entries[0].Product.Price)
	require.Equal(t, "/placeholder-image.jpg", entries[0].Product.ImageURL)
	require.True(t, entries[0].Product.Active)
	require.Equal(t, "3", entries[0].Product.CategoryID)
	require.Equal(t, "Meyve", entries[0].Product.CategoryName)
	require.Equal(t, 2, entries[0].Quantity)

	require.Equal(t, api.Price(12000), entries[1].Product.Price)
	require.Equal(t, "/img/yumurta.png", entries[1].Product.ImageURL)
	require.False(t, entries[1].Product.Active)
	require.Equal(t, "4", entries[1].Product.CategoryID)
}

func TestListCartItemsRejectsInvalidEntry(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"product":{"id":7,"isim":"Organik Elma","fiyat":45.5},"quantity":2},
			{"product":{"id":8,"isim":"Bozuk Satır","fiyat":10},"quantity":0}
		]`))
	})

	entries, err := client.ListCartItems(context.Background(), "tok-123")
	require.ErrorIs(t, err, api.ErrInvalidResponse)
	require.Nil(t, entries)
}

func TestAddCartItemSendsNumericProductID(t *testing.T) {
	t.Parallel()

	var body map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/cart/add", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.AddCartItem(context.Background(), "tok-123", "7", 1))
	require.Equal(t, float64(7), body["productId"])
	require.Equal(t, float64(1), body["quantity"])

	err := client.AddCartItem(context.Background(), "tok-123", "not-a-number", 1)
	require.Error(t, err)
}

func TestRemoveCartItemTargetsProductPath(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/cart/remove/7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.RemoveCartItem(context.Background(), "tok-123", "7"))
}

func TestSearchProductsEscapesQuery(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/search", r.URL.Path)
		require.Equal(t, "organik elma", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"isim":"Organik Elma","fiyat":45.5}]`))
	})

	products, err := client.SearchProducts(context.Background(), "", "organik elma")
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Organik Elma", products[0].Name)
}

func TestCreateOrderFromCartSetsIdempotencyKey(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders/from-cart", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.Equal(t, "01JX0000000000000000000000", r.Header.Get("Idempotency-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":11,"userId":42,"userName":"Ayşe","orderDate":"2026-02-03T10:15:30",
			"status":"PENDING","totalAmount":211.00,
			"orderDetails":[{"productId":7,"productName":"Organik Elma","quantity":2,"price":45.5}]
		}`))
	})

	order, err := client.CreateOrderFromCart(context.Background(), "tok-123", "01JX0000000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "11", order.ID)
	require.Equal(t, "PENDING", order.Status)
	require.Equal(t, api.Price(21100), order.TotalAmount)
	require.Len(t, order.Lines, 1)
	require.Equal(t, api.Price(4550), order.Lines[0].UnitPrice)
	require.Equal(t, 2026, order.PlacedAt.Year())
}

func TestUpdateOrderStatusSendsRawStatus(t *testing.T) {
	t.Parallel()

	var body string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/orders/11/status", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":11,"status":"SHIPPED"}`))
	})

	order, err := client.UpdateOrderStatus(context.Background(), "tok-123", "11", "SHIPPED")
	require.NoError(t, err)
	require.Equal(t, "SHIPPED", body)
	require.Equal(t, "SHIPPED", order.Status)
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListProducts(context.Background(), "")
	require.ErrorIs(t, err, api.ErrUnavailable)
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","message":"ürün bulunamadı"}`))
	})

	_, err := client.GetProduct(context.Background(), "", "999")
	require.ErrorIs(t, err, api.ErrNotFound)

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, "ürün bulunamadı", statusErr.Message)
}
