// Package handlers exposes the storefront and admin back-office operations to
// views as JSON endpoints. Handlers are thin: they translate requests into
// synchronizer/session/client calls and map failures onto the canonical error
// envelope. Rendering is the consumer's concern.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rabiauynk/Organik-kose/internal/api"
	"github.com/rabiauynk/Organik-kose/internal/cart"
	"github.com/rabiauynk/Organik-kose/internal/platform/httpx"
	"github.com/rabiauynk/Organik-kose/internal/platform/observability"
	"github.com/rabiauynk/Organik-kose/internal/session"
)

// Catalog is the read/write catalog contract consumed by the handlers.
type Catalog interface {
	ListProducts(ctx context.Context, token string) ([]api.Product, error)
	SearchProducts(ctx context.Context, token, query string) ([]api.Product, error)
	ListProductsByCategory(ctx context.Context, token, categoryID string) ([]api.Product, error)
	GetProduct(ctx context.Context, token, productID string) (api.Product, error)
	CreateProduct(ctx context.Context, token string, input api.ProductInput) (api.Product, error)
	UpdateProduct(ctx context.Context, token, productID string, input api.ProductInput) (api.Product, error)
	DeleteProduct(ctx context.Context, token, productID string) error
	ListCategories(ctx context.Context, token string) ([]api.Category, error)
	CreateCategory(ctx context.Context, token string, input api.CategoryInput) (api.Category, error)
	UpdateCategory(ctx context.Context, token, categoryID string, input api.CategoryInput) (api.Category, error)
	DeleteCategory(ctx context.Context, token, categoryID string) error
}

// Orders is the order contract consumed by the handlers.
type Orders interface {
	CreateOrderFromCart(ctx context.Context, token, idempotencyKey string) (api.Order, error)
	ListMyOrders(ctx context.Context, token string) ([]api.Order, error)
	ListAllOrders(ctx context.Context, token string) ([]api.Order, error)
	UpdateOrderStatus(ctx context.Context, token, orderID, status string) (api.Order, error)
}

// Deps wires the handler dependencies.
type Deps struct {
	Cart     *cart.Synchronizer
	Sessions *session.Manager
	Catalog  Catalog
	Orders   Orders
	Logger   *zap.Logger

	// AdminPanel gates the back-office routes.
	AdminPanel bool

	// RequestTimeout bounds each request; zero uses a sensible default.
	RequestTimeout time.Duration
}

// Handlers carries the wired dependencies for all route groups.
type Handlers struct {
	cart     *cart.Synchronizer
	sessions *session.Manager
	catalog  Catalog
	orders   Orders
	logger   *zap.Logger

	adminPanel bool
	timeout    time.Duration
}

// New validates dependencies and returns the handler set.
func New(deps Deps) (*Handlers, error) {
	if deps.Cart == nil {
		return nil, errors.New("handlers: cart synchronizer is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("handlers: session manager is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("handlers: catalog client is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("handlers: orders client is required")
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handlers{
		cart:       deps.Cart,
		sessions:   deps.Sessions,
		catalog:    deps.Catalog,
		orders:     deps.Orders,
		logger:     observability.Ensure(deps.Logger),
		adminPanel: deps.AdminPanel,
		timeout:    timeout,
	}, nil
}

// Routes assembles the full router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.CurrentSession)
	})

	r.Get("/products", h.ListProducts)
	r.Get("/products/{productID}", h.GetProduct)
	r.Get("/categories", h.ListCategories)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.CartView)
		r.Post("/items", h.AddCartItem)
		r.Put("/items/{productID}", h.SetCartQuantity)
		r.Delete("/items/{productID}", h.RemoveCartItem)
		r.Delete("/", h.ClearCart)
	})

	r.Post("/checkout", h.Checkout)
	r.Get("/orders", h.MyOrders)

	if h.adminPanel {
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{productID}", h.UpdateProduct)
			r.Delete("/products/{productID}", h.DeleteProduct)
			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{categoryID}", h.UpdateCategory)
			r.Delete("/categories/{categoryID}", h.DeleteCategory)
			r.Get("/orders", h.AllOrders)
			r.Put("/orders/{orderID}/status", h.UpdateOrderStatus)
		})
	}

	return r
}

// requireAdmin gates back-office routes on the session's admin capability.
func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.sessions.Current() == nil {
			httpx.WriteError(r.Context(), w, httpx.NewError("unauthenticated", "sign in required", http.StatusUnauthorized))
			return
		}
		if !h.sessions.IsAdmin() {
			httpx.WriteError(r.Context(), w, httpx.NewError("forbidden", "admin capability required", http.StatusForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// backendError maps remote client failures onto the error envelope. A
// rejected bearer token forces a local logout: the persisted session was
// trusted on read and this is the first moment staleness becomes visible.
func (h *Handlers) backendError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		h.logger.Warn("backend rejected the session token, signing out", zap.Error(err))
		h.sessions.Logout()
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "session is no longer valid", http.StatusUnauthorized))
	case errors.Is(err, api.ErrNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "resource not found", http.StatusNotFound))
	case errors.Is(err, api.ErrInvalidResponse):
		h.logger.Error("backend returned an unexpected payload", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("bad_upstream_response", "backend returned an unexpected response", http.StatusBadGateway))
	default:
		h.logger.Error("backend call failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("backend_unavailable", "backend is unavailable", http.StatusBadGateway))
	}
}

// requireToken returns the session token or writes a 401 when signed out.
func (h *Handlers) requireToken(ctx context.Context, w http.ResponseWriter) (string, bool) {
	token := h.sessions.Token()
	if token == "" {
		httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "sign in required", http.StatusUnauthorized))
		return "", false
	}
	return token, true
}
