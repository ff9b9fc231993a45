// Package cart maintains the single in-memory cart state, reconciling local
// optimistic mutations with the authoritative cart held by the remote shop
// API. When the backend is reachable every mutation is confirmed by
// re-fetching the server-computed cart; when it is not, the availability-over-
// consistency operations fall back to local mutation and the snapshot is
// marked non-authoritative so a later reconciliation can detect divergence.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rabiauynk/Organik-kose/internal/api"
	"github.com/rabiauynk/Organik-kose/internal/localstore"
	"github.com/rabiauynk/Organik-kose/internal/platform/observability"
)

// Origin records the trust level of a cart line.
type Origin string

const (
	// OriginRemote marks a line last confirmed by the backend.
	OriginRemote Origin = "remote"
	// OriginLocal marks a line carrying an optimistic local mutation that the
	// backend has not confirmed.
	OriginLocal Origin = "local"
)

// Line is one cart line item. Product identifiers are unique within a cart
// and quantity is always at least one; reducing a quantity to zero removes
// the line instead.
type Line struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice api.Price `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	ImageURL  string    `json:"imageUrl"`
	Origin    Origin    `json:"origin"`
}

// Snapshot is the published cart state handed to views. Authoritative is true
// only while the state equals the backend's last confirmed cart.
type Snapshot struct {
	Lines         []Line `json:"lines"`
	Authoritative bool   `json:"authoritative"`
}

// Total recomputes the total price from the snapshot's lines.
func (s Snapshot) Total() api.Price {
	var total api.Price
	for _, line := range s.Lines {
		total += line.UnitPrice * api.Price(line.Quantity)
	}
	return total
}

// Product carries the fields a view supplies when adding an item. Quantity is
// always one; repeat adds are merged by the backend.
type Product struct {
	ProductID string
	Name      string
	UnitPrice api.Price
	ImageURL  string
}

// Service is the remote cart contract consumed by the synchronizer.
type Service interface {
	ListCartItems(ctx context.Context, token string) ([]api.CartEntry, error)
	AddCartItem(ctx context.Context, token, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, token, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, token, productID string) error
	ClearCart(ctx context.Context, token string) error
}

// Persistence is the subset of the local store the synchronizer needs.
type Persistence interface {
	PutJSON(key string, value any) error
	GetJSON(key string, out any) error
}

// Deps wires the synchronizer's collaborators.
type Deps struct {
	Service  Service
	Store    Persistence
	Token    func() string
	Logger   *zap.Logger
	OnChange func(Snapshot)
}

// Synchronizer owns the cart state. Views never mutate it directly; they read
// snapshots and invoke the mutation operations below.
type Synchronizer struct {
	svc      Service
	store    Persistence
	token    func() string
	logger   *zap.Logger
	onChange func(Snapshot)

	mu            sync.Mutex
	lines         []Line
	authoritative bool
	issued        uint64
	applied       uint64
}

var (
	errServiceRequired = errors.New("cart sync: service is required")
	errStoreRequired   = errors.New("cart sync: store is required")
)

// New constructs a Synchronizer enforcing dependency validation.
func New(deps Deps) (*Synchronizer, error) {
	if deps.Service == nil {
		return nil, errServiceRequired
	}
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	token := deps.Token
	if token == nil {
		token = func() string { return "" }
	}
	onChange := deps.OnChange
	if onChange == nil {
		onChange = func(Snapshot) {}
	}
	return &Synchronizer{
		svc:      deps.Service,
		store:    deps.Store,
		token:    token,
		logger:   observability.Ensure(deps.Logger),
		onChange: onChange,
	}, nil
}

// Initialize performs exactly one remote read. On success the authoritative
// cart replaces the in-memory state and is persisted; on failure the last
// persisted snapshot (or an empty cart) is loaded instead. Never retried.
func (s *Synchronizer) Initialize(ctx context.Context) error {
	seq := s.begin()

	entries, err := s.svc.ListCartItems(ctx, s.token())
	if err != nil {
		s.logger.Warn("cart load from backend failed, using persisted state", zap.Error(err))

		var persisted Snapshot
		loadErr := s.store.GetJSON(localstore.KeyCart, &persisted)
		if loadErr != nil && !errors.Is(loadErr, localstore.ErrNotFound) {
			return fmt.Errorf("cart sync: load persisted cart: %w", loadErr)
		}

		s.mu.Lock()
		s.lines = persisted.Lines
		s.authoritative = false
		s.applied = seq
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.onChange(snap)
		return nil
	}

	if snap, ok := s.applyRemote(seq, entries); ok {
		s.persist(snap)
		s.onChange(snap)
	}
	return nil
}

// AddItem adds one unit of the product via the backend and republishes the
// authoritative cart. Add failures are surfaced to the caller and never
// fabricated locally: the cart keeps billing-relevant server-computed
// quantities or stays untouched.
func (s *Synchronizer) AddItem(ctx context.Context, product Product) error {
	seq := s.begin()

	if err := s.svc.AddCartItem(ctx, s.token(), product.ProductID, 1); err != nil {
		return fmt.Errorf("cart sync: add %s: %w", product.ProductID, err)
	}

	entries, err := s.svc.ListCartItems(ctx, s.token())
	if err != nil {
		// The add was accepted but the confirming read failed; report it and
		// leave the published state alone rather than guessing the merge.
		return fmt.Errorf("cart sync: confirm add %s: %w", product.ProductID, err)
	}

	if snap, ok := s.applyRemote(seq, entries); ok {
		s.persist(snap)
		s.onChange(snap)
	}
	return nil
}

// RemoveItem removes the product's line via the backend, falling back to a
// local removal when the backend cannot be reached. The fallback trades
// consistency for availability and is not reported as an error.
func (s *Synchronizer) RemoveItem(ctx context.Context, productID string) error {
	seq := s.begin()

	if err := s.svc.RemoveCartItem(ctx, s.token(), productID); err != nil {
		s.logger.Warn("remote remove failed, removing locally",
			zap.String("productId", productID), zap.Error(err))
		s.removeLocally(productID)
		return nil
	}

	entries, err := s.svc.ListCartItems(ctx, s.token())
	if err != nil {
		s.logger.Warn("cart refresh after remove failed, removing locally",
			zap.String("productId", productID), zap.Error(err))
		s.removeLocally(productID)
		return nil
	}

	if snap, ok := s.applyRemote(seq, entries); ok {
		s.persist(snap)
		s.onChange(snap)
	}
	return nil
}

// SetQuantity sets the absolute quantity of a line. Quantities of zero or
// below delegate to RemoveItem. Backend failures fall back to a local update.
func (s *Synchronizer) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	seq := s.begin()

	if err := s.svc.UpdateCartItem(ctx, s.token(), productID, quantity); err != nil {
		s.logger.Warn("remote quantity update failed, updating locally",
			zap.String("productId", productID), zap.Int("quantity", quantity), zap.Error(err))
		s.setQuantityLocally(productID, quantity)
		return nil
	}

	entries, err := s.svc.ListCartItems(ctx, s.token())
	if err != nil {
		s.logger.Warn("cart refresh after update failed, updating locally",
			zap.String("productId", productID), zap.Int("quantity", quantity), zap.Error(err))
		s.setQuantityLocally(productID, quantity)
		return nil
	}

	if snap, ok := s.applyRemote(seq, entries); ok {
		s.persist(snap)
		s.onChange(snap)
	}
	return nil
}

// Clear empties the cart. The remote call is best-effort: a stale non-empty
// cart is a worse failure mode than an under-reported empty one, so the local
// state is cleared regardless of the outcome.
func (s *Synchronizer) Clear(ctx context.Context) error {
	seq := s.begin()

	err := s.svc.ClearCart(ctx, s.token())
	if err != nil {
		s.logger.Warn("remote cart clear failed, clearing locally anyway", zap.Error(err))
	}

	s.mu.Lock()
	s.lines = nil
	s.authoritative = err == nil
	s.applied = seq
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snap)
	s.onChange(snap)
	return nil
}

// Total recomputes the total price from the current lines on every call.
func (s *Synchronizer) Total() api.Price {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total api.Price
	for _, line := range s.lines {
		total += line.UnitPrice * api.Price(line.Quantity)
	}
	return total
}

// Snapshot returns a deep copy of the published cart state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// begin allocates a sequence number for an operation. Republishes apply only
// when their operation is still the most recently issued one, so responses
// arriving out of order cannot overwrite newer state with a stale read.
func (s *Synchronizer) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// applyRemote replaces the in-memory state with the fetched authoritative
// cart, unless a newer operation has been issued in the meantime.
func (s *Synchronizer) applyRemote(seq uint64, entries []api.CartEntry) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		s.logger.Debug("discarding stale cart response",
			zap.Uint64("seq", seq), zap.Uint64("latest", s.issued))
		return Snapshot{}, false
	}

	lines := make([]Line, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, Line{
			ProductID: entry.Product.ID,
			Name:      entry.Product.Name,
			UnitPrice: entry.Product.Price,
			Quantity:  entry.Quantity,
			ImageURL:  entry.Product.ImageURL,
			Origin:    OriginRemote,
		})
	}
	s.lines = lines
	s.authoritative = true
	s.applied = seq
	return s.snapshotLocked(), true
}

func (s *Synchronizer) removeLocally(productID string) {
	s.mu.Lock()
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	s.authoritative = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snap)
	s.onChange(snap)
}

func (s *Synchronizer) setQuantityLocally(productID string, quantity int) {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			s.lines[i].Origin = OriginLocal
			break
		}
	}
	s.authoritative = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snap)
	s.onChange(snap)
}

// persist writes the snapshot to the local store before control returns to
// the caller, so a reload never loses the most recent locally-known state.
func (s *Synchronizer) persist(snap Snapshot) {
	if err := s.store.PutJSON(localstore.KeyCart, snap); err != nil {
		s.logger.Error("persist cart snapshot failed", zap.Error(err))
	}
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{Lines: lines, Authoritative: s.authoritative}
}
