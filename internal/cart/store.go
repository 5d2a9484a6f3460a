// Package cart mirrors the shopper's remote cart. Every mutation is a single
// request whose response replaces the local state; the session's login and
// logout transitions drive refetching and clearing.
package cart

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

var ErrValidation = errors.New("invalid cart change")

type API interface {
	Cart(ctx context.Context) (*models.Cart, error)
	AddToCart(ctx context.Context, productID string, quantity int) (*models.Cart, error)
	UpdateCartItem(ctx context.Context, productID string, quantity int) (*models.Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (*models.Cart, error)
	ClearCart(ctx context.Context) error
}

type Session interface {
	Authenticated() bool
	Subscribe(l auth.Listener)
}

type Store struct {
	api     API
	session Session

	mu    sync.Mutex
	state State
}

func NewStore(api API, session Session) *Store {
	s := &Store{
		api:     api,
		session: session,
		state:   State{Items: []models.CartItem{}, Total: decimal.Zero},
	}
	session.Subscribe(s.onAuthChange)
	return s
}

func (s *Store) onAuthChange(ctx context.Context, prev, next auth.State) {
	switch {
	case !next.Authenticated:
		if prev.Authenticated || len(s.Snapshot().Items) > 0 {
			s.dispatch(CartCleared{})
		}
	case !prev.Authenticated || prev.Token != next.Token:
		if err := s.Fetch(ctx); err != nil {
			logging.FromContext(ctx).Warn("cart_fetch_failed", "component", "cart", "error", err)
		}
	}
}

func (s *Store) dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.mu.Unlock()
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) ItemCount() int {
	return ItemCount(s.Snapshot().Items)
}

func (s *Store) Item(productID string) (models.CartItem, bool) {
	items := s.Snapshot().Items
	i := slices.IndexFunc(items, func(it models.CartItem) bool { return it.ProductID == productID })
	if i < 0 {
		return models.CartItem{}, false
	}
	return items[i], true
}

func (s *Store) ComputedTotal() decimal.Decimal {
	return ComputedTotal(s.Snapshot().Items)
}

// Fetch replaces the local cart with the remote one. A failed fetch leaves
// the cart empty.
func (s *Store) Fetch(ctx context.Context) error {
	if !s.session.Authenticated() {
		s.dispatch(CartCleared{})
		return nil
	}
	s.dispatch(LoadingSet{Loading: true})
	c, err := s.api.Cart(ctx)
	if err != nil {
		s.dispatch(CartCleared{})
		return failure(err, "Failed to load cart")
	}
	s.apply(*c)
	return nil
}

func (s *Store) Add(ctx context.Context, productID string, quantity int) error {
	if !s.session.Authenticated() {
		return shopclient.Reject(auth.ErrNotAuthenticated, "Please login to add items to cart")
	}
	if quantity < 1 {
		return shopclient.Reject(ErrValidation, "Quantity must be at least 1")
	}
	return s.mutate(ctx, "Failed to add to cart", func() (*models.Cart, error) {
		return s.api.AddToCart(ctx, productID, quantity)
	})
}

// Update sets the quantity of a line. Zero removes it; a quantity above the
// stock known from the product snapshot is refused without a request.
func (s *Store) Update(ctx context.Context, productID string, quantity int) error {
	if !s.session.Authenticated() {
		return shopclient.Reject(auth.ErrNotAuthenticated, "Please login to update cart")
	}
	switch {
	case quantity < 0:
		return shopclient.Reject(ErrValidation, "Quantity cannot be negative")
	case quantity == 0:
		return s.Remove(ctx, productID)
	}
	if it, ok := s.Item(productID); ok && it.Product != nil && quantity > it.Product.Stock {
		return shopclient.Reject(ErrValidation, "Only %d items available in stock", it.Product.Stock)
	}
	return s.mutate(ctx, "Failed to update cart", func() (*models.Cart, error) {
		return s.api.UpdateCartItem(ctx, productID, quantity)
	})
}

func (s *Store) Remove(ctx context.Context, productID string) error {
	if !s.session.Authenticated() {
		return shopclient.Reject(auth.ErrNotAuthenticated, "Please login to remove from cart")
	}
	return s.mutate(ctx, "Failed to remove from cart", func() (*models.Cart, error) {
		return s.api.RemoveFromCart(ctx, productID)
	})
}

// Clear empties the cart. Without a session only local state is touched.
func (s *Store) Clear(ctx context.Context) error {
	if !s.session.Authenticated() {
		s.dispatch(CartCleared{})
		return nil
	}
	s.dispatch(LoadingSet{Loading: true})
	if err := s.api.ClearCart(ctx); err != nil {
		s.dispatch(LoadingSet{Loading: false})
		return failure(err, "Failed to clear cart")
	}
	s.dispatch(CartCleared{})
	return nil
}

func (s *Store) mutate(ctx context.Context, fallback string, call func() (*models.Cart, error)) error {
	s.dispatch(LoadingSet{Loading: true})
	c, err := call()
	if err != nil {
		s.dispatch(LoadingSet{Loading: false})
		logging.FromContext(ctx).Debug("cart_change_failed", "component", "cart", "error", err)
		return failure(err, fallback)
	}
	s.apply(*c)
	return nil
}

// apply installs a backend cart unless the session ended while the request
// was in flight.
func (s *Store) apply(c models.Cart) {
	if !s.session.Authenticated() {
		s.dispatch(CartCleared{})
		return
	}
	s.dispatch(CartSet{Cart: c})
}

func failure(err error, fallback string) error {
	return &shopclient.Rejection{Msg: shopclient.Message(err, fallback), Err: err}
}
