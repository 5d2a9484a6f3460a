// Package pages builds the view model of every storefront page and carries
// out the actions those pages offer. Each load goes to the backend; nothing
// is cached between loads.
package pages

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
)

const (
	FeaturedLimit         = 6
	CategoryPageSize      = 12
	OrderHistoryPageSize  = 10
	AdminProductsPageSize = 20
	AdminOrdersPageSize   = 20
	DeliveryPageSize      = 20
)

type API interface {
	Products(ctx context.Context, q shopclient.ProductQuery) (*shopclient.ProductList, error)
	AdminProducts(ctx context.Context, q shopclient.ProductQuery) (*shopclient.ProductList, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Product(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, in shopclient.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in shopclient.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, req shopclient.CreateOrderRequest) (*models.Order, error)
	Orders(ctx context.Context, q shopclient.OrderQuery) (*shopclient.OrderList, error)
	AdminOrders(ctx context.Context, q shopclient.OrderQuery) (*shopclient.OrderList, error)
	DeliveryOrders(ctx context.Context, q shopclient.OrderQuery) (*shopclient.OrderList, error)
	DeliveryAgents(ctx context.Context) ([]models.DeliveryAgent, error)
	AssignOrder(ctx context.Context, orderID, deliveryBoyID string) error
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

type Pages struct {
	api     API
	session *auth.Session
	cart    *cart.Store
	now     func() time.Time
}

func New(api API, session *auth.Session, cart *cart.Store) *Pages {
	return &Pages{api: api, session: session, cart: cart, now: time.Now}
}

// require mirrors a protected route: no session is ErrNotAuthenticated, a
// session with another role is ErrForbidden.
func (p *Pages) require(roles ...models.Role) (auth.State, error) {
	st := p.session.State()
	if !st.Authenticated {
		return st, shopclient.Reject(auth.ErrNotAuthenticated, "Please login to continue")
	}
	if len(roles) > 0 && !slices.Contains(roles, st.Role()) {
		return st, shopclient.Reject(ErrForbidden, "You don't have access to this page")
	}
	return st, nil
}

// shopperOnly refuses cart changes from a signed-in account that is not a
// shopper. Anonymous calls fall through so the cart asks for a login.
func (p *Pages) shopperOnly() error {
	st := p.session.State()
	if st.Authenticated && st.Role() != models.RoleUser {
		return shopclient.Reject(ErrForbidden, "Only customers can use the cart")
	}
	return nil
}

func parseStatusFilter(v string) (models.OrderStatus, error) {
	if v == "" {
		return "", nil
	}
	s, err := models.ParseOrderStatus(v)
	if err != nil {
		return "", shopclient.Reject(ErrValidation, "Unknown order status %q", v)
	}
	return s, nil
}

func failure(err error, fallback string) error {
	var rej *shopclient.Rejection
	if errors.As(err, &rej) {
		return err
	}
	return &shopclient.Rejection{Msg: shopclient.Message(err, fallback), Err: err}
}
