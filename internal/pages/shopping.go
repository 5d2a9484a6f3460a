package pages

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

type CartView struct {
	Items     []models.CartItem `json:"items"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"itemCount"`
	Loading   bool              `json:"loading"`
}

func (p *Pages) Cart(ctx context.Context) (*CartView, error) {
	if _, err := p.require(models.RoleUser); err != nil {
		return nil, err
	}
	snap := p.cart.Snapshot()
	return &CartView{Items: snap.Items, Total: snap.Total, ItemCount: p.cart.ItemCount(), Loading: snap.Loading}, nil
}

func (p *Pages) ChangeQuantity(ctx context.Context, productID string, quantity int) error {
	if err := p.shopperOnly(); err != nil {
		return err
	}
	return p.cart.Update(ctx, productID, quantity)
}

func (p *Pages) RemoveItem(ctx context.Context, productID string) error {
	if err := p.shopperOnly(); err != nil {
		return err
	}
	return p.cart.Remove(ctx, productID)
}

func (p *Pages) ClearCart(ctx context.Context) error {
	if err := p.shopperOnly(); err != nil {
		return err
	}
	return p.cart.Clear(ctx)
}

type CheckoutView struct {
	Items           []models.CartItem `json:"items"`
	Total           decimal.Decimal   `json:"total"`
	ShippingAddress models.Address    `json:"shippingAddress"`
	Empty           bool              `json:"empty"`
}

func (p *Pages) Checkout(ctx context.Context) (*CheckoutView, error) {
	st, err := p.require(models.RoleUser)
	if err != nil {
		return nil, err
	}
	snap := p.cart.Snapshot()
	v := &CheckoutView{Items: snap.Items, Total: snap.Total, Empty: len(snap.Items) == 0}
	if st.User != nil && st.User.Address != nil {
		v.ShippingAddress = *st.User.Address
	}
	return v, nil
}

type CheckoutForm struct {
	ShippingAddress models.Address `json:"shippingAddress"`
	Notes           string         `json:"notes"`
}

func (f CheckoutForm) validate() error {
	a := f.ShippingAddress
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"street", a.Street}, {"city", a.City}, {"state", a.State},
		{"zipCode", a.ZipCode}, {"country", a.Country},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return shopclient.Reject(ErrValidation, "Shipping address is incomplete: %s", strings.Join(missing, ", "))
	}
	return nil
}

// PlaceOrder submits the current cart as an order and then clears the cart.
// A failed clear does not undo the order.
func (p *Pages) PlaceOrder(ctx context.Context, form CheckoutForm) (*models.Order, error) {
	if _, err := p.require(models.RoleUser); err != nil {
		return nil, err
	}
	items := p.cart.Snapshot().Items
	if len(items) == 0 {
		return nil, shopclient.Reject(ErrValidation, "Your cart is empty")
	}
	if err := form.validate(); err != nil {
		return nil, err
	}

	lines := make([]shopclient.OrderLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, shopclient.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	order, err := p.api.CreateOrder(ctx, shopclient.CreateOrderRequest{
		Items:           lines,
		ShippingAddress: form.ShippingAddress,
		Notes:           strings.TrimSpace(form.Notes),
	})
	if err != nil {
		return nil, failure(err, "Failed to place order. Please try again.")
	}

	if err := p.cart.Clear(ctx); err != nil {
		logging.FromContext(ctx).Warn("clear_cart_after_order_error", "order_id", order.ID, "error", err)
	}
	return order, nil
}

type OrderFilter struct {
	Status string
	Page   int
}

type OrdersView struct {
	Orders     []models.Order     `json:"orders"`
	Pagination models.Pagination  `json:"pagination"`
	Status     models.OrderStatus `json:"status,omitempty"`
}

func (p *Pages) OrderHistory(ctx context.Context, f OrderFilter) (*OrdersView, error) {
	if _, err := p.require(models.RoleUser); err != nil {
		return nil, err
	}
	status, err := parseStatusFilter(f.Status)
	if err != nil {
		return nil, err
	}
	list, err := p.api.Orders(ctx, shopclient.OrderQuery{Page: max(f.Page, 1), Limit: OrderHistoryPageSize, Status: status})
	if err != nil {
		return nil, failure(err, "Failed to load orders")
	}
	return &OrdersView{Orders: list.Orders, Pagination: list.Pagination, Status: status}, nil
}

type ProfileView struct {
	User models.User `json:"user"`
}

func (p *Pages) Profile(ctx context.Context) (*ProfileView, error) {
	st, err := p.require()
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: *st.User}, nil
}

func (p *Pages) UpdateProfile(ctx context.Context, req shopclient.ProfileUpdate) (*ProfileView, error) {
	user, err := p.session.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: *user}, nil
}
