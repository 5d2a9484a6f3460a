package shopclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/testutil/fakeapi"
	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

func setup(t *testing.T) (*fakeapi.Server, *shopclient.Client) {
	t.Helper()
	api := fakeapi.New()
	srv := api.Start(t)
	return api, shopclient.NewClient(srv.URL, time.Second)
}

func TestLoginAndMe(t *testing.T) {
	t.Parallel()
	api, c := setup(t)
	api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	ctx := context.Background()

	_, err := c.Login(ctx, "ann@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", shopclient.Message(err, "Login failed"))
	assert.Equal(t, http.StatusBadRequest, shopclient.StatusCode(err))

	res, err := c.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, "Ann", res.User.Name)

	c.SetToken(res.Token)
	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, me.ID)
	assert.Equal(t, models.RoleUser, me.Role)
}

func TestUnauthorizedHook(t *testing.T) {
	t.Parallel()
	api, c := setup(t)
	_, token := api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	ctx := context.Background()

	calls := 0
	c.OnUnauthorized(func(context.Context) { calls++ })

	// no token: a 401 is a plain failure, not a session rejection
	_, err := c.Cart(ctx)
	require.ErrorIs(t, err, shopclient.ErrUnauthorized)
	assert.Zero(t, calls)

	c.SetToken(token)
	api.Revoke(token)
	_, err = c.Cart(ctx)
	require.ErrorIs(t, err, shopclient.ErrUnauthorized)
	assert.Equal(t, 1, calls)
}

func TestCartRoundTrip(t *testing.T) {
	t.Parallel()
	api, c := setup(t)
	_, token := api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	p := api.AddProduct(models.Product{Name: "Kettle", Price: decimal.RequireFromString("19.99"), Stock: 3, Category: "kitchen"})
	c.SetToken(token)
	ctx := context.Background()

	cart, err := c.AddToCart(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, decimal.RequireFromString("39.98").Equal(cart.Total))
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "Kettle", cart.Items[0].Product.Name)

	_, err = c.AddToCart(ctx, p.ID, 5)
	assert.Equal(t, "Insufficient stock", shopclient.Message(err, ""))

	cart, err = c.UpdateCartItem(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	got, err := c.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, cart.Items[0].Quantity, got.Items[0].Quantity)

	cart, err = c.RemoveFromCart(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	require.NoError(t, c.ClearCart(ctx))
}

func TestProductsQuery(t *testing.T) {
	t.Parallel()
	api, c := setup(t)
	for _, name := range []string{"Red Mug", "Blue Mug", "Green Plate"} {
		api.AddProduct(models.Product{Name: name, Price: decimal.NewFromInt(5), Stock: 1, Category: "kitchen"})
	}
	api.AddProduct(models.Product{Name: "Lamp", Price: decimal.NewFromInt(30), Stock: 1, Category: "home"})
	ctx := context.Background()

	list, err := c.Products(ctx, shopclient.ProductQuery{Category: "kitchen", Search: "mug", Limit: 1})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, 2, list.Pagination.Total)
	assert.True(t, list.Pagination.HasNext)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Category{{Name: "home", Count: 1}, {Name: "kitchen", Count: 3}}, cats)

	_, err = c.Product(ctx, "missing")
	assert.Equal(t, http.StatusNotFound, shopclient.StatusCode(err))
}

func TestAdminProductLifecycle(t *testing.T) {
	t.Parallel()
	api, c := setup(t)
	_, token := api.AddUser("Root", "root@example.com", "secret1", models.RoleAdmin)
	c.SetToken(token)
	ctx := context.Background()

	created, err := c.CreateProduct(ctx, shopclient.ProductInput{Name: "Desk", Price: decimal.NewFromInt(120), Stock: 4, Category: "office"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	updated, err := c.UpdateProduct(ctx, created.ID, shopclient.ProductInput{Name: "Standing desk", Price: decimal.NewFromInt(150), Stock: 2, Category: "office"})
	require.NoError(t, err)
	assert.Equal(t, "Standing desk", updated.Name)

	require.NoError(t, c.DeleteProduct(ctx, created.ID))
	_, ok := api.Product(created.ID)
	assert.False(t, ok)
}

func TestOrdersFlow(t *testing.T) {
	t.Parallel()
	api, c := setup(t)
	_, userToken := api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	_, adminToken := api.AddUser("Root", "root@example.com", "secret1", models.RoleAdmin)
	agent, agentToken := api.AddUser("Dan", "dan@example.com", "secret1", models.RoleDelivery)
	p := api.AddProduct(models.Product{Name: "Kettle", Price: decimal.NewFromInt(20), Stock: 5})
	ctx := context.Background()

	c.SetToken(userToken)
	order, err := c.CreateOrder(ctx, shopclient.CreateOrderRequest{
		Items:           []shopclient.OrderLine{{ProductID: p.ID, Quantity: 2}},
		ShippingAddress: models.Address{Street: "1 Main St", City: "Springfield"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, decimal.NewFromInt(40).Equal(order.Total))

	mine, err := c.Orders(ctx, shopclient.OrderQuery{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, mine.Orders, 1)

	c.SetToken(adminToken)
	agents, err := c.DeliveryAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.NoError(t, c.AssignOrder(ctx, order.ID, agent.ID))

	c.SetToken(agentToken)
	assigned, err := c.DeliveryOrders(ctx, shopclient.OrderQuery{})
	require.NoError(t, err)
	require.Len(t, assigned.Orders, 1)
	require.NoError(t, c.UpdateOrderStatus(ctx, order.ID, models.StatusShipped))

	got, _ := api.Order(order.ID)
	assert.Equal(t, models.StatusShipped, got.Status)
}

func TestTimeout(t *testing.T) {
	t.Parallel()
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	c := shopclient.NewClient(slow.URL, 50*time.Millisecond)
	_, err := c.Categories(context.Background())
	require.Error(t, err)
	assert.Zero(t, shopclient.StatusCode(err))
}

func TestMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", shopclient.Message(nil, "x"))
	assert.Equal(t, "Please login to add items to cart",
		shopclient.Message(shopclient.Reject(nil, "Please login to add items to cart"), "x"))
	assert.Equal(t, "fallback", shopclient.Message(context.DeadlineExceeded, "fallback"))
}
