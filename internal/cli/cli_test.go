package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/testutil/fakeapi"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/pkg/models"
)

type harness struct {
	api    *fakeapi.Server
	url    string
	tokens tokenstore.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := fakeapi.New()
	srv := api.Start(t)
	return &harness{api: api, url: srv.URL, tokens: tokenstore.NewMemoryStore()}
}

func (h *harness) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--api", h.url, "--profile", "test"}, args...)
	code := Run(context.Background(), full, Options{Out: &out, Err: &errOut, Tokens: h.tokens})
	return code, out.String(), errOut.String()
}

func (h *harness) login(t *testing.T, email string) {
	t.Helper()
	code, _, errOut := h.run(t, "login", "--email", email, "--password", "secret1")
	require.Equal(t, 0, code, errOut)
}

func TestLoginPersistsAcrossRuns(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)

	code, out, _ := h.run(t, "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Not logged in")

	h.login(t, "ann@example.com")

	code, out, _ = h.run(t, "whoami")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "ann@example.com")

	code, _, _ = h.run(t, "logout")
	require.Equal(t, 0, code)
	_, out, _ = h.run(t, "whoami")
	assert.Contains(t, out, "Not logged in")
}

func TestLoginPersistsInTokenDB(t *testing.T) {
	t.Parallel()
	api := fakeapi.New()
	srv := api.Start(t)
	api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	dbPath := filepath.Join(t.TempDir(), "shopctl", "tokens.db")

	run := func(args ...string) (int, string, string) {
		var out, errOut bytes.Buffer
		full := append([]string{"--api", srv.URL, "--token-db", dbPath}, args...)
		code := Run(context.Background(), full, Options{Out: &out, Err: &errOut})
		return code, out.String(), errOut.String()
	}

	code, _, errOut := run("login", "--email", "ann@example.com", "--password", "secret1")
	require.Equal(t, 0, code, errOut)
	code, out, errOut := run("whoami", "-o", "json")
	require.Equal(t, 0, code, errOut)

	var u models.User
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	assert.Equal(t, "Ann", u.Name)
}

func TestErrorsPrintUserMessage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)

	code, _, errOut := h.run(t, "login", "--email", "ann@example.com", "--password", "wrong")
	assert.Equal(t, 1, code)
	assert.Equal(t, "error: Invalid credentials\n", errOut)

	code, _, errOut = h.run(t, "cart", "add", "prod-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Please login to add items to cart")

	code, _, errOut = h.run(t, "-o", "yaml", "whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `unknown output format "yaml"`)
}

func TestCartCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	p := h.api.AddProduct(models.Product{Name: "Mug", Price: decimal.RequireFromString("4.25"), Stock: 3, Category: "Kitchen"})
	h.login(t, "ann@example.com")

	code, out, errOut := h.run(t, "-o", "json", "cart", "add", p.ID, "2")
	require.Equal(t, 0, code, errOut)
	var view struct {
		ItemCount int             `json:"itemCount"`
		Total     decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 2, view.ItemCount)
	assert.True(t, decimal.RequireFromString("8.5").Equal(view.Total))

	code, _, errOut = h.run(t, "cart", "set", p.ID, "5")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Only 3 items available in stock")

	code, out, _ = h.run(t, "cart", "set", p.ID, "0")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Your cart is empty")
	assert.Empty(t, h.api.CartLines("user-1"))
}

func TestCheckout(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.AddUser("Ann", "ann@example.com", "secret1", models.RoleUser)
	p := h.api.AddProduct(models.Product{Name: "Mug", Price: decimal.NewFromInt(5), Stock: 3, Category: "Kitchen"})
	h.login(t, "ann@example.com")

	code, _, errOut := h.run(t, "checkout")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Your cart is empty")

	code, _, errOut = h.run(t, "cart", "add", p.ID)
	require.Equal(t, 0, code, errOut)

	code, _, errOut = h.run(t, "checkout", "--street", "1 Main")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Shipping address is incomplete")

	code, out, errOut := h.run(t, "checkout", "--street", "1 Main", "--city", "Springfield", "--state", "IL", "--zip", "62701", "--country", "US")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Pending")

	code, out, _ = h.run(t, "orders", "--status", "Pending")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "order-")

	code, _, errOut = h.run(t, "orders", "--status", "Lost")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `Unknown order status "Lost"`)
}

func TestAdminAndDeliveryCommands(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.AddUser("Root", "root@example.com", "secret1", models.RoleAdmin)
	agent, _ := h.api.AddUser("Dan", "dan@example.com", "secret1", models.RoleDelivery)
	order := h.api.AddOrder(models.Order{Status: models.StatusPending, Total: decimal.NewFromInt(10)})

	h.login(t, "root@example.com")
	code, out, errOut := h.run(t, "-o", "json", "admin", "create-product", "--name", "Lamp", "--price", "19.99", "--stock", "4", "--category", "Home")
	require.Equal(t, 0, code, errOut)
	var created models.Product
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Lamp", created.Name)

	code, _, errOut = h.run(t, "admin", "create-product", "--name", "Lamp", "--price", "cheap", "--category", "Home")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "price must be a number")

	code, _, errOut = h.run(t, "admin", "assign", order.ID, agent.ID)
	require.Equal(t, 0, code, errOut)

	code, _, errOut = h.run(t, "cart", "add", created.ID)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Only customers can use the cart")
	assert.Zero(t, h.api.RequestCount("POST /api/cart/add"))

	code, _, errOut = h.run(t, "delivery", "orders")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "You don't have access to this page")

	h.login(t, "dan@example.com")
	code, out, errOut = h.run(t, "delivery", "advance", order.ID)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Shipped")

	stored, ok := h.api.Order(order.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusShipped, stored.Status)
}

func TestMergeAddress(t *testing.T) {
	t.Parallel()
	base := models.Address{Street: "1 Main", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"}

	tests := []struct {
		name     string
		override models.Address
		want     models.Address
	}{
		{"empty override keeps base", models.Address{}, base},
		{"override one field", models.Address{City: "Chicago"}, models.Address{Street: "1 Main", City: "Chicago", State: "IL", ZipCode: "62701", Country: "US"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mergeAddress(base, tt.override))
		})
	}
}
