// Package fakeapi is an in-memory stand-in for the shop REST backend. Tests
// run it behind httptest to drive the client stack end to end.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/models"
)

type account struct {
	user     models.User
	password string
}

type line struct {
	productID string
	quantity  int
}

type failure struct {
	status  int
	message string
}

type Server struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*account
	tokens   map[string]string
	products map[string]*models.Product
	order    []string
	carts    map[string][]line
	orders   []*models.Order
	failures map[string]failure
	requests []string

	echo *echo.Echo
}

func New() *Server {
	s := &Server{
		accounts: map[string]*account{},
		tokens:   map[string]string{},
		products: map[string]*models.Product{},
		carts:    map[string][]line{},
		failures: map[string]failure{},
	}
	s.echo = s.routes()
	return s
}

// Start serves s on a local listener for the lifetime of t.
func (s *Server) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(s.echo)
	t.Cleanup(srv.Close)
	return srv
}

func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// AddUser creates an account and returns a bearer token valid for it.
func (s *Server) AddUser(name, email, password string, role models.Role) (models.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := models.User{ID: s.nextID("user"), Name: name, Email: email, Role: role}
	s.accounts[u.ID] = &account{user: u, password: password}
	token := uuid.NewString()
	s.tokens[token] = u.ID
	return u, token
}

func (s *Server) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextID("prod")
	}
	stored := p
	s.products[p.ID] = &stored
	s.order = append(s.order, p.ID)
	return p
}

func (s *Server) SetCart(userID string, items map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]line, 0, len(items))
	for _, id := range s.order {
		if q, ok := items[id]; ok {
			lines = append(lines, line{productID: id, quantity: q})
		}
	}
	s.carts[userID] = lines
}

func (s *Server) AddOrder(o models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = s.nextID("order")
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	stored := o
	s.orders = append(s.orders, &stored)
	return o
}

func (s *Server) Order(id string) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			return *o, true
		}
	}
	return models.Order{}, false
}

func (s *Server) Product(id string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, false
	}
	return *p, true
}

func (s *Server) CartLines(userID string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]int{}
	for _, l := range s.carts[userID] {
		out[l.productID] = l.quantity
	}
	return out
}

// Revoke makes token answer 401 from now on.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// FailNext makes the next request matching "METHOD /path" fail.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	s.failures[route] = failure{status: status, message: message}
	s.mu.Unlock()
}

// Requests lists every request seen as "METHOD /path".
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

func (s *Server) RequestCount(route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == route {
			n++
		}
	}
	return n
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Request().Method + " " + c.Request().URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, route)
		f, failing := s.failures[route]
		delete(s.failures, route)
		s.mu.Unlock()

		if failing {
			return fail(c, f.status, f.message)
		}
		return next(c)
	}
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"message": message})
}

const ctxUser = "user_id"

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fail(c, http.StatusUnauthorized, "No token, authorization denied")
		}
		s.mu.Lock()
		userID, found := s.tokens[token]
		s.mu.Unlock()
		if !found {
			return fail(c, http.StatusUnauthorized, "Token is not valid")
		}
		c.Set(ctxUser, userID)
		return next(c)
	}
}

func (s *Server) requireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s.mu.Lock()
			acc := s.accounts[c.Get(ctxUser).(string)]
			s.mu.Unlock()
			if acc == nil || !slices.Contains(roles, acc.user.Role) {
				return fail(c, http.StatusForbidden, "Access denied")
			}
			return next(c)
		}
	}
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(s.record)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/register", s.register)
	auth.GET("/me", s.me, s.requireAuth)
	auth.PUT("/profile", s.updateProfile, s.requireAuth)

	products := api.Group("/products")
	products.GET("", s.listProducts)
	products.GET("/categories", s.categories)
	products.GET("/admin/all", s.adminProducts, s.requireAuth, s.requireRole(models.RoleAdmin))
	products.GET("/:id", s.getProduct)
	products.POST("", s.createProduct, s.requireAuth, s.requireRole(models.RoleAdmin))
	products.PUT("/:id", s.updateProduct, s.requireAuth, s.requireRole(models.RoleAdmin))
	products.DELETE("/:id", s.deleteProduct, s.requireAuth, s.requireRole(models.RoleAdmin))

	cart := api.Group("/cart", s.requireAuth)
	cart.GET("", s.getCart)
	cart.POST("/add", s.addToCart)
	cart.PUT("/update", s.updateCart)
	cart.DELETE("/remove/:productId", s.removeFromCart)
	cart.DELETE("/clear", s.clearCart)

	orders := api.Group("/orders", s.requireAuth)
	orders.POST("", s.createOrder, s.requireRole(models.RoleUser))
	orders.GET("", s.listOrders)
	orders.GET("/admin/all", s.adminOrders, s.requireRole(models.RoleAdmin))
	orders.GET("/delivery/assigned", s.deliveryOrders, s.requireRole(models.RoleDelivery))
	orders.GET("/delivery/boys", s.deliveryAgents, s.requireRole(models.RoleAdmin))
	orders.PUT("/:id/assign", s.assignOrder, s.requireRole(models.RoleAdmin))
	orders.PUT("/:id/status", s.updateOrderStatus, s.requireRole(models.RoleAdmin, models.RoleDelivery))

	return e
}

func paginate(total, page, size, def int) (from, to int, meta models.Pagination) {
	page = max(page, 1)
	from, limit := util.Calculate(page, size, def)
	pages := (total + limit - 1) / limit
	from = min(from, total)
	to = min(from+limit, total)
	return from, to, models.Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		Total:       total,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}

func (s *Server) cartLocked(userID string) models.Cart {
	items := make([]models.CartItem, 0, len(s.carts[userID]))
	total := decimal.Zero
	for _, l := range s.carts[userID] {
		item := models.CartItem{ProductID: l.productID, Quantity: l.quantity}
		if p, ok := s.products[l.productID]; ok {
			snap := *p
			item.Product = &snap
			item.Price = p.Price
		}
		total = total.Add(item.LineTotal())
		items = append(items, item)
	}
	return models.Cart{Items: items, Total: total}
}
