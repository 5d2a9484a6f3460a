package fakeapi

import (
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

func pageParams(c echo.Context) (page, size int) {
	return util.ParsePage(c.QueryParam("page")), util.ParseIntDefault(c.QueryParam("limit"), 0)
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.Email == req.Email && acc.password == req.Password {
			token := uuid.NewString()
			s.tokens[token] = acc.user.ID
			return c.JSON(http.StatusOK, shopclient.AuthResponse{Token: token, User: acc.user})
		}
	}
	return fail(c, http.StatusBadRequest, "Invalid credentials")
}

func (s *Server) register(c echo.Context) error {
	var req shopclient.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		return fail(c, http.StatusBadRequest, "Name, email and a password of at least 6 characters are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.user.Email == req.Email {
			return fail(c, http.StatusBadRequest, "User already exists")
		}
	}
	u := models.User{ID: s.nextID("user"), Name: req.Name, Email: req.Email, Role: models.RoleUser, Phone: req.Phone, Address: req.Address}
	s.accounts[u.ID] = &account{user: u, password: req.Password}
	token := uuid.NewString()
	s.tokens[token] = u.ID
	return c.JSON(http.StatusCreated, shopclient.AuthResponse{Token: token, User: u})
}

func (s *Server) me(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[c.Get(ctxUser).(string)]
	return c.JSON(http.StatusOK, echo.Map{"user": acc.user})
}

func (s *Server) updateProfile(c echo.Context) error {
	var req shopclient.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[c.Get(ctxUser).(string)]
	acc.user = acc.user.Merge(models.User{Name: req.Name, Phone: req.Phone, Address: req.Address})
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated", "user": acc.user})
}

func (s *Server) filterProducts(c echo.Context, includeInactive bool) []models.Product {
	category := c.QueryParam("category")
	search := strings.ToLower(c.QueryParam("search"))

	out := []models.Product{}
	for _, id := range s.order {
		p, ok := s.products[id]
		if !ok {
			continue
		}
		if !includeInactive && p.IsActive != nil && !*p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), search) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func (s *Server) listProducts(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.filterProducts(c, false)
	page, size := pageParams(c)
	from, to, meta := paginate(len(all), page, size, 12)
	return c.JSON(http.StatusOK, shopclient.ProductList{Products: all[from:to], Pagination: meta})
}

func (s *Server) adminProducts(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.filterProducts(c, true)
	page, size := pageParams(c)
	from, to, meta := paginate(len(all), page, size, 20)
	return c.JSON(http.StatusOK, shopclient.ProductList{Products: all[from:to], Pagination: meta})
}

func (s *Server) categories(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{}
	for _, p := range s.products {
		counts[p.Category]++
	}
	out := make([]models.Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.Category{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getProduct(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c echo.Context) error {
	var in shopclient.ProductInput
	if err := c.Bind(&in); err != nil || in.Name == "" || in.Price.IsNegative() || in.Stock < 0 {
		return fail(c, http.StatusBadRequest, "Invalid product")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	active := true
	p := &models.Product{
		ID: s.nextID("prod"), Name: in.Name, Description: in.Description, Price: in.Price,
		Image: in.Image, Stock: in.Stock, Category: in.Category, Brand: in.Brand,
		Features: in.Features, IsActive: &active,
	}
	s.products[p.ID] = p
	s.order = append(s.order, p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) updateProduct(c echo.Context) error {
	var in shopclient.ProductInput
	if err := c.Bind(&in); err != nil || in.Name == "" || in.Price.IsNegative() || in.Stock < 0 {
		return fail(c, http.StatusBadRequest, "Invalid product")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[c.Param("id")]
	if !ok {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	p.Name, p.Description, p.Price = in.Name, in.Description, in.Price
	p.Image, p.Stock, p.Category = in.Image, in.Stock, in.Category
	p.Brand, p.Features = in.Brand, in.Features
	return c.JSON(http.StatusOK, echo.Map{"message": "Product updated", "product": p})
}

func (s *Server) deleteProduct(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if _, ok := s.products[id]; !ok {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted"})
}

func (s *Server) getCart(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.cartLocked(c.Get(ctxUser).(string)))
}

type cartLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) addToCart(c echo.Context) error {
	var req cartLineRequest
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if req.Quantity < 1 {
		return fail(c, http.StatusBadRequest, "Quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID := c.Get(ctxUser).(string)
	p, ok := s.products[req.ProductID]
	if !ok {
		return fail(c, http.StatusNotFound, "Product not found")
	}

	lines := s.carts[userID]
	idx := slices.IndexFunc(lines, func(l line) bool { return l.productID == req.ProductID })
	qty := req.Quantity
	if idx >= 0 {
		qty += lines[idx].quantity
	}
	if qty > p.Stock {
		return fail(c, http.StatusBadRequest, "Insufficient stock")
	}
	if idx >= 0 {
		lines[idx].quantity = qty
	} else {
		lines = append(lines, line{productID: req.ProductID, quantity: qty})
	}
	s.carts[userID] = lines
	return c.JSON(http.StatusOK, echo.Map{"message": "Item added to cart", "cart": s.cartLocked(userID)})
}

func (s *Server) updateCart(c echo.Context) error {
	var req cartLineRequest
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if req.Quantity < 1 {
		return fail(c, http.StatusBadRequest, "Quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID := c.Get(ctxUser).(string)
	lines := s.carts[userID]
	idx := slices.IndexFunc(lines, func(l line) bool { return l.productID == req.ProductID })
	if idx < 0 {
		return fail(c, http.StatusNotFound, "Item not found in cart")
	}
	if p, ok := s.products[req.ProductID]; ok && req.Quantity > p.Stock {
		return fail(c, http.StatusBadRequest, "Insufficient stock")
	}
	lines[idx].quantity = req.Quantity
	return c.JSON(http.StatusOK, echo.Map{"message": "Cart updated", "cart": s.cartLocked(userID)})
}

func (s *Server) removeFromCart(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := c.Get(ctxUser).(string)
	productID := c.Param("productId")
	lines := s.carts[userID]
	if !slices.ContainsFunc(lines, func(l line) bool { return l.productID == productID }) {
		return fail(c, http.StatusNotFound, "Item not found in cart")
	}
	s.carts[userID] = slices.DeleteFunc(lines, func(l line) bool { return l.productID == productID })
	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed from cart", "cart": s.cartLocked(userID)})
}

func (s *Server) clearCart(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := c.Get(ctxUser).(string)
	delete(s.carts, userID)
	return c.JSON(http.StatusOK, echo.Map{"message": "Cart cleared", "cart": s.cartLocked(userID)})
}

func (s *Server) createOrder(c echo.Context) error {
	var req shopclient.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	if len(req.Items) == 0 {
		return fail(c, http.StatusBadRequest, "Order must contain at least one item")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, l := range req.Items {
		p, ok := s.products[l.ProductID]
		if !ok {
			return fail(c, http.StatusNotFound, "Product not found")
		}
		if l.Quantity < 1 || l.Quantity > p.Stock {
			return fail(c, http.StatusBadRequest, "Insufficient stock for "+p.Name)
		}
		items = append(items, models.OrderItem{ProductID: p.ID, Name: p.Name, Quantity: l.Quantity, Price: p.Price})
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	for _, l := range req.Items {
		s.products[l.ProductID].Stock -= l.Quantity
	}

	acc := s.accounts[c.Get(ctxUser).(string)]
	o := &models.Order{
		ID:              s.nextID("order"),
		User:            &models.Customer{ID: acc.user.ID, Name: acc.user.Name, Email: acc.user.Email, Phone: acc.user.Phone},
		Items:           items,
		Total:           total,
		Status:          models.StatusPending,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		OrderDate:       time.Now().UTC(),
	}
	s.orders = append(s.orders, o)
	return c.JSON(http.StatusCreated, echo.Map{"message": "Order placed", "order": o})
}

func (s *Server) pageOrders(c echo.Context, keep func(*models.Order) bool, defLimit int) error {
	status := c.QueryParam("status")
	if status != "" && !models.OrderStatus(status).Valid() {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i]
		if status != "" && string(o.Status) != status {
			continue
		}
		if keep(o) {
			out = append(out, *o)
		}
	}
	page, size := pageParams(c)
	from, to, meta := paginate(len(out), page, size, defLimit)
	return c.JSON(http.StatusOK, shopclient.OrderList{Orders: out[from:to], Pagination: meta})
}

func (s *Server) listOrders(c echo.Context) error {
	userID := c.Get(ctxUser).(string)
	return s.pageOrders(c, func(o *models.Order) bool {
		return o.User != nil && o.User.ID == userID
	}, 10)
}

func (s *Server) adminOrders(c echo.Context) error {
	agent := c.QueryParam("deliveryBoy")
	return s.pageOrders(c, func(o *models.Order) bool {
		return agent == "" || (o.AssignedDeliveryBoy != nil && o.AssignedDeliveryBoy.ID == agent)
	}, 20)
}

func (s *Server) deliveryOrders(c echo.Context) error {
	userID := c.Get(ctxUser).(string)
	return s.pageOrders(c, func(o *models.Order) bool {
		return o.AssignedDeliveryBoy != nil && o.AssignedDeliveryBoy.ID == userID
	}, 10)
}

func (s *Server) deliveryAgents(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.DeliveryAgent{}
	for _, acc := range s.accounts {
		if acc.user.Role == models.RoleDelivery {
			out = append(out, models.DeliveryAgent{ID: acc.user.ID, Name: acc.user.Name, Email: acc.user.Email, Phone: acc.user.Phone})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) findOrderLocked(id string) *models.Order {
	for _, o := range s.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (s *Server) assignOrder(c echo.Context) error {
	var req struct {
		DeliveryBoyID string `json:"deliveryBoyId"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.findOrderLocked(c.Param("id"))
	if o == nil {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	acc, ok := s.accounts[req.DeliveryBoyID]
	if !ok || acc.user.Role != models.RoleDelivery {
		return fail(c, http.StatusBadRequest, "Invalid delivery boy")
	}
	if o.Status != models.StatusPending {
		return fail(c, http.StatusBadRequest, "Only pending orders can be assigned")
	}
	o.AssignedDeliveryBoy = &models.DeliveryAgent{ID: acc.user.ID, Name: acc.user.Name, Phone: acc.user.Phone}
	o.Status = models.StatusAssigned
	return c.JSON(http.StatusOK, echo.Map{"message": "Order assigned", "order": o})
}

func (s *Server) updateOrderStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request")
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.findOrderLocked(c.Param("id"))
	if o == nil {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	caller := s.accounts[c.Get(ctxUser).(string)]
	if caller.user.Role == models.RoleDelivery {
		if o.AssignedDeliveryBoy == nil || o.AssignedDeliveryBoy.ID != caller.user.ID {
			return fail(c, http.StatusForbidden, "Access denied")
		}
		if next, ok := models.NextDeliveryStatus(o.Status); !ok || next != status {
			return fail(c, http.StatusBadRequest, "Invalid status transition")
		}
	}
	o.Status = status
	if status == models.StatusDelivered {
		now := time.Now().UTC()
		o.DeliveryDate = &now
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Order status updated", "order": o})
}
