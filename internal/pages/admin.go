package pages

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

type AdminProductQuery struct {
	Search   string
	Category string
	Page     int
}

type AdminProductsView struct {
	Products   []models.Product  `json:"products"`
	Pagination models.Pagination `json:"pagination"`
	Categories []models.Category `json:"categories"`
	Search     string            `json:"search,omitempty"`
	Category   string            `json:"category,omitempty"`
}

func (p *Pages) AdminProducts(ctx context.Context, q AdminProductQuery) (*AdminProductsView, error) {
	if _, err := p.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	q.Search = strings.TrimSpace(q.Search)
	list, err := p.api.AdminProducts(ctx, shopclient.ProductQuery{
		Search:   q.Search,
		Category: q.Category,
		Page:     max(q.Page, 1),
		Limit:    AdminProductsPageSize,
	})
	if err != nil {
		return nil, failure(err, "Failed to load products")
	}
	cats, err := p.api.Categories(ctx)
	if err != nil {
		return nil, failure(err, "Failed to load categories")
	}
	return &AdminProductsView{
		Products:   list.Products,
		Pagination: list.Pagination,
		Categories: cats,
		Search:     q.Search,
		Category:   q.Category,
	}, nil
}

func validateProduct(in *shopclient.ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Name == "":
		return shopclient.Reject(ErrValidation, "Product name is required")
	case in.Category == "":
		return shopclient.Reject(ErrValidation, "Category is required")
	case in.Price.IsNegative():
		return shopclient.Reject(ErrValidation, "Price cannot be negative")
	case in.Stock < 0:
		return shopclient.Reject(ErrValidation, "Stock cannot be negative")
	}
	features := in.Features[:0]
	for _, f := range in.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	in.Features = features
	return nil
}

// SaveProduct creates the product when id is empty and updates it otherwise.
func (p *Pages) SaveProduct(ctx context.Context, id string, in shopclient.ProductInput) (*models.Product, error) {
	if _, err := p.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateProduct(&in); err != nil {
		return nil, err
	}
	var (
		prod *models.Product
		err  error
	)
	if id == "" {
		prod, err = p.api.CreateProduct(ctx, in)
	} else {
		prod, err = p.api.UpdateProduct(ctx, id, in)
	}
	if err != nil {
		return nil, failure(err, "Error saving product")
	}
	return prod, nil
}

func (p *Pages) DeleteProduct(ctx context.Context, id string) error {
	if _, err := p.require(models.RoleAdmin); err != nil {
		return err
	}
	if err := p.api.DeleteProduct(ctx, id); err != nil {
		return failure(err, "Error deleting product")
	}
	return nil
}

type AdminOrderFilter struct {
	Status      string
	DeliveryBoy string
	Page        int
}

type AdminOrderRow struct {
	models.Order
	CanAssign       bool `json:"canAssign"`
	CanChangeStatus bool `json:"canChangeStatus"`
}

type AdminOrdersView struct {
	Orders      []AdminOrderRow        `json:"orders"`
	Pagination  models.Pagination      `json:"pagination"`
	Agents      []models.DeliveryAgent `json:"deliveryBoys"`
	Status      models.OrderStatus     `json:"status,omitempty"`
	DeliveryBoy string                 `json:"deliveryBoy,omitempty"`
}

func (p *Pages) AdminOrders(ctx context.Context, f AdminOrderFilter) (*AdminOrdersView, error) {
	if _, err := p.require(models.RoleAdmin); err != nil {
		return nil, err
	}
	status, err := parseStatusFilter(f.Status)
	if err != nil {
		return nil, err
	}
	list, err := p.api.AdminOrders(ctx, shopclient.OrderQuery{
		Page:        max(f.Page, 1),
		Limit:       AdminOrdersPageSize,
		Status:      status,
		DeliveryBoy: f.DeliveryBoy,
	})
	if err != nil {
		return nil, failure(err, "Failed to load orders")
	}
	agents, err := p.api.DeliveryAgents(ctx)
	if err != nil {
		return nil, failure(err, "Failed to load delivery boys")
	}

	rows := make([]AdminOrderRow, 0, len(list.Orders))
	for _, o := range list.Orders {
		rows = append(rows, AdminOrderRow{Order: o, CanAssign: o.Assignable(), CanChangeStatus: !o.Status.Terminal()})
	}
	return &AdminOrdersView{
		Orders:      rows,
		Pagination:  list.Pagination,
		Agents:      agents,
		Status:      status,
		DeliveryBoy: f.DeliveryBoy,
	}, nil
}

func (p *Pages) AssignOrder(ctx context.Context, orderID, deliveryBoyID string) error {
	if _, err := p.require(models.RoleAdmin); err != nil {
		return err
	}
	if orderID == "" || deliveryBoyID == "" {
		return shopclient.Reject(ErrValidation, "Order and delivery boy are required")
	}
	if err := p.api.AssignOrder(ctx, orderID, deliveryBoyID); err != nil {
		return failure(err, "Error assigning delivery boy")
	}
	return nil
}

func (p *Pages) SetOrderStatus(ctx context.Context, orderID, status string) error {
	if _, err := p.require(models.RoleAdmin); err != nil {
		return err
	}
	s, err := models.ParseOrderStatus(status)
	if err != nil {
		return shopclient.Reject(ErrValidation, "Unknown order status %q", status)
	}
	if err := p.api.UpdateOrderStatus(ctx, orderID, s); err != nil {
		return failure(err, "Error updating order status")
	}
	return nil
}
