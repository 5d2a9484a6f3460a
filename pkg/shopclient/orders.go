package shopclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Skotchmaster/storefront/pkg/models"
)

type OrderQuery struct {
	Page        int
	Limit       int
	Status      models.OrderStatus
	DeliveryBoy string
}

func (q OrderQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.DeliveryBoy != "" {
		v.Set("deliveryBoy", q.DeliveryBoy)
	}
	return v
}

type OrderList struct {
	Orders     []models.Order    `json:"orders"`
	Pagination models.Pagination `json:"pagination"`
}

type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []OrderLine    `json:"items"`
	ShippingAddress models.Address `json:"shippingAddress"`
	Notes           string         `json:"notes"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	var res struct {
		Order models.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, PathOrders, nil, req, &res); err != nil {
		return nil, err
	}
	return &res.Order, nil
}

func (c *Client) Orders(ctx context.Context, q OrderQuery) (*OrderList, error) {
	return c.listOrders(ctx, PathOrders, q)
}

func (c *Client) AdminOrders(ctx context.Context, q OrderQuery) (*OrderList, error) {
	return c.listOrders(ctx, PathAdminOrders, q)
}

func (c *Client) DeliveryOrders(ctx context.Context, q OrderQuery) (*OrderList, error) {
	return c.listOrders(ctx, PathDeliveryOrders, q)
}

func (c *Client) listOrders(ctx context.Context, path string, q OrderQuery) (*OrderList, error) {
	var res OrderList
	if err := c.do(ctx, http.MethodGet, path, q.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeliveryAgents(ctx context.Context) ([]models.DeliveryAgent, error) {
	var res []models.DeliveryAgent
	if err := c.do(ctx, http.MethodGet, PathDeliveryBoys, nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) AssignOrder(ctx context.Context, orderID, deliveryBoyID string) error {
	body := map[string]string{"deliveryBoyId": deliveryBoyID}
	return c.do(ctx, http.MethodPut, PathOrderAssign(orderID), nil, body, nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPut, PathOrderStatus(orderID), nil, body, nil)
}
