package shopclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/pkg/models"
)

type ProductQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

type ProductList struct {
	Products   []models.Product  `json:"products"`
	Pagination models.Pagination `json:"pagination"`
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Features    []string        `json:"features"`
}

func (c *Client) Products(ctx context.Context, q ProductQuery) (*ProductList, error) {
	var res ProductList
	if err := c.do(ctx, http.MethodGet, PathProducts, q.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AdminProducts(ctx context.Context, q ProductQuery) (*ProductList, error) {
	var res ProductList
	if err := c.do(ctx, http.MethodGet, PathAdminProducts, q.values(), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var res []models.Category
	if err := c.do(ctx, http.MethodGet, PathProductCategories, nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	var res models.Product
	if err := c.do(ctx, http.MethodGet, PathProduct(id), nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, PathProducts, nil, in, &raw); err != nil {
		return nil, err
	}
	return decodeProduct(raw)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, PathProduct(id), nil, in, &raw); err != nil {
		return nil, err
	}
	return decodeProduct(raw)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, PathProduct(id), nil, nil, nil)
}

// decodeProduct accepts both a bare product and {"product": {...}}.
func decodeProduct(raw json.RawMessage) (*models.Product, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var env struct {
		Product *models.Product `json:"product"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Product != nil {
		return env.Product, nil
	}
	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
