package shopclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/storefront/pkg/models"
)

type cartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartEnvelope struct {
	Cart models.Cart `json:"cart"`
}

func (c *Client) Cart(ctx context.Context) (*models.Cart, error) {
	var res models.Cart
	if err := c.do(ctx, http.MethodGet, PathCart, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (*models.Cart, error) {
	var res cartEnvelope
	if err := c.do(ctx, http.MethodPost, PathCartAdd, nil, cartLine{ProductID: productID, Quantity: quantity}, &res); err != nil {
		return nil, err
	}
	return &res.Cart, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*models.Cart, error) {
	var res cartEnvelope
	if err := c.do(ctx, http.MethodPut, PathCartUpdate, nil, cartLine{ProductID: productID, Quantity: quantity}, &res); err != nil {
		return nil, err
	}
	return &res.Cart, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) (*models.Cart, error) {
	var res cartEnvelope
	if err := c.do(ctx, http.MethodDelete, PathCartRemove(productID), nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.Cart, nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, PathCartClear, nil, nil, nil)
}
