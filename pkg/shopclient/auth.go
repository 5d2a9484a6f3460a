package shopclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/storefront/pkg/models"
)

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Phone    string          `json:"phone,omitempty"`
	Address  *models.Address `json:"address,omitempty"`
}

type ProfileUpdate struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Address *models.Address `json:"address,omitempty"`
}

type userEnvelope struct {
	User models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, PathLogin, nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var res AuthResponse
	if err := c.do(ctx, http.MethodPost, PathRegister, nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var res userEnvelope
	if err := c.do(ctx, http.MethodGet, PathMe, nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdate) (*models.User, error) {
	var res userEnvelope
	if err := c.do(ctx, http.MethodPut, PathProfile, nil, req, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}
