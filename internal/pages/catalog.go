package pages

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

type HomeView struct {
	Categories []models.Category `json:"categories"`
	Featured   []models.Product  `json:"featured"`
}

func (p *Pages) Home(ctx context.Context) (*HomeView, error) {
	cats, err := p.api.Categories(ctx)
	if err != nil {
		return nil, failure(err, "Failed to load categories")
	}
	list, err := p.api.Products(ctx, shopclient.ProductQuery{Limit: FeaturedLimit})
	if err != nil {
		return nil, failure(err, "Failed to load products")
	}
	return &HomeView{Categories: cats, Featured: list.Products}, nil
}

type CategoryQuery struct {
	Category string
	Search   string
	Page     int
}

type CategoryView struct {
	Category   string            `json:"category"`
	Search     string            `json:"search,omitempty"`
	Products   []models.Product  `json:"products"`
	Pagination models.Pagination `json:"pagination"`
}

func (p *Pages) Category(ctx context.Context, q CategoryQuery) (*CategoryView, error) {
	q.Search = strings.TrimSpace(q.Search)
	list, err := p.api.Products(ctx, shopclient.ProductQuery{
		Category: q.Category,
		Search:   q.Search,
		Page:     max(q.Page, 1),
		Limit:    CategoryPageSize,
	})
	if err != nil {
		return nil, failure(err, "Failed to load products")
	}
	return &CategoryView{Category: q.Category, Search: q.Search, Products: list.Products, Pagination: list.Pagination}, nil
}

type ProductView struct {
	Product models.Product `json:"product"`
	InStock bool           `json:"inStock"`
	InCart  int            `json:"inCart"`
}

func (p *Pages) ProductDetail(ctx context.Context, id string) (*ProductView, error) {
	prod, err := p.api.Product(ctx, id)
	if err != nil {
		return nil, failure(err, "Product not found")
	}
	v := &ProductView{Product: *prod, InStock: prod.Stock > 0}
	if it, ok := p.cart.Item(prod.ID); ok {
		v.InCart = it.Quantity
	}
	return v, nil
}

// AddToCart is the add button of the catalog (quantity 1) and of the
// product page (chosen quantity).
func (p *Pages) AddToCart(ctx context.Context, productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return shopclient.Reject(ErrValidation, "Product is required")
	}
	if err := p.shopperOnly(); err != nil {
		return err
	}
	return p.cart.Add(ctx, productID, quantity)
}
