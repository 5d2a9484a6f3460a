package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// backend speaks plain JSON numbers for money
	decimal.MarshalJSONWithoutQuotes = true
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

type User struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Phone     string     `json:"phone,omitempty"`
	Address   *Address   `json:"address,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Merge returns u with every non-empty field of patch applied on top.
func (u User) Merge(patch User) User {
	if patch.ID != "" {
		u.ID = patch.ID
	}
	if patch.Name != "" {
		u.Name = patch.Name
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.Role != "" {
		u.Role = patch.Role
	}
	if patch.Phone != "" {
		u.Phone = patch.Phone
	}
	if patch.Address != nil {
		addr := *patch.Address
		u.Address = &addr
	}
	if patch.CreatedAt != nil {
		u.CreatedAt = patch.CreatedAt
	}
	return u
}

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand,omitempty"`
	Features    []string        `json:"features,omitempty"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

type Category struct {
	Name  string `json:"_id"`
	Count int    `json:"count"`
}

type CartItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *Product        `json:"product"`
}

// UnitPrice prefers the live product snapshot over the price stored on the line.
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.Product != nil {
		return i.Product.Price
	}
	return i.Price
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type OrderItem struct {
	ProductID string          `json:"productId"`
	Product   *Product        `json:"product,omitempty"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Customer struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type DeliveryAgent struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Order struct {
	ID                  string          `json:"_id"`
	User                *Customer       `json:"user,omitempty"`
	Items               []OrderItem     `json:"items"`
	Total               decimal.Decimal `json:"total"`
	Status              OrderStatus     `json:"status"`
	ShippingAddress     Address         `json:"shippingAddress"`
	Notes               string          `json:"notes,omitempty"`
	AssignedDeliveryBoy *DeliveryAgent  `json:"assignedDeliveryBoy,omitempty"`
	OrderDate           time.Time       `json:"orderDate"`
	DeliveryDate        *time.Time      `json:"deliveryDate,omitempty"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Total       int  `json:"total"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}
