package models

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownStatus = errors.New("unknown order status")

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusAssigned  OrderStatus = "Assigned"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	StatusPending,
	StatusAssigned,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func OrderStatuses() []OrderStatus {
	return slices.Clone(orderStatuses)
}

func (s OrderStatus) Valid() bool {
	return slices.Contains(orderStatuses, s)
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ParseOrderStatus accepts only the exact enum spelling.
func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%q: %w", v, ErrUnknownStatus)
	}
	return s, nil
}

// NextDeliveryStatus is the step a delivery agent may request next.
func NextDeliveryStatus(s OrderStatus) (OrderStatus, bool) {
	switch s {
	case StatusAssigned:
		return StatusShipped, true
	case StatusShipped:
		return StatusDelivered, true
	default:
		return "", false
	}
}

func (o Order) Assignable() bool {
	return o.Status == StatusPending && o.AssignedDeliveryBoy == nil
}

type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleDelivery Role = "deliveryBoy"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleDelivery
}
