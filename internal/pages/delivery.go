package pages

import (
	"context"

	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

type DeliveryFilter struct {
	Status string
	Page   int
}

type DeliveryRow struct {
	models.Order
	Next models.OrderStatus `json:"nextStatus,omitempty"`
}

// DeliveryCounts are taken over the orders of the loaded page.
type DeliveryCounts struct {
	Assigned       int `json:"assigned"`
	Shipped        int `json:"shipped"`
	DeliveredToday int `json:"deliveredToday"`
}

type DeliveryView struct {
	Orders     []DeliveryRow      `json:"orders"`
	Pagination models.Pagination  `json:"pagination"`
	Counts     DeliveryCounts     `json:"counts"`
	Status     models.OrderStatus `json:"status,omitempty"`
}

func (p *Pages) Delivery(ctx context.Context, f DeliveryFilter) (*DeliveryView, error) {
	if _, err := p.require(models.RoleDelivery); err != nil {
		return nil, err
	}
	status, err := parseStatusFilter(f.Status)
	if err != nil {
		return nil, err
	}
	list, err := p.api.DeliveryOrders(ctx, shopclient.OrderQuery{Page: max(f.Page, 1), Limit: DeliveryPageSize, Status: status})
	if err != nil {
		return nil, failure(err, "Failed to load assigned orders")
	}

	v := &DeliveryView{Orders: make([]DeliveryRow, 0, len(list.Orders)), Pagination: list.Pagination, Status: status}
	y, m, d := p.now().Date()
	for _, o := range list.Orders {
		row := DeliveryRow{Order: o}
		if next, ok := models.NextDeliveryStatus(o.Status); ok {
			row.Next = next
		}
		v.Orders = append(v.Orders, row)

		switch o.Status {
		case models.StatusAssigned:
			v.Counts.Assigned++
		case models.StatusShipped:
			v.Counts.Shipped++
		case models.StatusDelivered:
			if o.DeliveryDate != nil {
				dy, dm, dd := o.DeliveryDate.In(p.now().Location()).Date()
				if dy == y && dm == m && dd == d {
					v.Counts.DeliveredToday++
				}
			}
		}
	}
	return v, nil
}

const advanceScanLimit = 50

// Advance moves an assigned order one step along Assigned, Shipped,
// Delivered and returns the status requested.
func (p *Pages) Advance(ctx context.Context, orderID string) (models.OrderStatus, error) {
	if _, err := p.require(models.RoleDelivery); err != nil {
		return "", err
	}
	order, err := p.findAssigned(ctx, orderID)
	if err != nil {
		return "", err
	}
	next, ok := models.NextDeliveryStatus(order.Status)
	if !ok {
		return "", shopclient.Reject(ErrValidation, "Order in status %s cannot be advanced", order.Status)
	}
	if err := p.api.UpdateOrderStatus(ctx, orderID, next); err != nil {
		return "", failure(err, "Error updating order status")
	}
	return next, nil
}

func (p *Pages) findAssigned(ctx context.Context, orderID string) (*models.Order, error) {
	for page := 1; ; page++ {
		list, err := p.api.DeliveryOrders(ctx, shopclient.OrderQuery{Page: page, Limit: advanceScanLimit})
		if err != nil {
			return nil, failure(err, "Failed to load assigned orders")
		}
		for i := range list.Orders {
			if list.Orders[i].ID == orderID {
				return &list.Orders[i], nil
			}
		}
		if !list.Pagination.HasNext {
			return nil, shopclient.Reject(ErrValidation, "Order %s is not assigned to you", orderID)
		}
	}
}
