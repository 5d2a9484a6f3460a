package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/activity"
	"github.com/Skotchmaster/storefront/internal/pages"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

// render answers with the view, or with the mapped failure.
func render[T any](c echo.Context, view T, err error) error {
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func page(c echo.Context) int { return util.ParsePage(c.QueryParam("page")) }

func (h *Handler) HomePage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.Home(c.Request().Context())
	return render(c, view, err)
}

func (h *Handler) CategoryPage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.Category(c.Request().Context(), pages.CategoryQuery{
		Category: c.Param("category"),
		Search:   c.QueryParam("search"),
		Page:     page(c),
	})
	return render(c, view, err)
}

func (h *Handler) ProductPage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.ProductDetail(c.Request().Context(), c.Param("id"))
	return render(c, view, err)
}

func (h *Handler) CartPage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.Cart(c.Request().Context())
	return render(c, view, err)
}

func (h *Handler) CheckoutPage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.Checkout(c.Request().Context())
	return render(c, view, err)
}

func (h *Handler) OrdersPage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.OrderHistory(c.Request().Context(), pages.OrderFilter{
		Status: c.QueryParam("status"),
		Page:   page(c),
	})
	return render(c, view, err)
}

func (h *Handler) ProfilePage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.Profile(c.Request().Context())
	return render(c, view, err)
}

type quantityRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

func (h *Handler) AddToCart(c echo.Context) error {
	v := visitorFrom(c)
	var req quantityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx := c.Request().Context()
	if err := v.Pages.AddToCart(ctx, strings.TrimSpace(req.ProductID), qty); err != nil {
		return httpError(err)
	}
	h.publish(c, v, activity.Event{Type: activity.CartAdd, ProductID: req.ProductID, Quantity: qty})
	view, err := v.Pages.Cart(ctx)
	return render(c, view, err)
}

func (h *Handler) UpdateCartItem(c echo.Context) error {
	v := visitorFrom(c)
	var req quantityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Quantity == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity is required")
	}

	ctx := c.Request().Context()
	productID := c.Param("productId")
	if err := v.Pages.ChangeQuantity(ctx, productID, *req.Quantity); err != nil {
		return httpError(err)
	}
	h.publish(c, v, activity.Event{Type: activity.CartUpdate, ProductID: productID, Quantity: *req.Quantity})
	view, err := v.Pages.Cart(ctx)
	return render(c, view, err)
}

func (h *Handler) RemoveCartItem(c echo.Context) error {
	v := visitorFrom(c)
	ctx := c.Request().Context()
	productID := c.Param("productId")
	if err := v.Pages.RemoveItem(ctx, productID); err != nil {
		return httpError(err)
	}
	h.publish(c, v, activity.Event{Type: activity.CartRemove, ProductID: productID})
	view, err := v.Pages.Cart(ctx)
	return render(c, view, err)
}

func (h *Handler) ClearCart(c echo.Context) error {
	v := visitorFrom(c)
	ctx := c.Request().Context()
	if err := v.Pages.ClearCart(ctx); err != nil {
		return httpError(err)
	}
	h.publish(c, v, activity.Event{Type: activity.CartClear})
	view, err := v.Pages.Cart(ctx)
	return render(c, view, err)
}

func (h *Handler) PlaceOrder(c echo.Context) error {
	v := visitorFrom(c)
	var form pages.CheckoutForm
	if err := bind(c, &form); err != nil {
		return err
	}

	order, err := v.Pages.PlaceOrder(c.Request().Context(), form)
	if err != nil {
		return httpError(err)
	}
	total := order.Total
	h.publish(c, v, activity.Event{Type: activity.OrderPlaced, OrderID: order.ID, Total: &total})
	return c.JSON(http.StatusCreated, map[string]any{"order": order})
}

func productInput(c echo.Context) (shopclient.ProductInput, error) {
	var in shopclient.ProductInput
	err := bind(c, &in)
	return in, err
}
