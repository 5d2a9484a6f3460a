package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/pages"
)

func (h *Handler) AdminProductsPage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.AdminProducts(c.Request().Context(), pages.AdminProductQuery{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Page:     page(c),
	})
	return render(c, view, err)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	in, err := productInput(c)
	if err != nil {
		return err
	}
	p, err := visitorFrom(c).Pages.SaveProduct(c.Request().Context(), "", in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	in, err := productInput(c)
	if err != nil {
		return err
	}
	p, err := visitorFrom(c).Pages.SaveProduct(c.Request().Context(), c.Param("id"), in)
	return render(c, p, err)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := visitorFrom(c).Pages.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AdminOrdersPage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.AdminOrders(c.Request().Context(), pages.AdminOrderFilter{
		Status:      c.QueryParam("status"),
		DeliveryBoy: c.QueryParam("deliveryBoy"),
		Page:        page(c),
	})
	return render(c, view, err)
}

func (h *Handler) AssignOrder(c echo.Context) error {
	var req struct {
		DeliveryBoyID string `json:"deliveryBoyId"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := visitorFrom(c).Pages.AssignOrder(c.Request().Context(), c.Param("id"), req.DeliveryBoyID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetOrderStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := visitorFrom(c).Pages.SetOrderStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeliveryPage(c echo.Context) error {
	view, err := visitorFrom(c).Pages.Delivery(c.Request().Context(), pages.DeliveryFilter{
		Status: c.QueryParam("status"),
		Page:   page(c),
	})
	return render(c, view, err)
}

func (h *Handler) AdvanceOrder(c echo.Context) error {
	status, err := visitorFrom(c).Pages.Advance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}
