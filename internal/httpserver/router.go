package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/activity"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/visitor"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/models"
)

type Deps struct {
	Visitors *visitor.Registry
	Events   activity.Publisher
	Logger   *slog.Logger

	CSRF csrf.Config
	// Cookies holds the signed visitor cookie.
	Cookies sessions.Store

	// Metrics, when set, instruments requests and activity and serves
	// GET /metrics.
	Metrics *metrics.Metrics

	// Ready reports whether backing stores are usable.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	if d.Events == nil {
		d.Events = activity.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	e.HTTPErrorHandler = errorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	if d.Metrics != nil {
		d.Events = d.Metrics.CountEvents(d.Events)
		d.Metrics.ObserveVisitors(d.Visitors.Len)
		e.Use(d.Metrics.Middleware("/metrics"))
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	h := &Handler{events: d.Events}

	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(d.Logger, "/health/live", "/health/ready", "/metrics"),
		csrf.Middleware(d.CSRF),
		visitorMiddleware(d.Visitors, d.Cookies),
	)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	user := authmw.RequireRole(models.RoleUser)
	admin := authmw.RequireRole(models.RoleAdmin)
	delivery := authmw.RequireRole(models.RoleDelivery)

	e.GET("/session", h.GetSession)
	limit := credentialLimiter()
	e.POST("/session/login", h.Login, limit)
	e.POST("/session/register", h.Register, limit)
	e.POST("/session/logout", h.Logout)
	e.PUT("/session/profile", h.UpdateProfile, authmw.RequireAuth)

	e.GET("/pages/home", h.HomePage)
	e.GET("/pages/category/:category", h.CategoryPage)
	e.GET("/pages/product/:id", h.ProductPage)
	e.GET("/pages/cart", h.CartPage, user)
	e.GET("/pages/checkout", h.CheckoutPage, user)
	e.GET("/pages/orders", h.OrdersPage, user)
	e.GET("/pages/profile", h.ProfilePage, authmw.RequireAuth)

	e.POST("/cart/items", h.AddToCart, user)
	e.PUT("/cart/items/:productId", h.UpdateCartItem, user)
	e.DELETE("/cart/items/:productId", h.RemoveCartItem, user)
	e.DELETE("/cart", h.ClearCart, user)
	e.POST("/checkout", h.PlaceOrder, user)

	e.GET("/pages/admin/products", h.AdminProductsPage, admin)
	e.POST("/admin/products", h.CreateProduct, admin)
	e.PUT("/admin/products/:id", h.UpdateProduct, admin)
	e.DELETE("/admin/products/:id", h.DeleteProduct, admin)
	e.GET("/pages/admin/orders", h.AdminOrdersPage, admin)
	e.PUT("/admin/orders/:id/assign", h.AssignOrder, admin)
	e.PUT("/admin/orders/:id/status", h.SetOrderStatus, admin)

	e.GET("/pages/delivery", h.DeliveryPage, delivery)
	e.PUT("/delivery/orders/:id/advance", h.AdvanceOrder, delivery)
}
