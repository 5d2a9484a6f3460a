package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/pages"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

// httpError maps a client-side failure onto the status the storefront
// answers with. Backend failures keep the backend's status.
func httpError(err error) *echo.HTTPError {
	code := http.StatusBadGateway
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, shopclient.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, pages.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, auth.ErrValidation), errors.Is(err, cart.ErrValidation), errors.Is(err, pages.ErrValidation):
		code = http.StatusBadRequest
	default:
		if s := shopclient.StatusCode(err); s != 0 {
			code = s
		}
	}
	return echo.NewHTTPError(code, shopclient.Message(err, http.StatusText(code))).WithInternal(err)
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = httpError(err)
	}
	if he.Code >= http.StatusInternalServerError && he.Internal != nil {
		logging.FromContext(c.Request().Context()).Error("request_error", "status", he.Code, "error", he.Internal)
	}

	msg := fmt.Sprint(he.Message)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, echo.Map{"message": msg})
}
