package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/activity"
	"github.com/Skotchmaster/storefront/internal/visitor"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/models"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

const publishTimeout = 5 * time.Second

type Handler struct {
	events activity.Publisher
}

type sessionView struct {
	Authenticated bool         `json:"isAuthenticated"`
	Loading       bool         `json:"loading"`
	User          *models.User `json:"user"`
	CartCount     int          `json:"cartCount"`
}

func viewOf(v *visitor.Visitor) sessionView {
	st := v.Session.State()
	return sessionView{
		Authenticated: st.Authenticated,
		Loading:       st.Loading,
		User:          st.User,
		CartCount:     v.Cart.ItemCount(),
	}
}

// publish reports e; a broker failure never fails the request.
func (h *Handler) publish(c echo.Context, v *visitor.Visitor, e activity.Event) {
	e.VisitorID = v.ID
	if e.UserID == "" {
		if st := v.Session.State(); st.User != nil {
			e.UserID = st.User.ID
		}
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	if err := h.events.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "type", e.Type, "error", err)
	}
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}

func (h *Handler) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, viewOf(visitorFrom(c)))
}

func (h *Handler) Login(c echo.Context) error {
	v := visitorFrom(c)
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := v.Session.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	h.publish(c, v, activity.Event{Type: activity.Login, UserID: u.ID})
	return c.JSON(http.StatusOK, viewOf(v))
}

func (h *Handler) Register(c echo.Context) error {
	v := visitorFrom(c)
	var req shopclient.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := v.Session.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	h.publish(c, v, activity.Event{Type: activity.Login, UserID: u.ID})
	return c.JSON(http.StatusCreated, viewOf(v))
}

func (h *Handler) Logout(c echo.Context) error {
	v := visitorFrom(c)
	userID := ""
	if st := v.Session.State(); st.User != nil {
		userID = st.User.ID
	}
	v.Session.Logout(c.Request().Context())
	if userID != "" {
		h.publish(c, v, activity.Event{Type: activity.Logout, UserID: userID})
	}
	return c.JSON(http.StatusOK, viewOf(v))
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	v := visitorFrom(c)
	var req shopclient.ProfileUpdate
	if err := bind(c, &req); err != nil {
		return err
	}
	view, err := v.Pages.UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}
