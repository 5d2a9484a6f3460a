package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/storefront/internal/visitor"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

const (
	credentialRate  = rate.Limit(1)
	credentialBurst = 10
)

const (
	ctxVisitor        = "visitor"
	sessionVisitorKey = "visitor_id"
	visitorCookieAge  = 30 * 24 * time.Hour
)

// NewCookieStore signs visitor cookies with key.
func NewCookieStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Path = "/"
	store.Options.MaxAge = int(visitorCookieAge.Seconds())
	return store
}

// visitorMiddleware attaches the caller's visitor, issuing a new signed sid
// cookie when the request carries no valid one, and exposes the session
// identity to the role gate.
func visitorMiddleware(reg *visitor.Registry, cookies sessions.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/health") || path == "/metrics" {
				return next(c)
			}

			// A cookie that fails verification yields a fresh session.
			sess, _ := cookies.Get(c.Request(), visitor.CookieName)
			id, _ := sess.Values[sessionVisitorKey].(string)
			if !visitor.ValidID(id) {
				id = visitor.NewID()
				sess.Values[sessionVisitorKey] = id
				if err := sess.Save(c.Request(), c.Response()); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to start session").WithInternal(err)
				}
			}

			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("visitor_id", id)
			ctx = logging.IntoContext(ctx, l)
			c.SetRequest(c.Request().WithContext(ctx))

			v := reg.Get(ctx, id)
			c.Set(ctxVisitor, v)
			if st := v.Session.State(); st.Authenticated && st.User != nil {
				authmw.SetIdentity(c, st.User.ID, st.Role())
			}
			return next(c)
		}
	}
}

func visitorFrom(c echo.Context) *visitor.Visitor {
	v, _ := c.Get(ctxVisitor).(*visitor.Visitor)
	return v
}

// credentialLimiter throttles login and registration attempts per client IP.
func credentialLimiter() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      credentialRate,
		Burst:     credentialBurst,
		ExpiresIn: 10 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, id string, _ error) error {
			logging.FromContext(c.Request().Context()).Warn("rate_limit_exceeded", "key", id, "path", c.Path())
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, please try again later")
		},
	})
}
