package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(DefaultConfig()))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/session", ok)
	e.POST("/cart/items", ok)
	e.GET("/health/live", ok)
	return e
}

func issueToken(t *testing.T, e *echo.Echo) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "XSRF-TOKEN" {
			assert.Equal(t, c.Value, rec.Header().Get("X-CSRF-Token"))
			return c
		}
	}
	t.Fatal("no csrf cookie issued")
	return nil
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	e := newServer()
	cookie := issueToken(t, e)

	tests := []struct {
		name   string
		header string
		origin string
		want   int
	}{
		{"matching token", cookie.Value, "http://example.com", http.StatusNoContent},
		{"missing header", "", "http://example.com", http.StatusForbidden},
		{"wrong token", "forged", "http://example.com", http.StatusForbidden},
		{"cross origin", cookie.Value, "http://evil.test", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
			req.AddCookie(cookie)
			req.Header.Set("Origin", tt.origin)
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMiddlewareSkipsHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}
