// Package cookie reads and writes the HTTP-only session cookie.
package cookie

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/financevault/internal/api/metrics"
	"github.com/99minutos/financevault/internal/core/domain"
)

// Policy decides the secure attribute. Force sets it on every response;
// otherwise it follows the request scheme.
type Policy struct {
	ForceSecure bool
}

// Secure reports whether the cookie should carry the secure attribute.
func (p Policy) Secure(r *http.Request) bool {
	if p.ForceSecure || r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get(echo.HeaderXForwardedProto), "https")
}

// Set writes token as the session cookie.
func (p Policy) Set(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   p.Secure(c.Request()),
		MaxAge:   int(domain.SessionCookieMaxAge.Seconds()),
	})
	metrics.SessionCookieWritesTotal.WithLabelValues("set").Inc()
}

// Clear deletes the session cookie.
func (p Policy) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   p.Secure(c.Request()),
		MaxAge:   -1,
	})
	metrics.SessionCookieWritesTotal.WithLabelValues("clear").Inc()
}

// Token returns the session cookie value. An empty value counts as absent.
func Token(c echo.Context) (string, bool) {
	ck, err := c.Cookie(domain.SessionCookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
