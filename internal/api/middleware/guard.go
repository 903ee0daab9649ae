package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/99minutos/financevault/internal/api/cookie"
	"github.com/99minutos/financevault/internal/api/metrics"
)

// ContextKeyAuthenticated holds the guard's hint for page handlers. It only
// says a session cookie is present, not that the token is valid.
const ContextKeyAuthenticated = "authenticated"

const (
	SigninPath = "/signin"
	SignupPath = "/signup"
	HomePath   = "/"
)

// DefaultPublicPaths are reachable without a session.
var DefaultPublicPaths = []string{SigninPath, SignupPath}

// Decision is the guard's verdict for one navigation.
type Decision string

const (
	Proceed        Decision = "proceed"
	RedirectSignin Decision = "to_signin"
	RedirectHome   Decision = "to_home"
)

// Outcome is the result of Evaluate.
type Outcome struct {
	Decision      Decision
	Location      string
	Authenticated bool
}

// Evaluate decides a navigation to path using the default public paths.
func Evaluate(path string, hasToken bool) Outcome {
	return evaluate(DefaultPublicPaths, path, hasToken)
}

func evaluate(public []string, path string, hasToken bool) Outcome {
	isPublic := false
	for _, p := range public {
		if p == path {
			isPublic = true
			break
		}
	}

	switch {
	case !hasToken && !isPublic:
		return Outcome{Decision: RedirectSignin, Location: SigninPath}
	case hasToken && isPublic:
		return Outcome{Decision: RedirectHome, Location: HomePath, Authenticated: true}
	default:
		return Outcome{Decision: Proceed, Authenticated: hasToken}
	}
}

// GuardConfig configures Guard.
type GuardConfig struct {
	// Skipper defaults to DefaultGuardSkipper.
	Skipper echomiddleware.Skipper
	// PublicPaths defaults to DefaultPublicPaths. Matching is exact.
	PublicPaths []string
}

// DefaultGuardSkipper exempts non-navigation requests: anything but GET/HEAD,
// and the API, health, metrics and docs routes.
func DefaultGuardSkipper(c echo.Context) bool {
	r := c.Request()
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return true
	}
	p := r.URL.Path
	return strings.HasPrefix(p, "/api/") ||
		strings.HasPrefix(p, "/health") ||
		p == "/metrics" ||
		strings.HasPrefix(p, "/swagger/")
}

// Guard redirects page navigations based on the presence of the session
// cookie and records the authenticated hint for the page handler.
func Guard(cfg GuardConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = DefaultGuardSkipper
	}
	if cfg.PublicPaths == nil {
		cfg.PublicPaths = DefaultPublicPaths
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			_, hasToken := cookie.Token(c)
			out := evaluate(cfg.PublicPaths, c.Request().URL.Path, hasToken)
			metrics.RouteGuardDecisionsTotal.WithLabelValues(string(out.Decision)).Inc()

			if out.Decision != Proceed {
				return c.Redirect(http.StatusFound, out.Location)
			}
			c.Set(ContextKeyAuthenticated, out.Authenticated)
			return next(c)
		}
	}
}
