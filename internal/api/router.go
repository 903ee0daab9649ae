package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/financevault/docs/gateway"
	_ "github.com/99minutos/financevault/docs/identity"
	"github.com/99minutos/financevault/internal/api/cookie"
	"github.com/99minutos/financevault/internal/api/handler"
	"github.com/99minutos/financevault/internal/api/middleware"
	"github.com/99minutos/financevault/internal/core/ports"
	"github.com/99minutos/financevault/internal/core/service"
)

// GatewayDeps are the collaborators of the gateway app. Keys is optional:
// without it the form actions do not retry on a stale key and readiness has
// no public key check.
type GatewayDeps struct {
	Client  ports.AuthClient
	Keys    *service.KeyCache
	Cookies cookie.Policy
	Log     zerolog.Logger
}

// NewGatewayRouter builds the gateway: the session cookie bridge, the form
// actions and the guarded pages.
func NewGatewayRouter(deps GatewayDeps) *echo.Echo {
	e, reg := newEcho(deps.Log, "financevault_gateway")

	// --- Dependencies ---
	// A nil *KeyCache must not reach the interface as a typed nil.
	var keys ports.KeyResetter
	checks := map[string]handler.DependencyCheck{}
	if deps.Keys != nil {
		keys = deps.Keys
		checks["public_key"] = func(ctx context.Context) error {
			_, err := deps.Keys.Get(ctx)
			return err
		}
	}
	cookieHandler := handler.NewCookieHandler(deps.Cookies, deps.Log)
	formHandler := handler.NewFormHandler(deps.Client, keys, deps.Cookies, deps.Log)

	// --- Session cookie bridge ---
	e.POST("/api/set-auth-cookie", cookieHandler.SetAuthCookie)

	// --- Form actions ---
	e.POST("/signin", formHandler.Signin)
	e.POST("/signup", formHandler.Signup)
	e.POST("/logout", formHandler.Logout)

	// --- Health probes (no auth required) ---
	registerHealth(e, checks)

	// --- Docs and metrics ---
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName("gateway")))
	e.GET("/metrics", metricsHandler(reg))

	// --- Guarded pages ---
	pages := e.Group("", middleware.Guard(middleware.GuardConfig{}))
	pages.GET("/", handler.Page)
	pages.GET("/*", handler.Page)

	return e
}

// IdentityDeps are the collaborators of the development identity backend.
type IdentityDeps struct {
	Identity ports.IdentityService
	Checks   map[string]handler.DependencyCheck
	Log      zerolog.Logger
}

// NewIdentityRouter builds the development identity backend.
func NewIdentityRouter(deps IdentityDeps) *echo.Echo {
	e, reg := newEcho(deps.Log, "financevault_identity")

	authHandler := handler.NewAuthHandler(deps.Identity, deps.Log)
	authMiddleware := middleware.Auth(deps.Identity)

	// --- Auth routes ---
	g := e.Group("/api")
	g.GET("/public-key", authHandler.PublicKey)
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)
	g.POST("/logout", authHandler.Logout, authMiddleware)
	g.GET("/profile", authHandler.Profile, authMiddleware)

	registerHealth(e, deps.Checks)

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName("identity")))
	e.GET("/metrics", metricsHandler(reg))

	return e
}

// newEcho returns an app with the shared middleware stack. HTTP metrics go
// to a registry owned by the app; /metrics serves it alongside the default
// registry holding the domain counters.
func newEcho(log zerolog.Logger, subsystem string) (*echo.Echo, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  subsystem,
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	return e, reg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	})
}

func registerHealth(e *echo.Echo, checks map[string]handler.DependencyCheck) {
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
}

// requestLogger logs one zerolog line per request. Cookies and headers are
// never logged.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURIPath:   true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
