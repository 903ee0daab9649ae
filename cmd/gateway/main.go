// Command gateway serves the session cookie bridge, the sign-in and sign-up
// form actions and the guarded pages in front of the identity backend.
//
//	@title			FinanceVault Gateway
//	@version		1.0
//	@description	Session cookie bridge, form actions and guarded pages.
//	@BasePath		/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/99minutos/financevault/internal/api"
	"github.com/99minutos/financevault/internal/api/cookie"
	"github.com/99minutos/financevault/internal/core/service"
	"github.com/99minutos/financevault/internal/infrastructure/backend"
	"github.com/99minutos/financevault/internal/infrastructure/config"
	"github.com/99minutos/financevault/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadGateway(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "gateway"})
	log := logger.Get()
	log.Info().
		Str("env", cfg.Env).
		Str("backend", cfg.BackendURL).
		Bool("cookie_secure", cfg.CookieSecure).
		Msg("gateway starting")

	transport := backend.New(cfg.BackendURL, logger.Component(log, "backend"), backend.WithTimeout(cfg.BackendTimeout))
	keys := service.NewKeyCache(transport, logger.Component(log, "key_cache"))

	e := api.NewGatewayRouter(api.GatewayDeps{
		Client:  service.NewAuthProtocol(keys, transport, logger.Component(log, "auth_protocol")),
		Keys:    keys,
		Cookies: cookie.Policy{ForceSecure: cfg.CookieSecure},
		Log:     logger.Component(log, "http"),
	})

	return api.Serve(ctx, e, ":"+cfg.Port, cfg.ShutdownTimeout, log)
}
