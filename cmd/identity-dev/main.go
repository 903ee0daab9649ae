// Command identity-dev runs the development identity backend: RSA public key
// distribution, registration, login and bearer-token logout.
//
//	@title			FinanceVault Identity (development)
//	@version		1.0
//	@description	Development identity backend: public key, register, login, logout, profile.
//	@BasePath		/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/api"
	"github.com/99minutos/financevault/internal/api/handler"
	"github.com/99minutos/financevault/internal/core/ports"
	"github.com/99minutos/financevault/internal/core/service"
	"github.com/99minutos/financevault/internal/infrastructure/config"
	"github.com/99minutos/financevault/internal/infrastructure/db/memory"
	mdb "github.com/99minutos/financevault/internal/infrastructure/db/mongo"
	rdb "github.com/99minutos/financevault/internal/infrastructure/db/redis"
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

	cfg, err := config.LoadIdentity(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Service: "identity-dev"})
	log := logger.Get()
	log.Info().
		Str("env", cfg.Env).
		Str("accounts", cfg.AccountStore).
		Str("revocations", cfg.RevocationStore).
		Msg("identity backend starting")

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(log)

	identity := service.NewIdentityService(st.accounts, st.keys, st.revoked, service.IdentityOptions{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		KeyName:   cfg.KeyName,
		KeyBits:   cfg.KeyBits,
	}, logger.Component(log, "identity"))

	// Create the key pair up front so the first client does not pay for it.
	if _, err := identity.PublicKey(ctx); err != nil {
		return fmt.Errorf("preparing rsa key: %w", err)
	}

	e := api.NewIdentityRouter(api.IdentityDeps{
		Identity: identity,
		Checks:   st.checks,
		Log:      logger.Component(log, "http"),
	})

	return api.Serve(ctx, e, ":"+cfg.Port, cfg.ShutdownTimeout, log)
}

type stores struct {
	accounts ports.AccountRepository
	keys     ports.KeyRepository
	revoked  ports.RevocationList
	checks   map[string]handler.DependencyCheck
	closers  []func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Identity, log zerolog.Logger) (*stores, error) {
	st := &stores{
		accounts: memory.NewAccountRepository(),
		keys:     memory.NewKeyRepository(),
		revoked:  memory.NewRevocationList(),
		checks:   map[string]handler.DependencyCheck{},
	}

	if cfg.AccountStore == "mongo" {
		client, db, err := mdb.Connect(ctx, mdb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, client.Disconnect)
		st.accounts = mdb.NewAccountRepository(db)
		st.keys = mdb.NewKeyRepository(db)
		st.checks["mongodb"] = mdb.HealthCheck(client)
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
	}

	if cfg.RevocationStore == "redis" {
		client, err := rdb.Connect(ctx, rdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			st.close(log)
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error { return client.Close() })
		st.revoked = rdb.NewRevocationList(client)
		st.checks["redis"] = rdb.HealthCheck(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	return st, nil
}

func (s *stores) close(log zerolog.Logger) {
	ctx := context.Background()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}
}
