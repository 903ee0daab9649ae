// Package client assembles the client runtime: the browser stand-in that
// holds the durable session, the cookie jar and the protocol client.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/core/ports"
	"github.com/99minutos/financevault/internal/core/service"
	"github.com/99minutos/financevault/internal/infrastructure/backend"
	"github.com/99minutos/financevault/internal/infrastructure/config"
	"github.com/99minutos/financevault/internal/infrastructure/db/bolt"
	"github.com/99minutos/financevault/internal/infrastructure/db/memory"
	rdb "github.com/99minutos/financevault/internal/infrastructure/db/redis"
	"github.com/99minutos/financevault/internal/infrastructure/gateway"
	"github.com/99minutos/financevault/pkg/logger"
)

// Runtime is one client session context.
type Runtime struct {
	Auth    *service.Authenticator
	Store   *service.ClientSessionStore
	Gateway *gateway.Client

	storage ports.SessionStorage
	closers []func() error
	log     zerolog.Logger
}

// New wires the runtime from cfg and rehydrates the stored session.
func New(ctx context.Context, cfg *config.Client, log zerolog.Logger) (*Runtime, error) {
	r := &Runtime{log: log}

	storage, err := r.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r.storage = storage

	gw, err := gateway.New(cfg.GatewayURL, cfg.Timeout, logger.Component(log, "gateway"))
	if err != nil {
		_ = r.closeAll()
		return nil, err
	}
	if err := gw.LoadCookies(ctx, storage); err != nil {
		log.Warn().Err(err).Msg("could not restore cookies")
	}
	r.Gateway = gw

	transport := backend.New(cfg.BackendURL, logger.Component(log, "backend"), backend.WithTimeout(cfg.Timeout))
	keys := service.NewKeyCache(transport, logger.Component(log, "key_cache"))
	proto := service.NewAuthProtocol(keys, transport, logger.Component(log, "auth_protocol"))

	r.Store = service.NewClientSessionStore(storage, logger.Component(log, "session_store"))
	r.Store.Initialize(ctx)

	bridge := &persistentBridge{gateway: gw, storage: storage}
	sessions := service.NewSessionManager(bridge, r.Store, logger.Component(log, "session_manager"))
	r.Auth = service.NewAuthenticator(proto, keys, sessions, logger.Component(log, "authenticator"))
	return r, nil
}

// Close persists the cookie jar and releases storage.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.Gateway != nil {
		if err := r.Gateway.SaveCookies(ctx, r.storage); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// persistentBridge saves the jar after every cookie write, so the cookie copy
// is as durable as the client store.
type persistentBridge struct {
	gateway *gateway.Client
	storage ports.SessionStorage
}

var _ ports.CookieBridge = (*persistentBridge)(nil)

func (b *persistentBridge) SetToken(ctx context.Context, token string) error {
	if err := b.gateway.SetToken(ctx, token); err != nil {
		return err
	}
	return b.gateway.SaveCookies(ctx, b.storage)
}

func (r *Runtime) openStorage(ctx context.Context, cfg *config.Client) (ports.SessionStorage, error) {
	switch cfg.SessionStore {
	case "memory":
		return memory.NewSessionStorage(), nil
	case "redis":
		client, err := rdb.Connect(ctx, rdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, client.Close)
		return rdb.NewSessionStorage(client, cfg.SessionProfile), nil
	default:
		path := cfg.SessionPath
		if path == "" {
			p, err := bolt.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		s, err := bolt.Open(path)
		if err != nil {
			return nil, fmt.Errorf("session profile: %w", err)
		}
		r.closers = append(r.closers, s.Close)
		return s, nil
	}
}

func (r *Runtime) closeAll() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
