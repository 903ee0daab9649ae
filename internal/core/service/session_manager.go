package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/api/metrics"
	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

// SessionManager keeps the two token copies (HTTP-only cookie and client
// store) in step. There is no transaction across them, so the order is fixed
// and partial failures are compensated:
//
//   - Establish sets the cookie (one retry), then the client store. A failed
//     store write clears the cookie again.
//   - End clears the cookie (one retry), then always clears the client store.
//     A cookie that could not be cleared is reported as domain.ErrSessionSync.
type SessionManager struct {
	cookies ports.CookieBridge
	store   *ClientSessionStore
	log     zerolog.Logger
}

// NewSessionManager wires a cookie bridge to a client session store.
func NewSessionManager(cookies ports.CookieBridge, store *ClientSessionStore, log zerolog.Logger) *SessionManager {
	return &SessionManager{cookies: cookies, store: store, log: log}
}

// Establish makes both copies hold token. On error both copies are absent,
// unless the cookie rollback also failed (wrapped domain.ErrSessionSync).
func (m *SessionManager) Establish(ctx context.Context, user domain.User, token string) error {
	if err := m.setCookie(ctx, token); err != nil {
		return fmt.Errorf("establish session: set cookie: %w", err)
	}

	if err := m.store.Login(ctx, user, token); err != nil {
		m.log.Error().Err(err).Str("username", user.Username).Msg("client store write failed, rolling back cookie")
		if rbErr := m.setCookie(ctx, ""); rbErr != nil {
			metrics.ClientSessionEventsTotal.WithLabelValues("sync_failed").Inc()
			return fmt.Errorf("establish session: %w", errors.Join(domain.ErrSessionSync, err, rbErr))
		}
		return fmt.Errorf("establish session: %w", err)
	}
	return nil
}

// End clears both copies. The client store is always cleared.
func (m *SessionManager) End(ctx context.Context) error {
	cookieErr := m.setCookie(ctx, "")
	storeErr := m.store.Logout(ctx)

	if cookieErr != nil {
		metrics.ClientSessionEventsTotal.WithLabelValues("sync_failed").Inc()
		m.log.Error().Err(cookieErr).Msg("session cookie could not be cleared")
		return fmt.Errorf("end session: %w", errors.Join(domain.ErrSessionSync, cookieErr, storeErr))
	}
	if storeErr != nil {
		return fmt.Errorf("end session: %w", storeErr)
	}
	return nil
}

// Store exposes the client copy.
func (m *SessionManager) Store() *ClientSessionStore {
	return m.store
}

func (m *SessionManager) setCookie(ctx context.Context, token string) error {
	err := m.cookies.SetToken(ctx, token)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	m.log.Warn().Err(err).Msg("cookie bridge call failed, retrying once")
	return m.cookies.SetToken(ctx, token)
}
