package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

// Validation errors raised before any network activity.
var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Authenticator is the client-side action layer: it gates the UI with the
// loading flag, runs the protocol and composes both session copies.
type Authenticator struct {
	client   ports.AuthClient
	keys     ports.KeyResetter
	sessions *SessionManager
	log      zerolog.Logger
}

// NewAuthenticator builds the action layer. keys may be nil when the client
// has no resettable cache.
func NewAuthenticator(client ports.AuthClient, keys ports.KeyResetter, sessions *SessionManager, log zerolog.Logger) *Authenticator {
	return &Authenticator{client: client, keys: keys, sessions: sessions, log: log}
}

// SignUp registers and establishes the session.
func (a *Authenticator) SignUp(ctx context.Context, username, password, confirm string) (*domain.User, error) {
	if username == "" || password == "" || confirm == "" {
		return nil, ErrMissingFields
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	return a.run(ctx, func(ctx context.Context) (*domain.AuthResponse, error) {
		return a.client.Register(ctx, username, password)
	})
}

// SignIn logs in and establishes the session.
func (a *Authenticator) SignIn(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}
	return a.run(ctx, func(ctx context.Context) (*domain.AuthResponse, error) {
		return a.client.Login(ctx, username, password)
	})
}

// SignOut invalidates the token server-side and then ends both session
// copies. The local session is ended even if the backend call fails. With no
// client session there is nothing to revoke, but a leftover cookie is still
// cleared.
func (a *Authenticator) SignOut(ctx context.Context) error {
	store := a.sessions.Store()
	st := store.State()

	store.SetLoading(true)
	defer store.SetLoading(false)

	var logoutErr error
	if st.IsAuthenticated {
		logoutErr = a.client.Logout(ctx, st.Token)
		if logoutErr != nil {
			a.log.Warn().Err(logoutErr).Msg("backend logout failed, ending local session anyway")
		}
	} else {
		a.log.Debug().Msg("no client session, clearing cookie only")
	}

	if err := a.sessions.End(ctx); err != nil {
		return errors.Join(err, logoutErr)
	}
	return logoutErr
}

func (a *Authenticator) run(ctx context.Context, exchange func(context.Context) (*domain.AuthResponse, error)) (*domain.User, error) {
	store := a.sessions.Store()
	store.SetLoading(true)
	defer store.SetLoading(false)

	resp, err := RetryOnStaleKey(ctx, a.keys, a.log, exchange)
	if err != nil {
		return nil, err
	}

	user := resp.User()
	if err := a.sessions.Establish(ctx, user, resp.Token); err != nil {
		return nil, fmt.Errorf("authenticated but session not stored: %w", err)
	}
	return &user, nil
}
