package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/api/metrics"
	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
	"github.com/99minutos/financevault/internal/pkg/sealing"
)

// KeyProvider is satisfied by *KeyCache.
type KeyProvider interface {
	Get(ctx context.Context) (string, error)
}

// AuthProtocol runs register/login/logout against the backend. Each
// register/login is strictly sequential: key lookup, then encryption, then the
// exchange. It never touches the client store or the cookie; composing those
// is the caller's job (see SessionManager).
type AuthProtocol struct {
	keys      KeyProvider
	transport ports.AuthTransport
	log       zerolog.Logger
}

// NewAuthProtocol wires the protocol to a key provider and a transport.
func NewAuthProtocol(keys KeyProvider, transport ports.AuthTransport, log zerolog.Logger) *AuthProtocol {
	return &AuthProtocol{keys: keys, transport: transport, log: log}
}

var _ ports.AuthClient = (*AuthProtocol)(nil)

// Register creates an account. A 409 from the backend surfaces as
// domain.ErrUserAlreadyExists, any other failure as domain.ErrRegistrationFailed.
func (p *AuthProtocol) Register(ctx context.Context, username, password string) (*domain.AuthResponse, error) {
	enc, err := p.seal(ctx, domain.Credentials{Username: username, PlaintextPassword: password})
	if err != nil {
		record("register", err)
		return nil, fmt.Errorf("register: %w", err)
	}

	resp, err := p.transport.Register(ctx, enc)
	record("register", err)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	p.log.Info().Str("username", resp.Username).Str("user_id", resp.UserID).Msg("registered")
	return resp, nil
}

// Login authenticates. A 401 surfaces as domain.ErrInvalidCredentials, any
// other failure as domain.ErrLoginFailed.
func (p *AuthProtocol) Login(ctx context.Context, username, password string) (*domain.AuthResponse, error) {
	enc, err := p.seal(ctx, domain.Credentials{Username: username, PlaintextPassword: password})
	if err != nil {
		record("login", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	resp, err := p.transport.Login(ctx, enc)
	record("login", err)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	p.log.Info().Str("username", resp.Username).Msg("logged in")
	return resp, nil
}

// Logout invalidates token server-side. A token the backend already
// considers invalid is not an error.
func (p *AuthProtocol) Logout(ctx context.Context, token string) error {
	err := p.transport.Logout(ctx, token)
	record("logout", err)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	p.log.Info().Str("token", domain.TokenFingerprint(token)).Msg("logged out")
	return nil
}

// seal consumes the plaintext credentials; only the ciphertext is returned.
func (p *AuthProtocol) seal(ctx context.Context, creds domain.Credentials) (domain.EncryptedCredentials, error) {
	key, err := p.keys.Get(ctx)
	if err != nil {
		return domain.EncryptedCredentials{}, err
	}
	ct, err := sealing.EncryptPassword(creds.PlaintextPassword, key)
	if err != nil {
		return domain.EncryptedCredentials{}, err
	}
	return domain.EncryptedCredentials{Username: creds.Username, EncryptedPassword: ct}, nil
}

func record(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case domain.IsExpected(err):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	metrics.AuthRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// RetryOnStaleKey runs op and, if it fails with domain.ErrEncryption, resets
// the key cache and runs it exactly once more.
func RetryOnStaleKey[T any](ctx context.Context, keys ports.KeyResetter, log zerolog.Logger, op func(context.Context) (T, error)) (T, error) {
	out, err := op(ctx)
	if err == nil || !errors.Is(err, domain.ErrEncryption) || keys == nil {
		return out, err
	}
	log.Warn().Err(err).Msg("encryption failed, refetching public key")
	keys.Reset()
	return op(ctx)
}
