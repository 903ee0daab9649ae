// Package backend is the HTTP transport to the identity backend. It performs
// the four fixed JSON exchanges and maps status codes onto the domain error
// taxonomy; it never sees a plaintext password.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Transport talks to the backend under a base URL fixed at construction.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures the Transport.
type Option func(*Transport)

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.httpClient.Timeout = d
		}
	}
}

// New returns a Transport for baseURL (for example http://localhost:8000/api).
func New(baseURL string, log zerolog.Logger, opts ...Option) *Transport {
	t := &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ ports.AuthTransport = (*Transport)(nil)

// StatusError is a non-2xx answer. It unwraps to the taxonomy sentinel for
// the endpoint and status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
	kind       error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s returned %d: %s", e.kind, e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s returned %d", e.kind, e.Endpoint, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return e.kind }

type publicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

// FetchPublicKey implements ports.PublicKeySource. Network failures and
// non-2xx answers both wrap domain.ErrKeyUnavailable.
func (t *Transport) FetchPublicKey(ctx context.Context) (string, error) {
	resp, err := t.do(ctx, http.MethodGet, "/public-key", nil, "")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrKeyUnavailable, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", t.statusError(resp, "/public-key", domain.ErrKeyUnavailable)
	}

	var body publicKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decoding public key: %v", domain.ErrKeyUnavailable, err)
	}
	return body.PublicKey, nil
}

// Register posts encrypted credentials to /register.
func (t *Transport) Register(ctx context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error) {
	return t.exchange(ctx, "/register", creds, func(status int) error {
		if status == http.StatusConflict {
			return domain.ErrUserAlreadyExists
		}
		return domain.ErrRegistrationFailed
	})
}

// Login posts encrypted credentials to /login.
func (t *Transport) Login(ctx context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error) {
	return t.exchange(ctx, "/login", creds, func(status int) error {
		if status == http.StatusUnauthorized {
			return domain.ErrInvalidCredentials
		}
		return domain.ErrLoginFailed
	})
}

// Logout posts to /logout with the bearer token. A 401 means the token is
// already invalid server-side and is treated as success.
func (t *Transport) Logout(ctx context.Context, token string) error {
	resp, err := t.do(ctx, http.MethodPost, "/logout", nil, token)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLogoutFailed, err)
	}
	defer resp.Body.Close()

	if isSuccess(resp.StatusCode) {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.log.Debug().Msg("logout: token already invalid")
		return nil
	}
	return t.statusError(resp, "/logout", domain.ErrLogoutFailed)
}

func (t *Transport) exchange(ctx context.Context, endpoint string, creds domain.EncryptedCredentials, classify func(int) error) (*domain.AuthResponse, error) {
	fallback := classify(0)

	resp, err := t.do(ctx, http.MethodPost, endpoint, creds, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fallback, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, t.statusError(resp, endpoint, classify(resp.StatusCode))
	}

	var out domain.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %v", fallback, endpoint, err)
	}
	return &out, nil
}

func (t *Transport) do(ctx context.Context, method, endpoint string, body any, bearer string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", endpoint, err)
	}
	return resp, nil
}

// statusError builds a StatusError, pulling a message from the body when the
// backend sent one as {"error": ...} or {"message": ...}.
func (t *Transport) statusError(resp *http.Response, endpoint string, kind error) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var msg string
	if gjson.ValidBytes(raw) {
		res := gjson.GetManyBytes(raw, "error", "message")
		for _, r := range res {
			if r.Type == gjson.String && r.Str != "" {
				msg = r.Str
				break
			}
		}
	}

	se := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg, kind: kind}
	if !domain.IsExpected(kind) {
		t.log.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).Str("message", msg).Msg("backend returned an error")
	}
	return se
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// StatusCode extracts the backend status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
