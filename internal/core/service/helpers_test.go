package service_test

import (
	"context"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/pkg/sealing"
)

var testKeys struct {
	once sync.Once
	priv *rsa.PrivateKey
	pem  string
	err  error
}

// testKeyPair generates one RSA key for the whole package run.
func testKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	testKeys.once.Do(func() {
		kp, err := sealing.GenerateKeyPair("test", sealing.DefaultKeyBits)
		if err != nil {
			testKeys.err = err
			return
		}
		testKeys.priv, testKeys.err = sealing.ParsePrivateKey(kp.PrivateKeyPEM)
		testKeys.pem = kp.PublicKeyPEM
	})
	if testKeys.err != nil {
		t.Fatalf("generate key: %v", testKeys.err)
	}
	return testKeys.priv, testKeys.pem
}

// fakeTransport is an in-process backend: it decrypts what it receives and
// records the plaintext so tests can assert on it.
type fakeTransport struct {
	mu        sync.Mutex
	priv      *rsa.PrivateKey
	keys      []string // successive FetchPublicKey answers; the last one repeats
	fetches   int
	received  []domain.EncryptedCredentials
	decrypted []string

	registerFn func(creds domain.EncryptedCredentials, password string) (*domain.AuthResponse, error)
	loginFn    func(creds domain.EncryptedCredentials, password string) (*domain.AuthResponse, error)
	logoutFn   func(token string) error
}

func newFakeTransport(t *testing.T) *fakeTransport {
	priv, pem := testKeyPair(t)
	return &fakeTransport{priv: priv, keys: []string{pem}}
}

func (f *fakeTransport) FetchPublicKey(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.fetches
	if idx >= len(f.keys) {
		idx = len(f.keys) - 1
	}
	f.fetches++
	return f.keys[idx], nil
}

func (f *fakeTransport) open(creds domain.EncryptedCredentials) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, creds)
	pw, err := sealing.DecryptPassword(creds.EncryptedPassword, f.priv)
	if err != nil {
		return "", err
	}
	f.decrypted = append(f.decrypted, pw)
	return pw, nil
}

func (f *fakeTransport) Register(_ context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error) {
	pw, err := f.open(creds)
	if err != nil {
		return nil, domain.ErrRegistrationFailed
	}
	if f.registerFn != nil {
		return f.registerFn(creds, pw)
	}
	return &domain.AuthResponse{Token: "t1", UserID: "1", Username: creds.Username}, nil
}

func (f *fakeTransport) Login(_ context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error) {
	pw, err := f.open(creds)
	if err != nil {
		return nil, domain.ErrLoginFailed
	}
	if f.loginFn != nil {
		return f.loginFn(creds, pw)
	}
	return &domain.AuthResponse{Token: "t1", UserID: "1", Username: creds.Username}, nil
}

func (f *fakeTransport) Logout(_ context.Context, token string) error {
	if f.logoutFn != nil {
		return f.logoutFn(token)
	}
	return nil
}

func (f *fakeTransport) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// fakeCookies records every token handed to the bridge. failures holds the
// number of upcoming calls that should fail.
type fakeCookies struct {
	mu       sync.Mutex
	calls    []string
	current  string
	failures int
}

var errBridgeDown = errors.New("bridge unreachable")

func (c *fakeCookies) SetToken(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, token)
	if c.failures > 0 {
		c.failures--
		return errBridgeDown
	}
	c.current = token
	return nil
}

func (c *fakeCookies) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// brokenStorage fails every call with err.
type brokenStorage struct {
	err error
}

func (s brokenStorage) Get(context.Context, ...string) (map[string]string, error) {
	return nil, s.err
}

func (s brokenStorage) Put(context.Context, map[string]string) error {
	return s.err
}

func (s brokenStorage) Delete(context.Context, ...string) error {
	return s.err
}
