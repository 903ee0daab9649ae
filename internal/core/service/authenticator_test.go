package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/service"
	"github.com/99minutos/financevault/internal/infrastructure/db/memory"
)

type authFixture struct {
	transport *fakeTransport
	cookies   *fakeCookies
	storage   *memory.SessionStorage
	store     *service.ClientSessionStore
	auth      *service.Authenticator
}

func newAuthFixture(t *testing.T) *authFixture {
	tr := newFakeTransport(t)
	cache := service.NewKeyCache(tr, zerolog.Nop())
	proto := service.NewAuthProtocol(cache, tr, zerolog.Nop())
	cookies := &fakeCookies{}
	storage := memory.NewSessionStorage()
	store := service.NewClientSessionStore(storage, zerolog.Nop())
	sessions := service.NewSessionManager(cookies, store, zerolog.Nop())

	return &authFixture{
		transport: tr,
		cookies:   cookies,
		storage:   storage,
		store:     store,
		auth:      service.NewAuthenticator(proto, cache, sessions, zerolog.Nop()),
	}
}

// A user logs in with alice / p@ss: the key is fetched, the backend decrypts
// p@ss, answers t1/1/alice, and both session copies end up holding t1.
func TestAuthenticator_SignIn_EndToEnd(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.auth.SignIn(context.Background(), "alice", "p@ss")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if *user != alice {
		t.Fatalf("unexpected user %+v", user)
	}
	if f.transport.fetchCount() != 1 {
		t.Fatalf("expected one key fetch, got %d", f.transport.fetchCount())
	}
	if len(f.transport.decrypted) != 1 || f.transport.decrypted[0] != "p@ss" {
		t.Fatalf("backend decrypted %q", f.transport.decrypted)
	}

	st := f.store.State()
	if !st.IsAuthenticated || st.IsLoading || st.Token != "t1" || *st.User != alice {
		t.Fatalf("unexpected state: %+v", st)
	}
	if f.cookies.token() != "t1" {
		t.Fatalf("cookie not set")
	}
	entries, _ := f.storage.Get(context.Background(), domain.StorageTokenKey, domain.StorageUserKey)
	if entries[domain.StorageTokenKey] != "t1" || entries[domain.StorageUserKey] != `{"id":"1","username":"alice"}` {
		t.Fatalf("unexpected durable entries: %v", entries)
	}
}

func TestAuthenticator_SignUp_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.auth.SignUp(ctx, "alice", "", "x"); !errors.Is(err, service.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := f.auth.SignUp(ctx, "alice", "a", "b"); !errors.Is(err, service.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if f.transport.fetchCount() != 0 {
		t.Fatalf("validation failures must not touch the network")
	}
}

func TestAuthenticator_SignUp_Conflict(t *testing.T) {
	f := newAuthFixture(t)
	f.transport.registerFn = func(domain.EncryptedCredentials, string) (*domain.AuthResponse, error) {
		return nil, domain.ErrUserAlreadyExists
	}

	_, err := f.auth.SignUp(context.Background(), "alice", "p@ss", "p@ss")
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
	if st := f.store.State(); st.IsAuthenticated || st.IsLoading {
		t.Fatalf("unexpected state after conflict: %+v", st)
	}
	if len(f.cookies.calls) != 0 {
		t.Fatalf("no cookie should be written on failure")
	}
}

func TestAuthenticator_SignIn_RecoversFromStaleKey(t *testing.T) {
	f := newAuthFixture(t)
	_, goodPEM := testKeyPair(t)
	f.transport.keys = []string{"-----BEGIN GARBAGE-----", goodPEM}

	if _, err := f.auth.SignIn(context.Background(), "alice", "p@ss"); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if f.transport.fetchCount() != 2 {
		t.Fatalf("expected a refetch after reset, got %d fetches", f.transport.fetchCount())
	}
}

func TestAuthenticator_SignOut(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	var revoked string
	f.transport.logoutFn = func(token string) error {
		revoked = token
		return nil
	}
	_, _ = f.auth.SignIn(ctx, "alice", "p@ss")
	if err := f.auth.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if revoked != "t1" {
		t.Fatalf("backend logout got %q", revoked)
	}
	if f.store.State().IsAuthenticated || f.cookies.token() != "" {
		t.Fatalf("session not ended")
	}
}

func TestAuthenticator_SignOut_BackendFailureStillEndsSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.transport.logoutFn = func(string) error { return domain.ErrLogoutFailed }

	_, _ = f.auth.SignIn(ctx, "alice", "p@ss")
	err := f.auth.SignOut(ctx)
	if !errors.Is(err, domain.ErrLogoutFailed) {
		t.Fatalf("expected ErrLogoutFailed, got %v", err)
	}
	if f.store.State().IsAuthenticated {
		t.Fatalf("local session must be ended")
	}
}

func TestAuthenticator_SignOut_WithoutSessionIsClean(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	called := false
	f.transport.logoutFn = func(string) error {
		called = true
		return nil
	}

	if err := f.auth.SignOut(ctx); err != nil {
		t.Fatalf("sign out without a session: %v", err)
	}
	if called {
		t.Fatalf("no token to revoke, backend must not be called")
	}
	if st := f.store.State(); st.IsAuthenticated || st.IsLoading {
		t.Fatalf("unexpected state %+v", st)
	}
}

// The cookie copy can outlive the client copy (a failed rollback, or a
// client restarted after its store was erased). Signing out clears it.
func TestAuthenticator_SignOut_ClearsLeftoverCookie(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	called := false
	f.transport.logoutFn = func(string) error {
		called = true
		return nil
	}

	if err := f.cookies.SetToken(ctx, "t1"); err != nil {
		t.Fatalf("seed cookie: %v", err)
	}
	if f.store.State().IsAuthenticated {
		t.Fatalf("client store should be empty")
	}

	if err := f.auth.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if got := f.cookies.token(); got != "" {
		t.Fatalf("leftover cookie survived sign out: %q", got)
	}
	if called {
		t.Fatalf("backend logout needs a client token")
	}
}

func TestAuthenticator_SignOut_LeftoverCookieBridgeDown(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_ = f.cookies.SetToken(ctx, "t1")
	f.cookies.failures = 2

	err := f.auth.SignOut(ctx)
	if !errors.Is(err, domain.ErrSessionSync) {
		t.Fatalf("expected ErrSessionSync, got %v", err)
	}
	if f.store.State().IsLoading {
		t.Fatalf("loading flag must be reset")
	}
}
