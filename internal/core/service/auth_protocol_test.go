package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/service"
)

func newProtocol(tr *fakeTransport) (*service.AuthProtocol, *service.KeyCache) {
	cache := service.NewKeyCache(tr, zerolog.Nop())
	return service.NewAuthProtocol(cache, tr, zerolog.Nop()), cache
}

func TestAuthProtocol_Login_SendsOnlyCiphertext(t *testing.T) {
	tr := newFakeTransport(t)
	proto, _ := newProtocol(tr)

	resp, err := proto.Login(context.Background(), "alice", "p@ss")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token != "t1" || resp.UserID != "1" || resp.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if len(tr.received) != 1 {
		t.Fatalf("expected one exchange, got %d", len(tr.received))
	}
	sent := tr.received[0]
	if sent.Username != "alice" {
		t.Fatalf("unexpected username %q", sent.Username)
	}
	if sent.EncryptedPassword == "" || strings.Contains(sent.EncryptedPassword, "p@ss") {
		t.Fatalf("password was not encrypted: %q", sent.EncryptedPassword)
	}
	if tr.decrypted[0] != "p@ss" {
		t.Fatalf("backend decrypted %q", tr.decrypted[0])
	}
}

func TestAuthProtocol_KeyFetchedOnceAcrossCalls(t *testing.T) {
	tr := newFakeTransport(t)
	proto, _ := newProtocol(tr)

	for i := 0; i < 3; i++ {
		if _, err := proto.Login(context.Background(), "alice", "p@ss"); err != nil {
			t.Fatalf("login #%d: %v", i, err)
		}
	}
	if tr.fetchCount() != 1 {
		t.Fatalf("expected one key fetch, got %d", tr.fetchCount())
	}
}

func TestAuthProtocol_Register_Conflict(t *testing.T) {
	tr := newFakeTransport(t)
	tr.registerFn = func(domain.EncryptedCredentials, string) (*domain.AuthResponse, error) {
		return nil, domain.ErrUserAlreadyExists
	}
	proto, _ := newProtocol(tr)

	_, err := proto.Register(context.Background(), "alice", "p@ss")
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestAuthProtocol_MalformedKeyIsEncryptionError(t *testing.T) {
	tr := newFakeTransport(t)
	tr.keys = []string{"not a pem"}
	proto, _ := newProtocol(tr)

	_, err := proto.Login(context.Background(), "alice", "p@ss")
	if !errors.Is(err, domain.ErrEncryption) {
		t.Fatalf("expected ErrEncryption, got %v", err)
	}
	if len(tr.received) != 0 {
		t.Fatalf("nothing should reach the backend on encryption failure")
	}
}

func TestAuthProtocol_Logout(t *testing.T) {
	tr := newFakeTransport(t)
	var got string
	tr.logoutFn = func(token string) error {
		got = token
		return nil
	}
	proto, _ := newProtocol(tr)

	if err := proto.Logout(context.Background(), "t1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got != "t1" {
		t.Fatalf("expected bearer t1, got %q", got)
	}

	tr.logoutFn = func(string) error { return domain.ErrLogoutFailed }
	if err := proto.Logout(context.Background(), "t1"); !errors.Is(err, domain.ErrLogoutFailed) {
		t.Fatalf("expected ErrLogoutFailed, got %v", err)
	}
}

func TestRetryOnStaleKey_RetriesOnceAfterReset(t *testing.T) {
	_, goodPEM := testKeyPair(t)
	tr := newFakeTransport(t)
	tr.keys = []string{"corrupted", goodPEM}
	proto, cache := newProtocol(tr)

	calls := 0
	resp, err := service.RetryOnStaleKey(context.Background(), cache, zerolog.Nop(), func(ctx context.Context) (*domain.AuthResponse, error) {
		calls++
		return proto.Login(ctx, "alice", "p@ss")
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 || tr.fetchCount() != 2 {
		t.Fatalf("expected 2 attempts and 2 fetches, got %d and %d", calls, tr.fetchCount())
	}
	if resp.Token != "t1" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestRetryOnStaleKey_OtherErrorsAreNotRetried(t *testing.T) {
	calls := 0
	_, err := service.RetryOnStaleKey(context.Background(), nil, zerolog.Nop(), func(context.Context) (string, error) {
		calls++
		return "", domain.ErrInvalidCredentials
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) || calls != 1 {
		t.Fatalf("expected a single failing call, got %d calls, err %v", calls, err)
	}
}

func TestRetryOnStaleKey_NilCacheInInterface(t *testing.T) {
	var cache *service.KeyCache
	calls := 0
	_, err := service.RetryOnStaleKey(context.Background(), cache, zerolog.Nop(), func(context.Context) (string, error) {
		calls++
		return "", domain.ErrEncryption
	})
	if !errors.Is(err, domain.ErrEncryption) {
		t.Fatalf("expected ErrEncryption, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
}
