package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/api/cookie"
	"github.com/99minutos/financevault/internal/core/domain"
)

type failingClient struct{ logins int }

func (c *failingClient) Register(context.Context, string, string) (*domain.AuthResponse, error) {
	return nil, domain.ErrEncryption
}

func (c *failingClient) Login(context.Context, string, string) (*domain.AuthResponse, error) {
	c.logins++
	return nil, domain.ErrEncryption
}

func (c *failingClient) Logout(context.Context, string) error { return nil }

func TestGatewayRouter_WithoutKeyCache(t *testing.T) {
	client := &failingClient{}
	e := NewGatewayRouter(GatewayDeps{Client: client, Cookies: cookie.Policy{}, Log: zerolog.Nop()})

	form := url.Values{"username": {"alice"}, "password": {"p@ss"}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for an encryption failure, got %d", rec.Code)
	}
	if client.logins != 1 {
		t.Fatalf("expected no retry without a key cache, got %d logins", client.logins)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected readiness 200 without a key cache, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "public_key") {
		t.Fatalf("expected no public_key check, got %s", rec.Body.String())
	}
}
