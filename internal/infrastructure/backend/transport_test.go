package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/core/domain"
)

func newTestTransport(t *testing.T, h http.HandlerFunc) *Transport {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", zerolog.Nop())
}

func TestTransport_FetchPublicKey(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/public-key" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"public_key": "PEM"})
	})

	key, err := tr.FetchPublicKey(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if key != "PEM" {
		t.Fatalf("expected PEM, got %q", key)
	}
}

func TestTransport_FetchPublicKey_Non2xx(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := tr.FetchPublicKey(context.Background())
	if !errors.Is(err, domain.ErrKeyUnavailable) {
		t.Fatalf("expected ErrKeyUnavailable, got %v", err)
	}
	if StatusCode(err) != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", StatusCode(err))
	}
}

func TestTransport_FetchPublicKey_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	tr := New(srv.URL, zerolog.Nop())

	_, err := tr.FetchPublicKey(context.Background())
	if !errors.Is(err, domain.ErrKeyUnavailable) {
		t.Fatalf("expected ErrKeyUnavailable, got %v", err)
	}
}

func TestTransport_Login_PostsEncryptedCredentials(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/login" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body) != 2 || body["username"] != "alice" || body["encrypted_password"] != "CT" {
			t.Fatalf("unexpected body %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "t1", "user_id": "1", "username": "alice"})
	})

	resp, err := tr.Login(context.Background(), domain.EncryptedCredentials{Username: "alice", EncryptedPassword: "CT"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if *resp != (domain.AuthResponse{Token: "t1", UserID: "1", Username: "alice"}) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTransport_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		call   func(*Transport) error
		want   error
	}{
		{"register conflict", http.StatusConflict, func(tr *Transport) error {
			_, err := tr.Register(context.Background(), domain.EncryptedCredentials{})
			return err
		}, domain.ErrUserAlreadyExists},
		{"register other", http.StatusInternalServerError, func(tr *Transport) error {
			_, err := tr.Register(context.Background(), domain.EncryptedCredentials{})
			return err
		}, domain.ErrRegistrationFailed},
		{"login unauthorized", http.StatusUnauthorized, func(tr *Transport) error {
			_, err := tr.Login(context.Background(), domain.EncryptedCredentials{})
			return err
		}, domain.ErrInvalidCredentials},
		{"login other", http.StatusBadRequest, func(tr *Transport) error {
			_, err := tr.Login(context.Background(), domain.EncryptedCredentials{})
			return err
		}, domain.ErrLoginFailed},
		{"logout other", http.StatusInternalServerError, func(tr *Transport) error {
			return tr.Logout(context.Background(), "t1")
		}, domain.ErrLogoutFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			})

			err := tc.call(tr)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var se *StatusError
			if !errors.As(err, &se) || se.StatusCode != tc.status || se.Message != "nope" {
				t.Fatalf("expected StatusError %d with message, got %#v", tc.status, se)
			}
		})
	}
}

func TestTransport_Logout_SendsBearer(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/logout" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer t1" {
			t.Fatalf("unexpected authorization %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := tr.Logout(context.Background(), "t1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

func TestTransport_Logout_UnauthorizedIsSuccess(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if err := tr.Logout(context.Background(), "stale"); err != nil {
		t.Fatalf("expected nil for already-invalid token, got %v", err)
	}
}
