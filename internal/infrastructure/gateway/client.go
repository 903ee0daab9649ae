// Package gateway is the client side of the session cookie bridge. It holds
// a cookie jar standing in for the browser's, so the session cookie the
// gateway sets is replayed on later page navigations.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Client talks to the gateway with a persistent cookie jar.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	log        zerolog.Logger
}

var _ ports.CookieBridge = (*Client)(nil)

// New returns a Client for the gateway at baseURL.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing gateway url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base: base,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			// Navigations report redirects instead of following them.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log,
	}, nil
}

type setCookieRequest struct {
	Token *string `json:"token"`
}

// SetToken posts token to the cookie bridge. An empty token clears the
// cookie.
func (c *Client) SetToken(ctx context.Context, token string) error {
	body := setCookieRequest{}
	if token != "" {
		body.Token = &token
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling cookie request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/set-auth-cookie"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating cookie request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cookie bridge: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusOK || !gjson.GetBytes(raw, "success").Bool() {
		return fmt.Errorf("cookie bridge: status %d: %s", resp.StatusCode, gjson.GetBytes(raw, "error").String())
	}
	c.log.Debug().Bool("cleared", token == "").Msg("session cookie updated")
	return nil
}

// Navigation is the result of visiting a page.
type Navigation struct {
	StatusCode    int
	RedirectTo    string
	Authenticated bool
}

// Navigate visits path as a browser would, sending the jar's cookies.
func (c *Client) Navigate(ctx context.Context, path string) (*Navigation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("creating navigation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", path, err)
	}
	defer resp.Body.Close()

	nav := &Navigation{StatusCode: resp.StatusCode}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		nav.RedirectTo = resp.Header.Get("Location")
		return nav, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("reading page %s: %w", path, err)
	}
	nav.Authenticated = gjson.GetBytes(raw, "user.authenticated").Bool()
	return nav, nil
}

// HasSessionCookie reports whether the jar holds a session cookie for the
// gateway.
func (c *Client) HasSessionCookie() bool {
	for _, ck := range c.httpClient.Jar.Cookies(c.base) {
		if ck.Name == domain.SessionCookieName && ck.Value != "" {
			return true
		}
	}
	return false
}

func (c *Client) url(path string) string {
	return c.base.String() + path
}

// cookieStorageKey holds the jar's session cookie in durable storage, the
// way a browser keeps its cookie file between runs.
const cookieStorageKey = "cookie:" + domain.SessionCookieName

// LoadCookies restores the session cookie saved by SaveCookies.
func (c *Client) LoadCookies(ctx context.Context, storage ports.SessionStorage) error {
	entries, err := storage.Get(ctx, cookieStorageKey)
	if err != nil {
		return fmt.Errorf("loading cookies: %w", err)
	}
	if v := entries[cookieStorageKey]; v != "" {
		c.httpClient.Jar.SetCookies(c.base, []*http.Cookie{{
			Name:  domain.SessionCookieName,
			Value: v,
			Path:  "/",
		}})
	}
	return nil
}

// SaveCookies persists the jar's session cookie, or erases it when the jar
// has none.
func (c *Client) SaveCookies(ctx context.Context, storage ports.SessionStorage) error {
	for _, ck := range c.httpClient.Jar.Cookies(c.base) {
		if ck.Name == domain.SessionCookieName && ck.Value != "" {
			return storage.Put(ctx, map[string]string{cookieStorageKey: ck.Value})
		}
	}
	return storage.Delete(ctx, cookieStorageKey)
}
