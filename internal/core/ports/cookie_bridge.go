package ports

import "context"

// CookieBridge hands a session token to the server side, where it is kept
// as an HTTP-only cookie. An empty token clears the cookie.
type CookieBridge interface {
	SetToken(ctx context.Context, token string) error
}
