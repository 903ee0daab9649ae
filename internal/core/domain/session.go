package domain

import "time"

const (
	// SessionCookieName is the server-visible copy of the session token.
	SessionCookieName = "auth_token"
	// SessionCookieMaxAge is the cookie lifetime (7 days).
	SessionCookieMaxAge = 7 * 24 * time.Hour

	// StorageTokenKey and StorageUserKey are the durable client entries.
	// They are always written and cleared together.
	StorageTokenKey = "auth_token"
	StorageUserKey  = "user"
)

// AuthState is the client-side view model. IsAuthenticated is derived by the
// store mutators and is never set on its own.
type AuthState struct {
	User            *User  `json:"user"`
	Token           string `json:"token,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
	IsLoading       bool   `json:"is_loading"`
}

// EmptyAuthState is the state of a fresh or logged-out client.
func EmptyAuthState() AuthState {
	return AuthState{}
}

// AuthenticatedState builds the state published after a login or a
// successful rehydration.
func AuthenticatedState(user User, token string) AuthState {
	return AuthState{
		User:            &user,
		Token:           token,
		IsAuthenticated: true,
	}
}

// TokenFingerprint returns a short, non-reversible label for logs.
func TokenFingerprint(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
