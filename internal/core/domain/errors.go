package domain

import "errors"

// Protocol errors. Transport and encryption failures always reach the
// immediate caller as one of these.
var (
	ErrKeyUnavailable     = errors.New("public key unavailable")
	ErrEncryption         = errors.New("password encryption failed")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrLoginFailed        = errors.New("login failed")
	ErrLogoutFailed       = errors.New("logout failed")
)

// ErrSessionSync reports that the cookie copy and the client copy of the
// session token could not be kept in step.
var ErrSessionSync = errors.New("session copies out of sync")

// Identity backend errors.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrKeyNotFound   = errors.New("key not found")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrInvalidToken  = errors.New("invalid token")
	ErrBadCiphertext = errors.New("invalid encrypted data")
)

// IsExpected reports whether err is a business outcome (shown to the user,
// not logged as an anomaly).
func IsExpected(err error) bool {
	return errors.Is(err, ErrUserAlreadyExists) || errors.Is(err, ErrInvalidCredentials)
}
