package domain

import "time"

// User is the identity the backend returns on register/login. It is cached
// verbatim on the client and never validated independently.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is the body of a successful register or login exchange.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// User returns the denormalized user record carried by the response.
func (r AuthResponse) User() User {
	return User{ID: r.UserID, Username: r.Username}
}

// Credentials only lives for the duration of an encrypt call.
type Credentials struct {
	Username          string
	PlaintextPassword string
}

// EncryptedCredentials is the only credential shape that leaves the process.
type EncryptedCredentials struct {
	Username          string `json:"username"`
	EncryptedPassword string `json:"encrypted_password"`
}

// Account is the backend-side record kept by the development identity
// backend. The password hash covers password+salt.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// KeyPair is a named RSA key pair held by the identity backend, PEM encoded.
type KeyPair struct {
	Name          string
	PrivateKeyPEM string
	PublicKeyPEM  string
}
