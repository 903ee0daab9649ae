package ports

import (
	"context"

	"github.com/99minutos/financevault/internal/core/domain"
)

// AuthTransport performs the raw backend exchanges. It only ever sees
// encrypted credentials and maps status codes onto the domain error taxonomy.
type AuthTransport interface {
	PublicKeySource
	Register(ctx context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error)
	Login(ctx context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

// AuthClient is the key-fetch, encrypt, exchange sequence shared by every
// call site (client runtime and server-rendered form actions).
type AuthClient interface {
	Register(ctx context.Context, username, password string) (*domain.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*domain.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

// KeyResetter drops a cached public key so the next call refetches it.
type KeyResetter interface {
	Reset()
}
