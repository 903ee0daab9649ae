package ports

import (
	"context"

	"github.com/99minutos/financevault/internal/core/domain"
)

// TokenClaims is what the identity backend embeds in issued tokens.
type TokenClaims struct {
	UserID    string
	Username  string
	ExpiresAt int64
}

// IdentityService is the development identity backend: it owns the RSA key
// pair, decrypts submitted passwords and issues bearer tokens.
type IdentityService interface {
	PublicKey(ctx context.Context) (string, error)
	Register(ctx context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error)
	Login(ctx context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*TokenClaims, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}
