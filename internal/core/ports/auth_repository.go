package ports

import (
	"context"
	"time"

	"github.com/99minutos/financevault/internal/core/domain"
)

// AccountRepository persists identity backend accounts.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Create returns domain.ErrUserAlreadyExists on a username clash.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}

// KeyRepository stores named RSA key pairs.
type KeyRepository interface {
	// FindByName returns domain.ErrKeyNotFound when no key has that name.
	FindByName(ctx context.Context, name string) (*domain.KeyPair, error)
	// Save keeps the first pair stored under a name; a concurrent second
	// save returns the pair already stored.
	Save(ctx context.Context, kp *domain.KeyPair) (*domain.KeyPair, error)
}

// RevocationList remembers logged-out tokens until they would have expired.
type RevocationList interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
