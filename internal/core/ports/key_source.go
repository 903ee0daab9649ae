package ports

import "context"

//go:generate mockgen -source=key_source.go -destination=mocks/mock_key_source.go -package=mocks

// PublicKeySource retrieves the backend's PEM encoded public key. A non-2xx
// answer is reported as domain.ErrKeyUnavailable.
type PublicKeySource interface {
	FetchPublicKey(ctx context.Context) (string, error)
}
