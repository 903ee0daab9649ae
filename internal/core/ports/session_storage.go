package ports

import "context"

//go:generate mockgen -source=session_storage.go -destination=mocks/mock_session_storage.go -package=mocks

// SessionStorage is durable client key/value storage (the browser's
// localStorage equivalent). Put writes every entry or none.
type SessionStorage interface {
	// Get returns the values present for keys; missing keys are absent
	// from the map rather than reported as errors.
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Put(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}
