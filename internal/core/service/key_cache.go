package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/api/metrics"
	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

// KeyCache memoizes the backend public key for the life of the process.
//
// Callers racing before the first successful fetch are not deduplicated: each
// may issue its own request, and the first non-empty result stored wins. Once
// set, the key is returned without further network activity until Reset.
type KeyCache struct {
	source ports.PublicKeySource
	log    zerolog.Logger

	mu  sync.RWMutex
	key string
}

// NewKeyCache returns an empty cache backed by source.
func NewKeyCache(source ports.PublicKeySource, log zerolog.Logger) *KeyCache {
	return &KeyCache{source: source, log: log}
}

// Get returns the cached key, fetching it on first use.
func (c *KeyCache) Get(ctx context.Context) (string, error) {
	c.mu.RLock()
	key := c.key
	c.mu.RUnlock()
	if key != "" {
		metrics.PublicKeyFetchesTotal.WithLabelValues("hit").Inc()
		return key, nil
	}

	fetched, err := c.source.FetchPublicKey(ctx)
	if err != nil {
		metrics.PublicKeyFetchesTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("key cache: %w", err)
	}
	if fetched == "" {
		metrics.PublicKeyFetchesTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("key cache: %w: empty key", domain.ErrKeyUnavailable)
	}
	metrics.PublicKeyFetchesTotal.WithLabelValues("fetched").Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == "" {
		c.key = fetched
		c.log.Debug().Msg("public key cached")
	}
	return c.key, nil
}

// Reset forgets the cached key. Used after an encryption failure, which
// points at a corrupted cache rather than a connectivity problem. It is a
// no-op on a nil cache.
func (c *KeyCache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key != "" {
		c.log.Warn().Msg("public key cache reset")
	}
	c.key = ""
}
