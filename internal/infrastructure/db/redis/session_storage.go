package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/financevault/internal/core/ports"
)

// SessionStorage keeps client session entries under a per-profile key
// prefix, for headless clients that share state across processes.
// Key format: session:<profile>:<entry>
type SessionStorage struct {
	client *redis.Client
	prefix string
}

var _ ports.SessionStorage = (*SessionStorage)(nil)

func NewSessionStorage(client *redis.Client, profile string) *SessionStorage {
	if profile == "" {
		profile = "default"
	}
	return &SessionStorage{client: client, prefix: "session:" + profile + ":"}
}

func (s *SessionStorage) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := s.client.MGet(ctx, s.keys(keys)...).Result()
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[keys[i]] = str
		}
	}
	return out, nil
}

// Put writes all entries in one MULTI/EXEC.
func (s *SessionStorage) Put(ctx context.Context, entries map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, s.prefix+k, v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *SessionStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, s.keys(keys)...).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStorage) keys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = s.prefix + k
	}
	return out
}
