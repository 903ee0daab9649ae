// Package memory holds in-process implementations of the storage ports. They
// back the development identity backend when no Mongo/Redis is configured and
// the client runtime when no durable profile is wanted.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

var (
	_ ports.AccountRepository = (*AccountRepository)(nil)
	_ ports.KeyRepository     = (*KeyRepository)(nil)
	_ ports.RevocationList    = (*RevocationList)(nil)
	_ ports.SessionStorage    = (*SessionStorage)(nil)
)

// AccountRepository keeps accounts indexed by username and ID.
type AccountRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.Account
	byID       map[string]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byUsername: make(map[string]*domain.Account),
		byID:       make(map[string]*domain.Account),
	}
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUsername[account.Username]; exists {
		return nil, domain.ErrUserAlreadyExists
	}
	stored := *account
	r.byUsername[stored.Username] = &stored
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *a
	return &out, nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *a
	return &out, nil
}

// KeyRepository keeps named key pairs.
type KeyRepository struct {
	mu   sync.Mutex
	keys map[string]domain.KeyPair
}

func NewKeyRepository() *KeyRepository {
	return &KeyRepository{keys: make(map[string]domain.KeyPair)}
}

func (r *KeyRepository) FindByName(_ context.Context, name string) (*domain.KeyPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kp, ok := r.keys[name]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return &kp, nil
}

func (r *KeyRepository) Save(_ context.Context, kp *domain.KeyPair) (*domain.KeyPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.keys[kp.Name]; ok {
		return &existing, nil
	}
	r.keys[kp.Name] = *kp
	out := *kp
	return &out, nil
}

// RevocationList remembers revoked tokens until their expiry.
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{entries: make(map[string]time.Time), now: time.Now}
}

func (l *RevocationList) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep()
	l.entries[token] = expiresAt
	return nil
}

func (l *RevocationList) IsRevoked(_ context.Context, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	exp, ok := l.entries[token]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && l.now().After(exp) {
		delete(l.entries, token)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries; callers hold l.mu.
func (l *RevocationList) sweep() {
	now := l.now()
	for tok, exp := range l.entries {
		if !exp.IsZero() && now.After(exp) {
			delete(l.entries, tok)
		}
	}
}

// SessionStorage is a volatile ports.SessionStorage.
type SessionStorage struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{entries: make(map[string]string)}
}

func (s *SessionStorage) Get(_ context.Context, keys ...string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.entries[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *SessionStorage) Put(_ context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.entries[k] = v
	}
	return nil
}

func (s *SessionStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}
