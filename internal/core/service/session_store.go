package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/financevault/internal/api/metrics"
	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

// ClientSessionStore holds the client copy of the session: a single
// observable AuthState mirrored into durable storage.
//
// A nil storage means there is no durable client context (for example while
// rendering on the server); every mutator then skips persistence and only
// updates the in-memory state.
type ClientSessionStore struct {
	storage ports.SessionStorage
	log     zerolog.Logger

	mu     sync.Mutex
	state  domain.AuthState
	subs   map[int]func(domain.AuthState)
	nextID int
}

// NewClientSessionStore returns a store in the empty state.
func NewClientSessionStore(storage ports.SessionStorage, log zerolog.Logger) *ClientSessionStore {
	return &ClientSessionStore{
		storage: storage,
		log:     log,
		state:   domain.EmptyAuthState(),
		subs:    make(map[int]func(domain.AuthState)),
	}
}

// State returns a snapshot of the current AuthState.
func (s *ClientSessionStore) State() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Subscribe registers fn for every published state. fn is called immediately
// with the current state. The returned func unsubscribes.
func (s *ClientSessionStore) Subscribe(fn func(domain.AuthState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := cloneState(s.state)
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Login persists token and user, then publishes an authenticated state. If
// persistence fails nothing is published and the error is returned.
func (s *ClientSessionStore) Login(ctx context.Context, user domain.User, token string) error {
	if s.storage != nil {
		payload, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("session store: encode user: %w", err)
		}
		if err := s.storage.Put(ctx, map[string]string{
			domain.StorageTokenKey: token,
			domain.StorageUserKey:  string(payload),
		}); err != nil {
			return fmt.Errorf("session store: persist: %w", err)
		}
	}

	s.publish(func(domain.AuthState) domain.AuthState {
		return domain.AuthenticatedState(user, token)
	})
	metrics.ClientSessionEventsTotal.WithLabelValues("login").Inc()
	return nil
}

// Logout erases the durable entries and publishes the empty state. The empty
// state is published even when erasing fails; the storage error is returned.
func (s *ClientSessionStore) Logout(ctx context.Context) error {
	var err error
	if s.storage != nil {
		if derr := s.storage.Delete(ctx, domain.StorageTokenKey, domain.StorageUserKey); derr != nil {
			err = fmt.Errorf("session store: erase: %w", derr)
		}
	}

	s.publish(func(domain.AuthState) domain.AuthState {
		return domain.EmptyAuthState()
	})
	metrics.ClientSessionEventsTotal.WithLabelValues("logout").Inc()
	return err
}

// SetLoading publishes the current state with only the loading flag changed.
func (s *ClientSessionStore) SetLoading(loading bool) {
	s.publish(func(st domain.AuthState) domain.AuthState {
		st.IsLoading = loading
		return st
	})
}

// Initialize rehydrates from durable storage. It never fails: unreadable or
// unparseable entries are logged and the store falls back to the empty
// state. When either entry is missing the state is left as it is.
func (s *ClientSessionStore) Initialize(ctx context.Context) {
	if s.storage == nil {
		return
	}

	entries, err := s.storage.Get(ctx, domain.StorageTokenKey, domain.StorageUserKey)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read stored session")
		s.fallBack()
		return
	}

	token := entries[domain.StorageTokenKey]
	raw := entries[domain.StorageUserKey]
	if token == "" || raw == "" {
		return
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Error().Err(err).Msg("failed to parse stored user data")
		s.fallBack()
		return
	}

	s.publish(func(domain.AuthState) domain.AuthState {
		return domain.AuthenticatedState(user, token)
	})
	metrics.ClientSessionEventsTotal.WithLabelValues("rehydrated").Inc()
	s.log.Debug().Str("username", user.Username).Msg("session rehydrated")
}

func (s *ClientSessionStore) fallBack() {
	metrics.ClientSessionEventsTotal.WithLabelValues("rehydrate_failed").Inc()
	s.publish(func(domain.AuthState) domain.AuthState {
		return domain.EmptyAuthState()
	})
}

// publish applies update under the lock and notifies subscribers outside it.
func (s *ClientSessionStore) publish(update func(domain.AuthState) domain.AuthState) {
	s.mu.Lock()
	s.state = update(cloneState(s.state))
	next := cloneState(s.state)
	subs := make([]func(domain.AuthState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func cloneState(st domain.AuthState) domain.AuthState {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
