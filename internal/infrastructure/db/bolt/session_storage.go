// Package bolt persists the client session in a bbolt profile file, the
// durable storage used by the command-line client.
package bolt

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/99minutos/financevault/internal/core/ports"
)

const (
	profileDirPerm  = fs.FileMode(0o700)
	profileFilePerm = fs.FileMode(0o600)
	openTimeout     = 5 * time.Second
)

var sessionBucket = []byte("session")

// SessionStorage is a ports.SessionStorage over a single bucket. Each Put
// and Delete runs in one bolt transaction, so entries change together.
type SessionStorage struct {
	db *bolt.DB
}

var _ ports.SessionStorage = (*SessionStorage)(nil)

// Open opens (or creates) the profile database at path.
func Open(path string) (*SessionStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), profileDirPerm); err != nil {
		return nil, fmt.Errorf("creating profile directory: %w", err)
	}

	db, err := bolt.Open(path, profileFilePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening profile db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing profile db: %w", err)
	}

	return &SessionStorage{db: db}, nil
}

// DefaultPath is ~/.financevault/session.db.
func DefaultPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(dir, ".financevault", "session.db"), nil
}

func (s *SessionStorage) Close() error {
	return s.db.Close()
}

func (s *SessionStorage) Get(_ context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		for _, k := range keys {
			if v := b.Get([]byte(k)); v != nil {
				out[k] = string(v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return out, nil
}

func (s *SessionStorage) Put(_ context.Context, entries map[string]string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		for k, v := range entries {
			if err := b.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

func (s *SessionStorage) Delete(_ context.Context, keys ...string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
