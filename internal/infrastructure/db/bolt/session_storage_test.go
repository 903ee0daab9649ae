package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorage(t *testing.T) *SessionStorage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNestedDirectory(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "sub", "session.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestGet_MissingKeysAreAbsent(t *testing.T) {
	s := testStorage(t)

	got, err := s.Get(context.Background(), "auth_token", "user")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPutGetDelete_RoundTrip(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, map[string]string{"auth_token": "t1", "user": `{"id":"1","username":"alice"}`}))

	got, err := s.Get(ctx, "auth_token", "user")
	require.NoError(t, err)
	assert.Equal(t, "t1", got["auth_token"])
	assert.Equal(t, `{"id":"1","username":"alice"}`, got["user"])

	require.NoError(t, s.Delete(ctx, "auth_token", "user"))
	got, err = s.Get(ctx, "auth_token", "user")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Put(ctx, map[string]string{"auth_token": "persist-me"}))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, "persist-me", got["auth_token"])
}

func TestDelete_MissingKeyIsNotAnError(t *testing.T) {
	s := testStorage(t)
	assert.NoError(t, s.Delete(context.Background(), "nope"))
}
