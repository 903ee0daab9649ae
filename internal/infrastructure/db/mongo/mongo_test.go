package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/financevault/internal/core/domain"
)

// testDB connects to MONGO_TEST_URI with a throwaway database, or skips.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	client, db, err := Connect(ctx, Config{
		URI:      uri,
		Database: "financevault_test_" + uuid.NewString()[:8],
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestAccountRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewAccountRepository(db)

	created, err := repo.Create(ctx, &domain.Account{
		ID:           uuid.NewString(),
		Username:     "alice",
		PasswordHash: "hash",
		Salt:         "salt",
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.Create(ctx, &domain.Account{ID: uuid.NewString(), Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestKeyRepository_FirstSaveWins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewKeyRepository(db)

	_, err := repo.FindByName(ctx, "main")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	first, err := repo.Save(ctx, &domain.KeyPair{Name: "main", PrivateKeyPEM: "priv-1", PublicKeyPEM: "pub-1"})
	require.NoError(t, err)
	assert.Equal(t, "priv-1", first.PrivateKeyPEM)

	second, err := repo.Save(ctx, &domain.KeyPair{Name: "main", PrivateKeyPEM: "priv-2", PublicKeyPEM: "pub-2"})
	require.NoError(t, err)
	assert.Equal(t, "priv-1", second.PrivateKeyPEM)
	assert.Equal(t, "pub-1", second.PublicKeyPEM)
}

func TestUnixToTime(t *testing.T) {
	assert.True(t, unixToTime(0).IsZero())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), unixToTime(1700000000))
}
