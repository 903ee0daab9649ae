package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
)

const keyCollection = "rsa_keys"

// KeyRepository stores named RSA key pairs keyed by name.
type KeyRepository struct {
	coll *mongo.Collection
}

var _ ports.KeyRepository = (*KeyRepository)(nil)

func NewKeyRepository(db *mongo.Database) *KeyRepository {
	return &KeyRepository{coll: db.Collection(keyCollection)}
}

type mongoKeyPair struct {
	Name          string `bson:"_id"`
	PrivateKeyPEM string `bson:"private_key"`
	PublicKeyPEM  string `bson:"public_key"`
	CreatedAt     int64  `bson:"created_at"`
}

func (r *KeyRepository) FindByName(ctx context.Context, name string) (*domain.KeyPair, error) {
	var doc mongoKeyPair
	if err := r.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("find key: %w", err)
	}
	return &domain.KeyPair{Name: doc.Name, PrivateKeyPEM: doc.PrivateKeyPEM, PublicKeyPEM: doc.PublicKeyPEM}, nil
}

// Save inserts kp only if no pair with that name exists ($setOnInsert), then
// returns whatever is stored.
func (r *KeyRepository) Save(ctx context.Context, kp *domain.KeyPair) (*domain.KeyPair, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"private_key": kp.PrivateKeyPEM,
		"public_key":  kp.PublicKeyPEM,
		"created_at":  time.Now().UTC().Unix(),
	}}

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": kp.Name}, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("save key: %w", err)
	}
	return r.FindByName(ctx, kp.Name)
}
