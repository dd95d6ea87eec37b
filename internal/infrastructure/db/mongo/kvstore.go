package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionStorage = "local_storage"

// KeyValueStore keeps session keys as {_id: key, value: value} documents.
type KeyValueStore struct {
	col *mongo.Collection
}

func NewKeyValueStore(db *mongo.Database) *KeyValueStore {
	return &KeyValueStore{col: db.Collection(collectionStorage)}
}

type storageEntry struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry storageEntry
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find storage key %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	_, err := s.col.ReplaceOne(ctx,
		bson.M{"_id": key},
		storageEntry{Key: key, Value: value},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert storage key %s: %w", key, err)
	}
	return nil
}

func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete storage key %s: %w", key, err)
	}
	return nil
}
