package pagecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type snapshotDoc struct {
	Key         string    `bson:"_id"`
	Body        []byte    `bson:"body"`
	GeneratedAt time.Time `bson:"generated_at"`
}

// MongoStore keeps zstd-compressed snapshots in a MongoDB collection, one
// document per page key.
type MongoStore struct {
	coll       *mongo.Collection
	compressor Compressor
}

func NewMongoStore(coll *mongo.Collection, compressor Compressor) *MongoStore {
	if compressor == nil {
		compressor = &ZstdCompressor{}
	}
	return &MongoStore{coll: coll, compressor: compressor}
}

func (s *MongoStore) Get(ctx context.Context, key string) (Snapshot, bool, error) {
	var doc snapshotDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("find snapshot %s: %w", key, err)
	}
	body, err := s.compressor.Decompress(doc.Body)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("decompress snapshot %s: %w", key, err)
	}
	return Snapshot{Key: doc.Key, Body: body, GeneratedAt: doc.GeneratedAt}, true, nil
}

func (s *MongoStore) Put(ctx context.Context, snap Snapshot) error {
	body, err := s.compressor.Compress(snap.Body)
	if err != nil {
		return fmt.Errorf("compress snapshot %s: %w", snap.Key, err)
	}
	doc := snapshotDoc{Key: snap.Key, Body: body, GeneratedAt: snap.GeneratedAt.UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": snap.Key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", snap.Key, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}}); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

func (s *MongoStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}

// Close is a no-op; the Mongo client is owned by package db.
func (s *MongoStore) Close(context.Context) error { return nil }
