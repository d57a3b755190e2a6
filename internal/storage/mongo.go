package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type snapshotDocument struct {
	SessionID string       `bson:"session_id"`
	Cart      *domain.Cart `bson:"cart"`
	Timestamp int64        `bson:"timestamp"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// MongoStorage keeps one document per session in the carts collection.
type MongoStorage struct {
	collection *mongo.Collection
	expiry     time.Duration
}

func NewMongoStorage(db *mongo.Database, expiry time.Duration) *MongoStorage {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &MongoStorage{
		collection: db.Collection("carts"),
		expiry:     expiry,
	}
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func (m *MongoStorage) Get(ctx context.Context, key string) (*domain.StorageSnapshot, error) {
	var doc snapshotDocument
	err := m.collection.FindOne(ctx, bson.M{"session_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotMiss
		}
		return nil, fmt.Errorf("failed to get cart snapshot: %w", err)
	}

	return &domain.StorageSnapshot{Cart: doc.Cart, Timestamp: doc.Timestamp}, nil
}

func (m *MongoStorage) Put(ctx context.Context, key string, snapshot *domain.StorageSnapshot) error {
	doc := snapshotDocument{
		SessionID: key,
		Cart:      snapshot.Cart,
		Timestamp: snapshot.Timestamp,
		UpdatedAt: time.UnixMilli(snapshot.Timestamp),
	}

	filter := bson.M{"session_id": key}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart snapshot: %w", err)
	}
	return nil
}

func (m *MongoStorage) Delete(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"session_id": key}); err != nil {
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}

func (m *MongoStorage) Ping(ctx context.Context) error {
	return m.collection.Database().Client().Ping(ctx, nil)
}

// CreateIndexes makes session ids unique and lets MongoDB drop snapshots past the expiry window.
func (m *MongoStorage) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(m.expiry.Seconds())),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
