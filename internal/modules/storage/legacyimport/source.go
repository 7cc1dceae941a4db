package legacyimport

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Source streams raw documents from a legacy collection.
type Source interface {
	Each(ctx context.Context, collection string, fn func(bson.M) error) error
}

// MongoSource reads from a live MongoDB database.
type MongoSource struct {
	client *mongo.Client
	db     *mongo.Database
}

func ConnectMongo(ctx context.Context, uri, database string) (*MongoSource, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if database == "" {
		database = defaultDatabase(uri)
	}
	return &MongoSource{client: client, db: client.Database(database)}, nil
}

func (m *MongoSource) Each(ctx context.Context, collection string, fn func(bson.M) error) error {
	cur, err := m.db.Collection(collection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return cur.Err()
}

func (m *MongoSource) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// defaultDatabase picks the database named in the URI path, or "test" like mongoose does.
func defaultDatabase(uri string) string {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return "test"
	}
	return cs.Database
}
