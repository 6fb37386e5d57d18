package repository

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names.
const (
	UserCollection    = "users"
	SessionCollection = "sessions"
	SensorCollection  = "sensors"
	IspuCollection    = "ispus"
)

// NewDB connects to MongoDB at uri and returns the named database. A failed
// ping is logged but not fatal; the driver keeps reconnecting in the
// background and requests fail with 500 until the server is reachable.
func NewDB(ctx context.Context, uri, name string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		slog.Warn("database ping failed, continuing without DB", "error", err)
	}

	return client, client.Database(name), nil
}

// emailIndex is what turns a second registration into ErrDuplicateEmail.
var emailIndex = mongo.IndexModel{
	Keys:    bson.D{{Key: "email", Value: 1}},
	Options: options.Index().SetUnique(true),
}

// EnsureIndexes creates the indexes the queries rely on. UserRepository
// also creates the email index itself before its first insert, so a server
// that was down at startup still gets it.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]mongo.IndexModel{
		UserCollection: emailIndex,
		SessionCollection: {
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
		SensorCollection: {
			Keys: bson.D{{Key: "payload.dateTime", Value: -1}},
		},
		IspuCollection: {
			Keys: bson.D{{Key: "payload.dateTime", Value: -1}},
		},
	}

	for coll, model := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

func collection(db *mongo.Database, name string) *mongo.Collection {
	if db == nil {
		return nil
	}
	return db.Collection(name)
}
