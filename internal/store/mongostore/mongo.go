// Package mongostore implements the user, task and record repositories on
// MongoDB. Documents use UUID strings as _id so ids look the same as with
// the postgres backend.
package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	defaultConnectTimeout = 10 * time.Second

	usersCollection   = "users"
	tasksCollection   = "tasks"
	recordsCollection = "records"
)

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// DatabaseName returns the database named in the URI path, or fallback.
func DatabaseName(uri, fallback string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("invalid mongo uri: %w", err)
	}
	if name := strings.TrimSpace(cs.Database); name != "" {
		return name, nil
	}
	return fallback, nil
}

// EnsureIndexes creates the unique user name index and the per-user
// creation-time indexes used by list and report queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_name_key"),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	perUser := bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}}
	if _, err := db.Collection(tasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    perUser,
		Options: options.Index().SetName("tasks_user_created_idx"),
	}); err != nil {
		return fmt.Errorf("create tasks index: %w", err)
	}
	if _, err := db.Collection(recordsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    perUser,
		Options: options.Index().SetName("records_user_created_idx"),
	}); err != nil {
		return fmt.Errorf("create records index: %w", err)
	}
	return nil
}

// now truncates to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
