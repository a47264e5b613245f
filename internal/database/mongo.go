package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongo connects to the audit-log database. Simulation processing
// records go into collections of this database, never into postgres.
func NewMongo(ctx context.Context) (*mongo.Database, error) {
	uri := getenv("MONGO_URI", "mongodb://localhost:27017")
	name := getenv("MONGO_DATABASE", "charges")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(name), nil
}
