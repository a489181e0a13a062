package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for the MongoDB-backed durable tier.
type Config struct {
	URI        string
	Database   string
	Collection string
	Namespace  string
	Timeout    time.Duration
}

// Open establishes a MongoDB client, verifies connectivity with a ping, and
// returns a Store over the configured collection together with the client.
// A default timeout is applied when none is provided.
func Open(ctx context.Context, cfg Config) (*Store, *mongo.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	col := client.Database(cfg.Database).Collection(cfg.Collection)
	return NewStore(col, cfg.Namespace), client, nil
}
