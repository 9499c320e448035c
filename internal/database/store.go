package database

import (
	"context"
	"fmt"
	"time"
)

// Store is a flat string key-value store. Values are opaque text (JSON in
// practice); a ttl of zero means the key never expires.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Backend names accepted by OpenStore.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// StoreOptions carries the connection strings for every backend; only the
// one matching Backend is used.
type StoreOptions struct {
	Backend     string
	RedisURI    string
	PostgresURI string
	MongoURI    string
}

// OpenStore connects to the selected backend and returns a Store plus a
// close function for shutdown.
func OpenStore(opts StoreOptions) (Store, func() error, error) {
	switch opts.Backend {
	case BackendRedis, "":
		if err := ConnectRedis(opts.RedisURI); err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisStore(RedisClient), DisconnectRedis, nil
	case BackendPostgres:
		if err := ConnectPostgres(opts.PostgresURI); err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPostgresStore(PostgresDB), DisconnectPostgres, nil
	case BackendMongo:
		if err := Connect(opts.MongoURI); err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		return NewMongoStore(DB.Collection(kvCollection)), Disconnect, nil
	case BackendMemory:
		return NewMemoryStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
