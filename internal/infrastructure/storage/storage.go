// Package storage opens the key-value backend selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/core/ports"
	"github.com/autox/marketplace-client/internal/infrastructure/db/file"
	"github.com/autox/marketplace-client/internal/infrastructure/db/memory"
	mongodb "github.com/autox/marketplace-client/internal/infrastructure/db/mongo"
	redisdb "github.com/autox/marketplace-client/internal/infrastructure/db/redis"
	"github.com/autox/marketplace-client/internal/pkg/config"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backend is an opened key-value store plus the function releasing its
// connection.
type Backend struct {
	Store ports.KeyValueStore
	Name  string
	close func(context.Context) error
}

// Close releases the backend's connection. Safe to call on every backend.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the backend named by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.Storage.Backend {
	case BackendMemory:
		return &Backend{Store: memory.NewKeyValueStore(), Name: BackendMemory}, nil

	case BackendFile, "":
		path, err := cfg.Storage.SessionPath()
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("using file storage")
		return &Backend{Store: file.NewKeyValueStore(path), Name: BackendFile}, nil

	case BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		log.Debug().Str("addr", cfg.Redis.Addr).Msg("using redis storage")
		return &Backend{
			Store: redisdb.NewKeyValueStore(client, cfg.Storage.Namespace),
			Name:  BackendRedis,
			close: func(context.Context) error { return client.Close() },
		}, nil

	case BackendMongo:
		store, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		log.Debug().Str("database", cfg.Mongo.Database).Msg("using mongo storage")
		return &Backend{
			Store: mongodb.NewKeyValueStore(store.DB),
			Name:  BackendMongo,
			close: store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Storage.Backend)
	}
}
