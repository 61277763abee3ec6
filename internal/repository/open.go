package repository

import (
	"context"
	"fmt"

	"github.com/mhhmod/tes3/pkg/config"
	"go.uber.org/zap"
)

// Open builds the store named by cfg.StoreBackend. The returned close func
// releases backend connections and is never nil.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.StoreBackend {
	case "", "memory":
		logger.Info("Using in-memory state store")
		return NewMemoryStore(), noop, nil
	case "file":
		s, err := NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Using file state store", zap.String("dir", cfg.StoreDir))
		return s, noop, nil
	case "dynamodb":
		client, err := NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		logger.Info("Using DynamoDB state store",
			zap.String("table", cfg.StateTableName),
			zap.String("region", cfg.AWSRegion))
		return NewDynamoStore(client, cfg.StateTableName), noop, nil
	case "mongo", "mongodb":
		s, err := NewMongoStore(ctx, cfg.MongoDBURI, cfg.DatabaseName)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Using MongoDB state store", zap.String("database", cfg.DatabaseName))
		return s, s.Close, nil
	case "postgres":
		s, err := NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Using Postgres state store")
		return s, func(context.Context) error { return s.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
