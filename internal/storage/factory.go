package storage

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/config"
)

// Open creates the Store selected by cfg.DataBackend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.DataBackend {
	case "mongo":
		store, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("initialize mongo store: %w", err)
		}
		logger.Info("Initialized backend", "backend", "mongo", "database", cfg.MongoDatabase)
		return store, nil
	case "sqlite":
		store, err := NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized backend", "backend", "sqlite", "db_path", cfg.SQLiteDBPath)
		return store, nil
	case "memory":
		logger.Info("Initialized backend", "backend", "memory")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported data backend %q", cfg.DataBackend)
	}
}
