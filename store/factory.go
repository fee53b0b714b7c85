package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"enquirysync/config"
)

// NewBundle creates a store Bundle based on the storage configuration
func NewBundle(ctx context.Context, cfg *config.StorageConfig) (*Bundle, error) {
	if cfg == nil {
		return NewMemoryBundle(), nil
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		// Ensure directory exists
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
		}
		return NewSQLiteBundle(cfg.Path)

	case config.BackendPostgres:
		return NewPostgresBundle(ctx, cfg.DSN)

	case config.BackendMemory, "":
		return NewMemoryBundle(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (expected 'memory', 'sqlite' or 'postgres')", cfg.Backend)
	}
}
