// Package backend selects and constructs the configured storage backend.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"splittracker/internal/store"
	memstore "splittracker/internal/store/memory"
	mongostore "splittracker/internal/store/mongo"
	sqlitestore "splittracker/internal/store/sqlite"
)

// Type names a storage backend.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
	Mongo  Type = "mongo"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Mongo:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{Memory, SQLite, Mongo}
}

// Config holds what each backend needs to come up.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Mongo specific
	MongoURI    string
	MongoDBName string

	// Memory specific
	SeedSampleData bool
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case Mongo:
		if c.MongoURI == "" {
			return fmt.Errorf("Mongo URI is required for mongo backend")
		}
		if c.MongoDBName == "" {
			return fmt.Errorf("Mongo database name is required for mongo backend")
		}
	case Memory:
		// No additional requirements.
	}
	return nil
}

// Open constructs the configured store. The returned store owns its
// resources; callers close it on shutdown.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case SQLite:
		s, err := sqlitestore.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return s, nil

	case Mongo:
		s, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, fmt.Errorf("initialize mongo backend: %w", err)
		}
		logger.Info("Initialized Mongo backend", "database", cfg.MongoDBName)
		return s, nil

	default:
		var s store.Store
		if cfg.SeedSampleData {
			s = memstore.NewSeeded()
		} else {
			s = memstore.New()
		}
		logger.Info("Initialized memory backend", "seeded", cfg.SeedSampleData)
		return s, nil
	}
}
