// Package storage provides the key-value stores that persist saved views.
//
// Every store implements core.Storage. Memory keeps values for the life of
// the process, SQLite keeps them in a local file and Postgres keeps them in a
// shared table so several servers see the same views.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/datatable/internal/config"
	"github.com/JonMunkholm/datatable/internal/core"
)

// Store is a core.Storage that holds resources until closed.
type Store interface {
	core.Storage
	io.Closer
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	// UpdatedAt returns when key was last written. found is false when absent.
	UpdatedAt(ctx context.Context, key string) (at time.Time, found bool, err error)
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
