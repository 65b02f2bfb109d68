package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datatable/internal/config"
)

// runStoreTests exercises the contract every store shares.
func runStoreTests(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, found, err := s.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "views", `[{"id":"a"}]`))
		v, found, err := s.Get(ctx, "views")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `[{"id":"a"}]`, v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "views", `[]`))
		require.NoError(t, s.Set(ctx, "views", `[{"id":"b"}]`))
		v, _, err := s.Get(ctx, "views")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"b"}]`, v)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "one", `[1]`))
		require.NoError(t, s.Set(ctx, "two", `[2]`))
		v, _, err := s.Get(ctx, "one")
		require.NoError(t, err)
		assert.JSONEq(t, `[1]`, v)
	})

	t.Run("updated at", func(t *testing.T) {
		_, found, err := s.UpdatedAt(ctx, "never-written")
		require.NoError(t, err)
		assert.False(t, found)

		before := time.Now().Add(-time.Second)
		require.NoError(t, s.Set(ctx, "stamped", `[]`))
		at, found, err := s.UpdatedAt(ctx, "stamped")
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, at.After(before), "updated at %v", at)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

// =============================================================================
// Memory
// =============================================================================

func TestMemory(t *testing.T) {
	runStoreTests(t, NewMemory())
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	assert.Error(t, m.Set(ctx, "k", "v"))
	_, _, err := m.Get(ctx, "k")
	assert.Error(t, err)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Set(ctx, "k", "[]")
			_, _, _ = m.Get(ctx, "k")
		}()
	}
	wg.Wait()

	_, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
}

// =============================================================================
// SQLite
// =============================================================================

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "views.db"))
	require.NoError(t, err)
	defer s.Close()

	runStoreTests(t, s)
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "views.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "views", `[{"id":"x"}]`))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, found, err := s.Get(ctx, "views")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"id":"x"}]`, v)
}

// =============================================================================
// Postgres
// =============================================================================

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	p, err := OpenPostgres(ctx, config.StorageConfig{URL: dsn, MaxConns: 2, MinConns: 1})
	require.NoError(t, err)
	defer p.Close()

	runStoreTests(t, p)
}

// =============================================================================
// Open
// =============================================================================

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, config.StorageConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "v.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.StorageConfig{Driver: "redis"})
	assert.ErrorContains(t, err, "unknown storage driver")
}
