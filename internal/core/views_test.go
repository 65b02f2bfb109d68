package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Storage
// ============================================================================

type mapStorage struct {
	mu      sync.Mutex
	data    map[string]string
	failSet error
	failGet error
	sets    int
}

func newMapStorage() *mapStorage {
	return &mapStorage{data: map[string]string{}}
}

func (s *mapStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return "", false, s.failGet
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.failSet != nil {
		return s.failSet
	}
	s.data[key] = value
	return nil
}

func (s *mapStorage) stored(t *testing.T, key string) []ViewState {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var views []ViewState
	if raw, ok := s.data[key]; ok {
		require.NoError(t, json.Unmarshal([]byte(raw), &views))
	}
	return views
}

func viewsDefinition() *Definition {
	def := rowModelDefinition()
	def.Options.Features.CustomViews = true
	def.Options.ViewStorageKey = "orders-views"
	return def
}

func newTestManager(def *Definition, storage Storage) *ViewManager {
	vm := NewViewManager(def, storage)
	n := 0
	vm.NewID = func() string {
		n++
		return fmt.Sprintf("view-%d", n)
	}
	return vm
}

// ============================================================================
// Save Tests
// ============================================================================

func TestViewManager_Disabled(t *testing.T) {
	def := rowModelDefinition()
	vm := NewViewManager(def, newMapStorage())

	assert.False(t, vm.Enabled())
	assert.Nil(t, vm.Load(context.Background()))

	_, _, err := vm.Save(context.Background(), "Mine", false, DefaultState(def))
	assert.ErrorIs(t, err, ErrViewsDisabled)
}

func TestViewManager_Save(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()

	var changed []ViewState
	def.Options.OnViewChange = func(v ViewState) { changed = append(changed, v) }

	vm := newTestManager(def, storage)
	vm.Load(context.Background())

	st := DefaultState(def).WithColumnToggled("notes").WithPageSize(20)
	view, next, err := vm.Save(context.Background(), "  Compact  ", false, st)
	require.NoError(t, err)

	assert.Equal(t, "view-1", view.ID)
	assert.Equal(t, "Compact", view.Name)
	assert.Equal(t, 20, view.PageSize)
	assert.False(t, view.ColumnVisibility["notes"])
	assert.True(t, view.ColumnVisibility["name"])
	assert.Equal(t, "view-1", next.CurrentViewID)

	cur, ok := vm.Current()
	require.True(t, ok)
	assert.Equal(t, "view-1", cur.ID)

	stored := storage.stored(t, "orders-views")
	require.Len(t, stored, 1)
	assert.Equal(t, "Compact", stored[0].Name)

	require.Len(t, changed, 1)
	assert.Equal(t, "view-1", changed[0].ID)
}

func TestViewManager_SaveEmptyName(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	vm := newTestManager(def, storage)

	_, _, err := vm.Save(context.Background(), "   ", false, DefaultState(def))
	assert.ErrorIs(t, err, ErrEmptyViewName)
	assert.Empty(t, storage.stored(t, "orders-views"))
}

func TestViewManager_SaveStorageFailure(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	storage.failSet = errors.New("disk full")
	vm := newTestManager(def, storage)

	_, st, err := vm.Save(context.Background(), "Mine", false, DefaultState(def))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, st.CurrentViewID)
	assert.Empty(t, vm.Views())
}

func TestViewManager_SaveReadFailureKeepsStoredViews(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	ctx := context.Background()
	vm := newTestManager(def, storage)

	_, _, err := vm.Save(ctx, "Existing", false, DefaultState(def))
	require.NoError(t, err)
	require.Equal(t, 1, storage.sets)

	storage.failGet = context.DeadlineExceeded
	_, st, err := vm.Save(ctx, "New", false, DefaultState(def))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, st.CurrentViewID)
	assert.Equal(t, 1, storage.sets, "nothing written after a failed read")

	storage.failGet = nil
	stored := storage.stored(t, "orders-views")
	require.Len(t, stored, 1)
	assert.Equal(t, "Existing", stored[0].Name)
}

func TestViewManager_AtMostOneDefault(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	vm := newTestManager(def, storage)
	ctx := context.Background()
	st := DefaultState(def)

	_, _, err := vm.Save(ctx, "First", true, st)
	require.NoError(t, err)
	_, _, err = vm.Save(ctx, "Plain", false, st)
	require.NoError(t, err)
	_, _, err = vm.Save(ctx, "Second", true, st)
	require.NoError(t, err)

	defaults := 0
	for _, v := range storage.stored(t, "orders-views") {
		if v.IsDefault {
			defaults++
			assert.Equal(t, "Second", v.Name)
		}
	}
	assert.Equal(t, 1, defaults)

	def2, ok := vm.DefaultView()
	require.True(t, ok)
	assert.Equal(t, "Second", def2.Name)
}

func TestViewManager_SharedKeyKeepsOtherWriters(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	ctx := context.Background()

	a := newTestManager(def, storage)
	b := newTestManager(def, storage)
	b.NewID = func() string { return "view-b" }
	a.Load(ctx)
	b.Load(ctx)

	_, _, err := a.Save(ctx, "From A", false, DefaultState(def))
	require.NoError(t, err)
	_, _, err = b.Save(ctx, "From B", false, DefaultState(def))
	require.NoError(t, err)

	assert.Len(t, storage.stored(t, "orders-views"), 2)
}

// ============================================================================
// Apply Tests
// ============================================================================

func TestViewManager_SaveApplyRoundTrip(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	ctx := context.Background()

	saved := newTestManager(def, storage)
	_, _, err := saved.Save(ctx, "Wide", false, DefaultState(def).WithColumnToggled("due").WithPageSize(30))
	require.NoError(t, err)

	vm := newTestManager(def, storage)
	require.Len(t, vm.Load(ctx), 1)

	st, err := vm.ApplyByID("view-1", DefaultState(def))
	require.NoError(t, err)

	assert.False(t, st.IsVisible("due"))
	assert.True(t, st.IsVisible("name"))
	assert.Equal(t, 30, st.Pagination.PageSize)
	assert.Equal(t, "view-1", st.CurrentViewID)

	_, err = vm.ApplyByID("missing", st)
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestViewManager_ApplyDefaultIsIdempotent(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	ctx := context.Background()

	seed := newTestManager(def, storage)
	_, _, err := seed.Save(ctx, "Home", true, DefaultState(def).WithPageSize(20))
	require.NoError(t, err)

	vm := newTestManager(def, storage)
	vm.Load(ctx)

	fresh := DefaultState(def)
	require.True(t, fresh.Fresh)

	st, applied := vm.ApplyDefault(fresh)
	require.True(t, applied)
	assert.Equal(t, 20, st.Pagination.PageSize)
	assert.Equal(t, "view-1", st.CurrentViewID)

	again, applied := vm.ApplyDefault(st)
	assert.False(t, applied)
	assert.Equal(t, st, again)

	withView := fresh
	withView.CurrentViewID = "other"
	_, applied = vm.ApplyDefault(withView)
	assert.False(t, applied)
}

func TestViewManager_CorruptStorage(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	storage.data["orders-views"] = "{not json"

	vm := newTestManager(def, storage)
	assert.Empty(t, vm.Load(context.Background()))

	storage.failGet = errors.New("unreachable")
	assert.Empty(t, vm.Load(context.Background()))
}

func TestViewManager_StoredFormat(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	vm := newTestManager(def, storage)

	_, _, err := vm.Save(context.Background(), "Fmt", true, DefaultState(def))
	require.NoError(t, err)

	raw := storage.data["orders-views"]
	for _, key := range []string{`"id"`, `"name"`, `"columnVisibility"`, `"pageSize"`, `"isDefault"`} {
		assert.Contains(t, raw, key)
	}
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestViewManager_DeleteCancel(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	ctx := context.Background()
	vm := newTestManager(def, storage)

	_, _, err := vm.Save(ctx, "Keep", false, DefaultState(def))
	require.NoError(t, err)

	pending, err := vm.RequestDelete("view-1")
	require.NoError(t, err)
	assert.Equal(t, "Keep", pending.Name)

	got, ok := vm.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, "view-1", got.ID)

	vm.CancelDelete()
	_, ok = vm.PendingDelete()
	assert.False(t, ok)

	st, err := vm.ConfirmDelete(ctx, DefaultState(def))
	require.NoError(t, err)
	assert.Empty(t, st.CurrentViewID)
	assert.Len(t, storage.stored(t, "orders-views"), 1)
}

func TestViewManager_DeleteReadFailureKeepsStoredViews(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	ctx := context.Background()
	vm := newTestManager(def, storage)

	_, _, err := vm.Save(ctx, "First", false, DefaultState(def))
	require.NoError(t, err)
	_, _, err = vm.Save(ctx, "Second", false, DefaultState(def))
	require.NoError(t, err)
	_, err = vm.RequestDelete("view-1")
	require.NoError(t, err)

	storage.failGet = errors.New("database is locked")
	_, err = vm.ConfirmDelete(ctx, DefaultState(def))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, 2, storage.sets)

	storage.failGet = nil
	assert.Len(t, storage.stored(t, "orders-views"), 2)
}

func TestViewManager_DeleteConfirm(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	ctx := context.Background()
	vm := newTestManager(def, storage)

	_, _, err := vm.Save(ctx, "Other", false, DefaultState(def))
	require.NoError(t, err)
	_, st, err := vm.Save(ctx, "Narrow", false, DefaultState(def).WithColumnToggled("name").WithPageSize(30))
	require.NoError(t, err)
	require.False(t, st.IsVisible("name"))

	_, err = vm.RequestDelete("view-2")
	require.NoError(t, err)

	st, err = vm.ConfirmDelete(ctx, st)
	require.NoError(t, err)

	stored := storage.stored(t, "orders-views")
	require.Len(t, stored, 1)
	assert.Equal(t, "view-1", stored[0].ID)

	// The deleted view was current, so the table is back to its defaults
	assert.Empty(t, st.CurrentViewID)
	assert.True(t, st.IsVisible("name"))
	assert.Equal(t, 10, st.Pagination.PageSize)
	_, ok := vm.Current()
	assert.False(t, ok)
}

func TestViewManager_DeleteUnknown(t *testing.T) {
	def := viewsDefinition()
	vm := newTestManager(def, newMapStorage())

	_, err := vm.RequestDelete("nope")
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestViewManager_ResetToDefault(t *testing.T) {
	def := viewsDefinition()
	storage := newMapStorage()
	ctx := context.Background()
	vm := newTestManager(def, storage)

	_, st, err := vm.Save(ctx, "Tiny", false, DefaultState(def).WithColumnToggled("due").WithPageSize(5))
	require.NoError(t, err)

	st = vm.ResetToDefault(st)

	assert.True(t, st.IsVisible("due"))
	assert.Equal(t, 10, st.Pagination.PageSize)
	assert.Empty(t, st.CurrentViewID)
	assert.Len(t, storage.stored(t, "orders-views"), 1, "reset keeps stored views")
}
