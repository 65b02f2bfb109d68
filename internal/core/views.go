package core

// views.go manages saved views: named snapshots of column visibility and
// page size persisted as a JSON array under a caller-supplied storage key.
//
// Loading never fails the caller: a missing, unreadable or corrupt list is
// logged and treated as empty. Writes for one key are serialized within the
// process, and each write re-reads the stored list first so two tables
// sharing a key do not drop each other's views. A write whose re-read fails
// is abandoned, so the stored list is never replaced from a partial view.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/datatable/internal/logging"
)

// Storage is a durable key-value store for serialized view lists.
type Storage interface {
	// Get returns the value stored under key. found is false when absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}

// keyedMutex hands out one mutex per key. Entries live only while a caller
// holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// size is the number of keys currently held or waited on.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

var storageLocks keyedMutex

// ViewManager holds the saved views of one table.
type ViewManager struct {
	storage         Storage
	key             string
	enabled         bool
	columns         []ColumnConfig
	initialPageSize int
	onChange        func(ViewState)

	// NewID generates view ids. Replaceable in tests.
	NewID func() string

	mu        sync.Mutex
	views     []ViewState
	currentID string
	pending   *ViewState
}

// NewViewManager creates a manager for def's views backed by storage.
func NewViewManager(def *Definition, storage Storage) *ViewManager {
	opts := def.Options.withDefaults()
	return &ViewManager{
		storage:         storage,
		key:             opts.ViewStorageKey,
		enabled:         opts.Features.CustomViews && storage != nil,
		columns:         def.Columns,
		initialPageSize: opts.InitialPageSize,
		onChange:        opts.OnViewChange,
		NewID:           func() string { return "view-" + uuid.NewString() },
	}
}

// Enabled reports whether views are persisted for this table.
func (m *ViewManager) Enabled() bool {
	return m.enabled
}

// Load reads the stored list. Failures are logged and yield no views.
func (m *ViewManager) Load(ctx context.Context) []ViewState {
	if !m.enabled {
		return nil
	}
	views, err := m.read(ctx)
	if err != nil {
		logging.WithFields(ctx, "storage_key", m.key).Error("load views failed", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = views
	return cloneViews(views)
}

// read returns the stored list. Only storage errors are returned; a corrupt
// list is logged and read as empty.
func (m *ViewManager) read(ctx context.Context) ([]ViewState, error) {
	raw, found, err := m.storage.Get(ctx, m.key)
	if err != nil {
		return nil, fmt.Errorf("read views under %q: %w", m.key, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var views []ViewState
	if err := json.Unmarshal([]byte(raw), &views); err != nil {
		logging.WithFields(ctx, "storage_key", m.key).Error("stored views are not valid JSON", "error", err)
		return nil, nil
	}
	return views, nil
}

func (m *ViewManager) write(ctx context.Context, views []ViewState) error {
	if views == nil {
		views = []ViewState{}
	}
	data, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("encode views: %w", err)
	}
	if err := m.storage.Set(ctx, m.key, string(data)); err != nil {
		return fmt.Errorf("store views under %q: %w", m.key, err)
	}
	return nil
}

// Views returns the loaded views.
func (m *ViewManager) Views() []ViewState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneViews(m.views)
}

// Current returns the current view, if any.
func (m *ViewManager) Current() (ViewState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(m.currentID)
}

// SetCurrent marks a loaded view as current without applying it, as when a
// request arrives with a view already applied. Unknown ids clear it.
func (m *ViewManager) SetCurrent(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.find(id); ok {
		m.currentID = id
	} else {
		m.currentID = ""
	}
}

func (m *ViewManager) find(id string) (ViewState, bool) {
	if id == "" {
		return ViewState{}, false
	}
	for _, v := range m.views {
		if v.ID == id {
			return cloneView(v), true
		}
	}
	return ViewState{}, false
}

// Save snapshots st's visibility and page size under name. When isDefault is
// set every other view loses its default flag. The new view becomes current.
func (m *ViewManager) Save(ctx context.Context, name string, isDefault bool, st State) (ViewState, State, error) {
	if !m.enabled {
		return ViewState{}, st, ErrViewsDisabled
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ViewState{}, st, ErrEmptyViewName
	}

	vis := make(map[string]bool, len(m.columns))
	for _, c := range m.columns {
		vis[c.ID] = st.IsVisible(c.ID)
	}
	for id, v := range st.Visibility {
		vis[id] = v
	}

	view := ViewState{
		ID:               m.NewID(),
		Name:             name,
		ColumnVisibility: vis,
		PageSize:         st.Pagination.PageSize,
		IsDefault:        isDefault,
	}

	unlock := storageLocks.lock(m.key)
	defer unlock()

	views, err := m.read(ctx)
	if err != nil {
		return ViewState{}, st, err
	}
	if isDefault {
		for i := range views {
			views[i].IsDefault = false
		}
	}
	views = append(views, view)

	if err := m.write(ctx, views); err != nil {
		return ViewState{}, st, err
	}

	m.mu.Lock()
	m.views = views
	m.currentID = view.ID
	m.mu.Unlock()

	logging.WithFields(ctx, "storage_key", m.key, "view_id", view.ID).Info("view saved",
		"name", view.Name,
		"default", view.IsDefault,
	)

	if m.onChange != nil {
		m.onChange(cloneView(view))
	}
	return cloneView(view), st.WithView(view.ID), nil
}

// Apply overwrites st's visibility and page size from view and marks it current.
func (m *ViewManager) Apply(view ViewState, st State) State {
	next := st.WithVisibility(view.ColumnVisibility)
	if view.PageSize > 0 {
		next = next.WithPageSize(view.PageSize)
	}
	next = next.WithView(view.ID)

	m.mu.Lock()
	m.currentID = view.ID
	m.mu.Unlock()

	if m.onChange != nil {
		m.onChange(cloneView(view))
	}
	return next
}

// ApplyByID applies a loaded view.
func (m *ViewManager) ApplyByID(id string, st State) (State, error) {
	m.mu.Lock()
	view, ok := m.find(id)
	m.mu.Unlock()
	if !ok {
		return st, fmt.Errorf("apply %q: %w", id, ErrViewNotFound)
	}
	return m.Apply(view, st), nil
}

// DefaultView returns the view flagged default, if any.
func (m *ViewManager) DefaultView() (ViewState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.views {
		if v.IsDefault {
			return cloneView(v), true
		}
	}
	return ViewState{}, false
}

// ApplyDefault applies the default view to a freshly mounted table. It is
// idempotent: a state that is not fresh, or already shows a view, is returned
// unchanged, so calling it on every render is safe.
func (m *ViewManager) ApplyDefault(st State) (State, bool) {
	if !m.enabled || !st.Fresh || st.CurrentViewID != "" {
		return st, false
	}
	view, ok := m.DefaultView()
	if !ok {
		return st, false
	}
	return m.Apply(view, st), true
}

// RequestDelete is the first step of deletion: it remembers the view awaiting
// confirmation and returns it for the confirmation prompt.
func (m *ViewManager) RequestDelete(id string) (ViewState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	view, ok := m.find(id)
	if !ok {
		return ViewState{}, fmt.Errorf("delete %q: %w", id, ErrViewNotFound)
	}
	m.pending = &view
	return cloneView(view), nil
}

// PendingDelete returns the view awaiting confirmation.
func (m *ViewManager) PendingDelete() (ViewState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return ViewState{}, false
	}
	return cloneView(*m.pending), true
}

// CancelDelete drops the pending deletion. Storage is untouched.
func (m *ViewManager) CancelDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
}

// ConfirmDelete removes the pending view from storage. If it was current the
// table is reset to its default state.
func (m *ViewManager) ConfirmDelete(ctx context.Context, st State) (State, error) {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	if pending == nil {
		return st, nil
	}

	unlock := storageLocks.lock(m.key)
	defer unlock()

	views, err := m.read(ctx)
	if err != nil {
		return st, err
	}
	kept := views[:0]
	for _, v := range views {
		if v.ID != pending.ID {
			kept = append(kept, v)
		}
	}
	if err := m.write(ctx, kept); err != nil {
		return st, err
	}

	m.mu.Lock()
	m.views = kept
	wasCurrent := m.currentID == pending.ID || st.CurrentViewID == pending.ID
	m.mu.Unlock()

	logging.WithFields(ctx, "storage_key", m.key, "view_id", pending.ID).Info("view deleted")

	if wasCurrent {
		return m.ResetToDefault(st), nil
	}
	return st, nil
}

// ResetToDefault shows every column, restores the initial page size and
// clears the current view. Stored views are kept.
func (m *ViewManager) ResetToDefault(st State) State {
	m.mu.Lock()
	m.currentID = ""
	m.mu.Unlock()

	return st.WithVisibility(AllVisible(m.columns)).
		WithPageSize(m.initialPageSize).
		WithView("")
}

func cloneView(v ViewState) ViewState {
	vis := make(map[string]bool, len(v.ColumnVisibility))
	for k, b := range v.ColumnVisibility {
		vis[k] = b
	}
	v.ColumnVisibility = vis
	return v
}

func cloneViews(views []ViewState) []ViewState {
	if views == nil {
		return nil
	}
	out := make([]ViewState, len(views))
	for i, v := range views {
		out[i] = cloneView(v)
	}
	return out
}
