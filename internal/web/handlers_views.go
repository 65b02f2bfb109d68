package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/logging"
	"github.com/JonMunkholm/datatable/internal/web/templates"
)

// viewsResponse is the JSON listing of a table's saved views.
type viewsResponse struct {
	Views     []core.ViewState `json:"views"`
	Current   string           `json:"current,omitempty"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

// Stamper is implemented by stores that record when a key was last written.
type Stamper interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
}

// loadViews loads a table and its view manager, failing when views are off.
func (s *Server) loadViews(w http.ResponseWriter, r *http.Request) (*core.Table, *core.ViewManager, bool) {
	key := chi.URLParam(r, "tableKey")
	t, vm, err := s.load(r, key)
	if err != nil {
		s.respondError(w, r, err, 0)
		return nil, nil, false
	}
	if !vm.Enabled() {
		s.respondError(w, r, fmt.Errorf("views %s: %w", key, core.ErrViewsDisabled), 0)
		return nil, nil, false
	}
	return t, vm, true
}

// handleListViews returns the save dialog to HTMX and the view list otherwise.
func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	t, _, ok := s.loadViews(w, r)
	if !ok {
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.SaveViewDialog(t.Def.Key, t.State).Render(r.Context(), w)
		return
	}

	resp := viewsResponse{Views: t.Views}
	if resp.Views == nil {
		resp.Views = []core.ViewState{}
	}
	if t.CurrentView != nil {
		resp.Current = t.CurrentView.ID
	}
	if st, ok := s.store.(Stamper); ok {
		at, found, err := st.UpdatedAt(r.Context(), t.Opts.ViewStorageKey)
		if err != nil {
			logging.FromContext(r.Context()).Warn("views updated_at", "table", t.Def.Key, "error", err)
		} else if found {
			resp.UpdatedAt = &at
		}
	}
	writeJSON(w, resp)
}

// handleSaveView saves the current visibility and page size as a named view.
func (s *Server) handleSaveView(w http.ResponseWriter, r *http.Request) {
	t, vm, ok := s.loadViews(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("parse form: %w", err), http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("name")
	isDefault := r.PostFormValue("default") != ""

	_, st, err := vm.Save(r.Context(), name, isDefault, t.State)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.renderState(w, r, t.Def.Key, st)
}

// handleApplyView applies a saved view.
func (s *Server) handleApplyView(w http.ResponseWriter, r *http.Request) {
	t, vm, ok := s.loadViews(w, r)
	if !ok {
		return
	}

	st, err := vm.ApplyByID(chi.URLParam(r, "viewID"), t.State)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.renderState(w, r, t.Def.Key, st)
}

// handleRequestDeleteView is the first step of deletion: it returns the
// confirmation dialog and changes nothing.
func (s *Server) handleRequestDeleteView(w http.ResponseWriter, r *http.Request) {
	t, vm, ok := s.loadViews(w, r)
	if !ok {
		return
	}

	view, err := vm.RequestDelete(chi.URLParam(r, "viewID"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.DeleteViewDialog(t.Def.Key, view, t.State).Render(r.Context(), w)
}

// handleConfirmDeleteView deletes the view. If it was current the table
// returns to its default state.
func (s *Server) handleConfirmDeleteView(w http.ResponseWriter, r *http.Request) {
	t, vm, ok := s.loadViews(w, r)
	if !ok {
		return
	}

	if _, err := vm.RequestDelete(chi.URLParam(r, "viewID")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	st, err := vm.ConfirmDelete(r.Context(), t.State)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.renderState(w, r, t.Def.Key, st)
}

// handleCancelDeleteView closes the confirmation dialog. Storage is untouched.
func (s *Server) handleCancelDeleteView(w http.ResponseWriter, r *http.Request) {
	_, vm, ok := s.loadViews(w, r)
	if !ok {
		return
	}

	if _, err := vm.RequestDelete(chi.URLParam(r, "viewID")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	vm.CancelDelete()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

// handleResetView shows every column at the initial page size and clears the
// current view.
func (s *Server) handleResetView(w http.ResponseWriter, r *http.Request) {
	t, vm, ok := s.loadViews(w, r)
	if !ok {
		return
	}
	s.renderState(w, r, t.Def.Key, vm.ResetToDefault(t.State))
}
