package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/logging"
	"github.com/JonMunkholm/datatable/internal/web/templates"
)

const pingTimeout = 2 * time.Second

// paramSetSize asks for a page size change that keeps the top row visible.
const paramSetSize = "setsize"

// requestState reads table state from the request query.
func requestState(r *http.Request) func(*core.Definition) core.State {
	return func(def *core.Definition) core.State {
		q := r.URL.Query()
		st := core.ParseState(def, q)
		if n, err := strconv.Atoi(q.Get(paramSetSize)); err == nil && n > 0 {
			st = st.WithPageSize(n)
		}
		return st
	}
}

// fixedState ignores the request and uses st.
func fixedState(st core.State) func(*core.Definition) core.State {
	return func(*core.Definition) core.State { return st }
}

// load resolves a table in the request's state.
func (s *Server) load(r *http.Request, key string) (*core.Table, *core.ViewManager, error) {
	return core.Load(r.Context(), key, requestState(r), s.store, s.now())
}

// renderTable writes the table fragment and records its state in the
// browser history.
func (s *Server) renderTable(w http.ResponseWriter, r *http.Request, t *core.Table) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Push-Url", templates.TablePath(t.Def.Key, t.State))
	if err := templates.Table(t).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render table", "table", t.Def.Key, "error", err)
	}
}

// renderState reloads a table in st and renders it.
func (s *Server) renderState(w http.ResponseWriter, r *http.Request, key string, st core.State) {
	t, _, err := core.Load(r.Context(), key, fixedState(st), s.store, s.now())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.renderTable(w, r, t)
}

// handleIndex lists the registered tables.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries := core.All()
	cards := make([]templates.TableCard, len(entries))
	for i, e := range entries {
		cards[i] = templates.TableCard{
			Key:     e.Definition.Key,
			Label:   e.Definition.Label,
			Columns: len(e.Definition.Columns),
		}
		// Don't fail the page if a source is unavailable
		if records, err := e.Source.Records(ctx); err == nil {
			cards[i].Rows = len(records)
		} else {
			logging.FromContext(ctx).Warn("count records", "table", e.Definition.Key, "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Layout("Tables", templates.TableList(cards)).Render(ctx, w)
}

// handleTable renders a table. Full page loads get a loading skeleton that
// fetches the rows for the same URL; HTMX requests get the table fragment.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "tableKey")

	if isHTMX(r) {
		t, _, err := s.load(r, key)
		if err != nil {
			s.respondError(w, r, err, 0)
			return
		}
		s.renderTable(w, r, t)
		return
	}

	entry, ok := core.Get(key)
	if !ok {
		s.respondError(w, r, core.ErrTableNotFound, http.StatusNotFound)
		return
	}
	st := requestState(r)(&entry.Definition)
	st.Loading = true
	shell := core.NewTable(&entry.Definition, nil, st, s.now())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.TablePage(shell, r.URL.RequestURI()).Render(r.Context(), w)
}

// handleRowClick notifies the table's row click callback and renders the
// table in the request's state, which carries the toggled expansion.
func (s *Server) handleRowClick(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "tableKey")
	rowID := chi.URLParam(r, "rowID")

	t, _, err := s.load(r, key)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	row, ok := t.FindRow(rowID)
	if !ok {
		s.respondError(w, r, core.ErrRowNotFound, http.StatusNotFound)
		return
	}
	if t.Opts.Features.RowClick && t.Opts.OnRowClick != nil {
		t.Opts.OnRowClick(row.Record)
	}
	s.renderTable(w, r, t)
}

// handleHealth reports liveness and view store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status": "ok",
		"tables": core.TableCount(),
	}
	if p, ok := s.store.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logging.FromContext(ctx).Error("health check failed", "error", err)
			status["status"] = "unavailable"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, status)
			return
		}
	}
	writeJSON(w, status)
}
