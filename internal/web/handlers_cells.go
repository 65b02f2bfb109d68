package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/logging"
	"github.com/JonMunkholm/datatable/internal/web/templates"
)

func cellRef(r *http.Request) core.CellRef {
	return core.CellRef{
		Table:  chi.URLParam(r, "tableKey"),
		RowID:  chi.URLParam(r, "rowID"),
		Column: chi.URLParam(r, "columnID"),
	}
}

// handleCellDisplay renders a cell in display mode. The editor's cancel
// action lands here.
func (s *Server) handleCellDisplay(w http.ResponseWriter, r *http.Request) {
	ref := cellRef(r)
	cell, err := core.OpenCell(r.Context(), ref, false)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	cell.Cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.CellDisplay(ref, cell.Display(), cell.Column().EnableEditing).Render(r.Context(), w)
}

// handleCellEdit renders a cell's editor.
func (s *Server) handleCellEdit(w http.ResponseWriter, r *http.Request) {
	ref := cellRef(r)
	cell, err := core.OpenCell(r.Context(), ref, true)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.CellEditor(ref, cell.Column(), cell.Draft()).Render(r.Context(), w)
}

// handleCellCommit commits an edited value. The cell always comes back in
// display mode; a rejected value is reverted and only logged.
func (s *Server) handleCellCommit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref := cellRef(r)

	cell, outcome, err := core.CommitCell(ctx, ref, r.FormValue("value"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	logging.WithFields(ctx, "table", ref.Table, "row", ref.RowID, "column", ref.Column).
		Debug("cell commit", "outcome", outcome.String())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.CellDisplay(ref, cell.Display(), true).Render(ctx, w)
}
