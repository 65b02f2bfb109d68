package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/logging"
)

// exportTable loads a table for export and picks the rows of the requested kind.
func (s *Server) exportTable(w http.ResponseWriter, r *http.Request) (*core.Table, core.ExportKind, []core.Row, bool) {
	key := chi.URLParam(r, "tableKey")

	t, _, err := s.load(r, key)
	if err != nil {
		s.respondError(w, r, err, 0)
		return nil, "", nil, false
	}
	if !t.Opts.Features.CSVExport {
		s.respondError(w, r, fmt.Errorf("export %s: %w", key, core.ErrExportDisabled), 0)
		return nil, "", nil, false
	}

	kind := core.ParseExportKind(r.URL.Query().Get("kind"))
	return t, kind, t.ExportRows(kind), true
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

// handleExportCSV downloads the visible columns of the current page or of
// every filtered row as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	t, kind, rows, ok := s.exportTable(w, r)
	if !ok {
		return
	}

	var body string
	err := s.exports.Do(r.Context(), func() error {
		body = core.ExportCSV(t.VisibleColumns(), rows)
		return nil
	})
	if err != nil {
		s.respondError(w, r, fmt.Errorf("csv export %s: %w", t.Def.Key, err), 0)
		return
	}

	logging.WithFields(r.Context(), "table", t.Def.Key).Info("csv export",
		"kind", string(kind),
		"rows", len(rows),
	)

	attachment(w, core.CSVContentType, core.ExportFilename(kind, "csv", s.now()))
	io.WriteString(w, body)
}

// handleExportXLSX is handleExportCSV as a spreadsheet.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	t, kind, rows, ok := s.exportTable(w, r)
	if !ok {
		return
	}

	// Buffer so a failed workbook still gets an error response
	var buf bytes.Buffer
	err := s.exports.Do(r.Context(), func() error {
		return core.ExportXLSX(&buf, t.VisibleColumns(), rows)
	})
	if err != nil {
		s.respondError(w, r, fmt.Errorf("xlsx export %s: %w", t.Def.Key, err), 0)
		return
	}

	logging.WithFields(r.Context(), "table", t.Def.Key).Info("xlsx export",
		"kind", string(kind),
		"rows", len(rows),
		"bytes", buf.Len(),
	)

	attachment(w, core.XLSXContentType, core.ExportFilename(kind, "xlsx", s.now()))
	buf.WriteTo(w)
}
