// Package templates renders the HTML of the table UI as templ components.
package templates

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datatable/internal/core"
)

// htmlWriter writes markup and remembers the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *htmlWriter) href(u string) {
	h.attr("href", string(templ.URL(u)))
}

func (h *htmlWriter) flag(name string, on bool) {
	if on {
		h.raw(" " + name)
	}
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(ctx, h)
		return h.err
	})
}

// TablePath is the page URL of a table in state st.
func TablePath(key string, st core.State) string {
	return withState("/table/"+url.PathEscape(key), st)
}

// ViewsPath is the views API URL of a table, optionally for one view action.
func ViewsPath(key string, parts ...string) string {
	p := "/api/views/" + url.PathEscape(key)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// ExportPath is the CSV export URL of a table; "/xlsx" appended gives the spreadsheet.
func ExportPath(key string) string {
	return "/api/export/" + url.PathEscape(key)
}

// RowClickPath is the URL notified when a row is clicked.
func RowClickPath(key, rowID string) string {
	return "/api/rows/" + url.PathEscape(key) + "/" + url.PathEscape(rowID) + "/click"
}

// CellPath is the cell API URL of one cell.
func CellPath(ref core.CellRef) string {
	return "/api/cell/" + url.PathEscape(ref.Table) + "/" + url.PathEscape(ref.RowID) + "/" + url.PathEscape(ref.Column)
}

func withState(path string, st core.State) string {
	if q := st.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

var idUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// TableID is the DOM id of a table's root element.
func TableID(key string) string {
	return "table-" + idUnsafe.ReplaceAllString(key, "_")
}

// DialogID is the DOM id of a table's dialog slot.
func DialogID(key string) string {
	return "dialog-" + idUnsafe.ReplaceAllString(key, "_")
}

// CellID is the DOM id of an editable cell.
func CellID(ref core.CellRef) string {
	return "cell-" + idUnsafe.ReplaceAllString(ref.Table+"-"+ref.RowID+"-"+ref.Column, "_")
}

// navigate writes the attributes that swap the table for the response of u.
func navigate(h *htmlWriter, key, method, u string, push bool) {
	h.attr("hx-"+method, u)
	h.attr("hx-target", "#"+TableID(key))
	h.attr("hx-swap", "outerHTML")
	if push {
		h.attr("hx-push-url", "true")
	}
}

// hiddenState writes st as hidden inputs, leaving out skip.
func hiddenState(h *htmlWriter, st core.State, skip string) {
	q := st.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		if k != skip {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.raw(`<input type="hidden"`)
		h.attr("name", k)
		h.attr("value", q.Get(k))
		h.raw(`>`)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return itoa(n) + " " + one
	}
	return itoa(n) + " " + many
}
