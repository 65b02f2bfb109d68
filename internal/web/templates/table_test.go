package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datatable/internal/core"
)

func subRowsTable(expanded ...string) *core.Table {
	def := &core.Definition{
		Key:     "orders",
		Columns: []core.ColumnConfig{{ID: "name", Header: "Name", AccessorKey: "name"}},
		Options: core.Options{
			Features: core.Features{SubRows: true},
			GetRowID: func(r core.Record) string { return core.ToText(r["name"]) },
			GetSubRows: func(r core.Record) []core.Record {
				children, _ := r["lines"].([]core.Record)
				return children
			},
			SubRows: core.SubRowsConfig{
				Columns: []core.SubColumn{{Header: "Item", AccessorKey: "item"}},
			},
		},
	}
	records := []core.Record{
		{"name": "with-lines", "lines": []core.Record{{"item": "Widget"}}},
		{"name": "no-lines"},
	}

	st := core.DefaultState(def)
	for _, id := range expanded {
		st = st.WithExpandedToggled(id)
	}
	return core.NewTable(def, records, st, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
}

func renderBody(t *testing.T, tbl *core.Table) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Body(tbl).Render(context.Background(), &buf))
	return buf.String()
}

func TestBody_ExpandedRowShowsSubRows(t *testing.T) {
	html := renderBody(t, subRowsTable("with-lines"))

	assert.Equal(t, 1, strings.Count(html, `class="subrows"`))
	assert.Contains(t, html, "<th>Item</th>")
	assert.Contains(t, html, "Widget")
}

func TestBody_ExpandedRowWithoutChildren(t *testing.T) {
	html := renderBody(t, subRowsTable("no-lines"))

	assert.NotContains(t, html, `class="subrows"`)
	assert.NotContains(t, html, "subtable")
	assert.Contains(t, html, "no-lines")
}

func TestBody_CollapsedRows(t *testing.T) {
	html := renderBody(t, subRowsTable())

	assert.NotContains(t, html, `class="subrows"`)
	assert.Equal(t, 2, strings.Count(html, `class="chevron"`))
}

func TestSubRowsTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SubRowsTable(core.SubRowsConfig{}, nil).Render(context.Background(), &buf))
	assert.Empty(t, buf.String())
}
