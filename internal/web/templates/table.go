package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datatable/internal/core"
)

// TablePage is the full page of a table. The body starts as a loading
// skeleton that fetches the real rows for the same URL on load.
func TablePage(t *core.Table, loadURL string) templ.Component {
	return Layout(t.Def.Label, component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<h1>`)
		h.text(t.Def.Label)
		h.raw(`</h1>`)
		h.render(ctx, tableRoot(t, loadURL))
	}))
}

// Table is the swappable table fragment.
func Table(t *core.Table) templ.Component {
	return tableRoot(t, "")
}

func tableRoot(t *core.Table, loadURL string) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		key := t.Def.Key

		h.raw(`<div class="datatable"`)
		h.attr("id", TableID(key))
		if loadURL != "" {
			h.attr("hx-get", loadURL)
			h.attr("hx-trigger", "load")
			h.attr("hx-swap", "outerHTML")
		}
		h.raw(`>`)

		h.render(ctx, Toolbar(t))
		h.raw(`<div class="dialog-slot"`)
		h.attr("id", DialogID(key))
		h.raw(`></div>`)

		h.raw(`<div class="table-scroll"><table class="grid"><thead><tr>`)
		for _, hv := range t.Headers() {
			h.render(ctx, HeaderCell(key, t.State, hv))
		}
		h.raw(`</tr></thead><tbody>`)
		h.render(ctx, Body(t))
		h.raw(`</tbody></table></div>`)

		h.render(ctx, Pagination(t))
		h.raw(`</div>`)
	})
}

// Toolbar holds the controls above the table, each shown only when its
// feature is enabled.
func Toolbar(t *core.Table) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		f := t.Opts.Features
		h.raw(`<div class="toolbar">`)
		if f.GlobalSearch {
			h.render(ctx, GlobalFilter(t))
		}
		if f.DateRangeFilter {
			h.render(ctx, DateRangeFilter(t))
		}
		h.raw(`<div class="toolbar-end">`)
		if f.CustomViews {
			h.render(ctx, ViewSelector(t))
		}
		if f.ColumnVisibility {
			h.render(ctx, VisibilityToggle(t))
		}
		if f.CSVExport {
			h.render(ctx, ExportMenu(t))
		}
		h.raw(`</div></div>`)
	})
}

// GlobalFilter is the search box.
func GlobalFilter(t *core.Table) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		key := t.Def.Key
		h.raw(`<form class="search"`)
		navigate(h, key, "get", TablePath(key, core.State{}), true)
		h.attr("hx-trigger", "input changed delay:300ms from:find input[name=q], submit")
		h.raw(`>`)
		hiddenState(h, t.State.WithGlobalFilter(""), "q")
		h.raw(`<input type="search" name="q" autocomplete="off"`)
		h.attr("placeholder", t.Opts.GlobalSearchPlaceholder)
		h.attr("value", t.State.GlobalFilter)
		h.raw(`></form>`)
	})
}

// DateRangeFilter is the relative date bucket selector.
func DateRangeFilter(t *core.Table) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		key := t.Def.Key
		h.raw(`<form class="date-range"`)
		navigate(h, key, "get", TablePath(key, core.State{}), true)
		h.attr("hx-trigger", "change")
		h.raw(`>`)
		hiddenState(h, t.State.WithDateRange(core.RangeAll), "range")
		h.raw(`<select name="range" aria-label="Date range">`)
		for _, opt := range core.DateRangeOptions {
			h.raw(`<option`)
			h.attr("value", string(opt.Value))
			h.flag("selected", opt.Value == t.State.DateRange)
			h.raw(`>`)
			h.text(opt.Label)
			h.raw(`</option>`)
		}
		h.raw(`</select></form>`)
	})
}

// VisibilityToggle lists every column with a checkbox.
func VisibilityToggle(t *core.Table) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		key := t.Def.Key
		h.raw(`<details class="menu"><summary>Columns</summary><ul class="menu-list">`)
		for _, c := range t.HideableColumns() {
			h.raw(`<li><label><input type="checkbox"`)
			h.flag("checked", t.State.IsVisible(c.ID))
			navigate(h, key, "get", TablePath(key, t.State.WithColumnToggled(c.ID)), true)
			h.raw(`> `)
			h.text(c.Header)
			h.raw(`</label></li>`)
		}
		h.raw(`</ul></details>`)
	})
}

// ExportMenu offers CSV downloads of the current page or all filtered
// rows, and a spreadsheet of the filtered rows.
func ExportMenu(t *core.Table) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		key := t.Def.Key
		page := len(t.ExportRows(core.ExportCurrentPage))
		all := len(t.ExportRows(core.ExportAllFiltered))

		link := func(path string, kind core.ExportKind, label string) {
			q := t.State.Query()
			q.Set("kind", string(kind))
			h.raw(`<li><a download`)
			h.href(path + "?" + q.Encode())
			h.raw(`>`)
			h.text(label)
			h.raw(`</a></li>`)
		}

		base := ExportPath(key)
		h.raw(`<details class="menu"><summary>Export</summary><ul class="menu-list">`)
		link(base, core.ExportCurrentPage, "Current page ("+plural(page, "row", "rows")+")")
		link(base, core.ExportAllFiltered, "All filtered ("+plural(all, "row", "rows")+")")
		link(base+"/xlsx", core.ExportAllFiltered, "Excel, all filtered")
		h.raw(`</ul></details>`)
	})
}

// sortIcon is the glyph of a header's sort direction.
func sortIcon(d core.SortDirection) string {
	switch d {
	case core.SortAsc:
		return "↑"
	case core.SortDesc:
		return "↓"
	default:
		return "↕"
	}
}

// HeaderCell is one column header with its sort button and filter control.
func HeaderCell(key string, st core.State, hv core.HeaderView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		c := hv.Column
		h.raw(`<th`)
		if c.Size > 0 {
			h.attr("style", "width:"+itoa(c.Size)+"px")
		}
		if hv.Direction != core.SortNone {
			h.attr("aria-sort", map[core.SortDirection]string{core.SortAsc: "ascending", core.SortDesc: "descending"}[hv.Direction])
		}
		h.raw(`>`)

		if hv.Sortable {
			h.raw(`<button type="button" class="sort"`)
			navigate(h, key, "get", TablePath(key, hv.SortIntent), true)
			h.raw(`>`)
			h.text(c.Header)
			h.raw(` <span class="sort-icon`)
			if hv.Direction == core.SortNone {
				h.raw(` inactive`)
			}
			h.raw(`">`)
			h.text(sortIcon(hv.Direction))
			h.raw(`</span></button>`)
		} else {
			h.text(c.Header)
		}

		if hv.Filterable {
			h.render(ctx, ColumnFilter(key, st, hv))
		}
		h.raw(`</th>`)
	})
}

// ColumnFilter is the filter control under a header.
func ColumnFilter(key string, st core.State, hv core.HeaderView) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		c := hv.Column
		name := "f." + c.ID

		h.raw(`<form class="column-filter"`)
		navigate(h, key, "get", TablePath(key, core.State{}), true)
		if hv.FilterType == core.FilterText {
			h.attr("hx-trigger", "input changed delay:300ms, submit")
		} else {
			h.attr("hx-trigger", "change, submit")
		}
		h.raw(`>`)
		hiddenState(h, st.WithColumnFilter(c.ID, ""), name)

		switch hv.FilterType {
		case core.FilterSelect:
			h.raw(`<select`)
			h.attr("name", name)
			h.attr("aria-label", "Filter "+c.Header)
			h.raw(`><option value="">All</option>`)
			for _, opt := range c.FilterOptions {
				h.raw(`<option`)
				h.attr("value", opt.Value)
				h.flag("selected", opt.Value == hv.FilterValue)
				h.raw(`>`)
				h.text(opt.Label)
				h.raw(`</option>`)
			}
			h.raw(`</select>`)
		default:
			inputType := "text"
			switch hv.FilterType {
			case core.FilterDate:
				inputType = "date"
			case core.FilterNumber:
				inputType = "number"
			}
			h.raw(`<input autocomplete="off"`)
			h.attr("type", inputType)
			h.attr("name", name)
			h.attr("value", hv.FilterValue)
			h.attr("placeholder", "Filter...")
			h.attr("aria-label", "Filter "+c.Header)
			h.raw(`>`)
		}
		h.raw(`</form>`)
	})
}

// Body renders the rows, the empty message or the loading skeleton.
func Body(t *core.Table) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		cols := t.VisibleColumns()
		span := itoa(max(len(cols), 1))

		switch t.Body() {
		case core.BodyLoading:
			h.render(ctx, SkeletonRows(cols, t.Opts.SkeletonRows))

		case core.BodyEmpty:
			h.raw(`<tr><td class="empty"`)
			h.attr("colspan", span)
			h.raw(`>`)
			h.text(t.Opts.EmptyMessage)
			h.raw(`</td></tr>`)

		default:
			subRows := t.Opts.Features.SubRows && t.Opts.GetSubRows != nil
			for _, rv := range t.Rows() {
				h.render(ctx, BodyRow(t, rv, subRows))
				// An expanded row without children gets no sub-row section
				if rv.Expanded && len(rv.SubRows) > 0 {
					h.raw(`<tr class="subrows"><td`)
					h.attr("colspan", span)
					h.raw(`>`)
					h.render(ctx, SubRowsTable(t.Opts.SubRows, rv.SubRows))
					h.raw(`</td></tr>`)
				}
			}
		}
	})
}

// BodyRow is one data row.
func BodyRow(t *core.Table, rv core.RowView, subRows bool) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		key := t.Def.Key
		class := "row-even"
		if rv.Position%2 == 1 {
			class = "row-odd"
		}
		if rv.Clickable {
			class += " clickable"
		}
		if rv.Expanded {
			class += " expanded"
		}

		h.raw(`<tr`)
		h.attr("class", class)
		if rv.Clickable {
			if t.Opts.Features.RowClick {
				navigate(h, key, "post", withState(RowClickPath(key, rv.Row.ID), rv.ToggleIntent), false)
			} else {
				navigate(h, key, "get", TablePath(key, rv.ToggleIntent), true)
			}
		}
		h.raw(`>`)

		for i, cell := range rv.Cells {
			h.raw(`<td>`)
			if i == 0 && subRows {
				h.raw(`<span class="chevron">`)
				if rv.Expanded {
					h.raw(`▾`)
				} else {
					h.raw(`▸`)
				}
				h.raw(`</span> `)
			}
			if cell.Editable {
				ref := core.CellRef{Table: key, RowID: rv.Row.ID, Column: cell.Column.ID}
				h.render(ctx, CellDisplay(ref, cell.Text, true))
			} else {
				h.text(cell.Text)
			}
			h.raw(`</td>`)
		}
		h.raw(`</tr>`)
	})
}

// SkeletonRows are the loading placeholders, sized per column.
func SkeletonRows(cols []*core.ColumnConfig, n int) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		for i := 0; i < n; i++ {
			h.raw(`<tr class="skeleton-row">`)
			for _, c := range cols {
				width, height := c.Skeleton.Width, c.Skeleton.Height
				if width == "" {
					width = "100%"
				}
				if height == "" {
					height = "1rem"
				}
				h.raw(`<td><div class="skeleton"`)
				h.attr("style", "width:"+width+";height:"+height)
				h.raw(`></div></td>`)
			}
			h.raw(`</tr>`)
		}
	})
}

// SubRowsTable is the nested table under an expanded row.
func SubRowsTable(cfg core.SubRowsConfig, rows [][]core.SubCell) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		if len(rows) == 0 {
			return
		}
		h.raw(`<table class="subtable"><thead><tr>`)
		for _, c := range cfg.Columns {
			h.raw(`<th>`)
			h.text(c.Header)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, cells := range rows {
			h.raw(`<tr>`)
			for _, cell := range cells {
				h.raw(`<td>`)
				if cell.Branch {
					h.raw(`<span class="branch">`)
					h.text(core.BranchGlyph)
					h.raw(`</span> `)
				}
				h.text(cell.Text)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
	})
}

// Pagination is the page navigation below the table. It is hidden while
// loading and when pagination is off.
func Pagination(t *core.Table) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		m := t.Model
		if !m.Paginated || t.State.Loading {
			return
		}
		key := t.Def.Key
		p := m.Pagination

		button := func(label, aria string, target core.State, enabled bool) {
			h.raw(`<button type="button"`)
			h.attr("aria-label", aria)
			if enabled {
				navigate(h, key, "get", TablePath(key, target), true)
			} else {
				h.flag("disabled", true)
			}
			h.raw(`>`)
			h.text(label)
			h.raw(`</button>`)
		}

		h.raw(`<nav class="pagination" aria-label="Pagination"><span class="muted">`)
		total := len(m.Sorted)
		if total > 0 {
			first := p.PageIndex*p.PageSize + 1
			last := first + len(m.Page) - 1
			h.text("Showing " + itoa(first) + "-" + itoa(last) + " of " + itoa(total))
		} else {
			h.text("No rows")
		}
		h.raw(`</span>`)

		h.raw(`<form class="page-size"`)
		navigate(h, key, "get", TablePath(key, core.State{}), true)
		h.attr("hx-trigger", "change")
		h.raw(`>`)
		hiddenState(h, t.State, "")
		h.raw(`<label>Rows per page <select name="setsize">`)
		for _, n := range t.Opts.PageSizeOptions {
			h.raw(`<option`)
			h.attr("value", itoa(n))
			h.flag("selected", n == p.PageSize)
			h.raw(`>`)
			h.text(itoa(n))
			h.raw(`</option>`)
		}
		h.raw(`</select></label></form>`)

		h.raw(`<div class="pager">`)
		button("«", "First page", t.PageIntent(0), m.CanPrevious)
		button("‹", "Previous page", t.PageIntent(p.PageIndex-1), m.CanPrevious)
		h.raw(`<span>`)
		h.text("Page " + itoa(p.PageIndex+1) + " of " + itoa(m.PageCount))
		h.raw(`</span>`)
		button("›", "Next page", t.PageIntent(p.PageIndex+1), m.CanNext)
		button("»", "Last page", t.LastPageIntent(), m.CanNext)
		h.raw(`</div></nav>`)
	})
}
