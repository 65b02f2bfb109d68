package core

import (
	"context"
	"fmt"
	"time"
)

// Table is one render of a table: definition, data and state resolved into
// the model the templates draw.
type Table struct {
	Def   *Definition
	Opts  Options
	State State
	Model RowModel

	// Views are the saved views, loaded only when the feature is on.
	Views       []ViewState
	CurrentView *ViewState
}

// BodyMode selects what the table body shows.
type BodyMode int

const (
	BodyRows BodyMode = iota
	BodyLoading
	BodyEmpty
)

// HeaderView is one column header.
type HeaderView struct {
	Column      *ColumnConfig
	Sortable    bool
	Direction   SortDirection
	SortIntent  State
	Filterable  bool
	FilterType  FilterType
	FilterValue string
}

// CellView is one body cell.
type CellView struct {
	Column   *ColumnConfig
	Text     string
	Editable bool
}

// RowView is one body row with its optional sub-rows.
type RowView struct {
	Row       Row
	Position  int
	Cells     []CellView
	Expanded  bool
	Clickable bool
	// ToggleIntent is the state after clicking the row.
	ToggleIntent State
	SubRows      [][]SubCell
}

// NewTable applies the date range pre-filter and builds the row model.
func NewTable(def *Definition, records []Record, st State, now time.Time) *Table {
	opts := def.Options.withDefaults()

	rows := CoreRows(def, records)
	if opts.Features.DateRangeFilter {
		rows = filterRowsByDateRange(rows, st.DateRange, opts.DateFilterField, now)
	}

	model := BuildRowModelFromRows(def, rows, st)
	if model.Paginated {
		st.Pagination = model.Pagination
	}

	return &Table{
		Def:   def,
		Opts:  opts,
		State: st,
		Model: model,
	}
}

// Load resolves a registered table: records from its source, saved views
// from storage (including the default view on mount), then the row model.
func Load(ctx context.Context, key string, st func(*Definition) State, storage Storage, now time.Time) (*Table, *ViewManager, error) {
	entry, ok := Get(key)
	if !ok {
		return nil, nil, fmt.Errorf("load %q: %w", key, ErrTableNotFound)
	}
	def := &entry.Definition

	records, err := entry.Source.Records(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load %q records: %w", key, err)
	}

	state := st(def)
	vm := NewViewManager(def, storage)
	vm.Load(ctx)
	vm.SetCurrent(state.CurrentViewID)
	if applied, ok := vm.ApplyDefault(state); ok {
		state = applied
	}

	t := NewTable(def, records, state, now)
	t.AttachViews(vm)
	return t, vm, nil
}

// AttachViews copies the manager's views and current view into the table.
func (t *Table) AttachViews(vm *ViewManager) {
	t.Views = vm.Views()
	t.CurrentView = nil
	if cur, ok := vm.Current(); ok {
		t.CurrentView = &cur
	}
}

// VisibleColumns returns the shown columns in definition order.
func (t *Table) VisibleColumns() []*ColumnConfig {
	cols := make([]*ColumnConfig, 0, len(t.Def.Columns))
	for i := range t.Def.Columns {
		c := &t.Def.Columns[i]
		if t.State.IsVisible(c.ID) {
			cols = append(cols, c)
		}
	}
	return cols
}

// HideableColumns lists every column for the visibility toggle.
func (t *Table) HideableColumns() []*ColumnConfig {
	cols := make([]*ColumnConfig, 0, len(t.Def.Columns))
	for i := range t.Def.Columns {
		if t.Def.Columns[i].ID == SelectColumnID {
			continue
		}
		cols = append(cols, &t.Def.Columns[i])
	}
	return cols
}

// Headers builds the header row.
func (t *Table) Headers() []HeaderView {
	cols := t.VisibleColumns()
	out := make([]HeaderView, len(cols))
	for i, c := range cols {
		h := HeaderView{
			Column:     c,
			Sortable:   c.EnableSorting && c.HasAccessor(),
			Direction:  t.State.Sort.Direction(c.ID),
			Filterable: c.EnableColumnFilter && c.HasAccessor(),
		}
		if h.Sortable {
			next := NextSort(t.State.Sort, c, FirstSortDesc(c, t.Model.Core))
			h.SortIntent = t.State.WithSort(next)
		}
		if h.Filterable {
			h.FilterType = c.EffectiveFilterType()
			h.FilterValue = t.State.ColumnFilters[c.ID]
		}
		out[i] = h
	}
	return out
}

// Body reports what the body shows.
func (t *Table) Body() BodyMode {
	switch {
	case t.State.Loading:
		return BodyLoading
	case len(t.Model.Page) == 0:
		return BodyEmpty
	default:
		return BodyRows
	}
}

// Rows builds the body rows of the current page.
func (t *Table) Rows() []RowView {
	cols := t.VisibleColumns()
	subRows := t.Opts.Features.SubRows && t.Opts.GetSubRows != nil

	out := make([]RowView, len(t.Model.Page))
	for i, row := range t.Model.Page {
		rv := RowView{
			Row:       row,
			Position:  i,
			Cells:     make([]CellView, len(cols)),
			Clickable: t.Opts.Features.RowClick || subRows,
		}
		for j, c := range cols {
			rv.Cells[j] = CellView{
				Column:   c,
				Text:     c.Display(row.Record),
				Editable: c.EnableEditing,
			}
		}
		if subRows {
			rv.Expanded = t.State.IsExpanded(row.ID)
			rv.ToggleIntent = t.State.WithExpandedToggled(row.ID)
			if rv.Expanded {
				rv.SubRows = SubRows(t.Opts, row.Record)
			}
		} else {
			rv.ToggleIntent = t.State
		}
		out[i] = rv
	}
	return out
}

// FindRow looks a row up by id among all rows, ignoring filters.
func (t *Table) FindRow(id string) (Row, bool) {
	for _, r := range t.Model.Core {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// ExportRows returns the rows covered by an export.
func (t *Table) ExportRows(kind ExportKind) []Row {
	if kind == ExportAllFiltered {
		return t.Model.Sorted
	}
	return t.Model.Page
}

// PageIntent is the state showing page index i.
func (t *Table) PageIntent(i int) State {
	return t.State.WithPageIndex(i)
}

// LastPageIntent is the state showing the last page.
func (t *Table) LastPageIntent() State {
	return t.State.WithPageIndex(t.Model.PageCount - 1)
}

// PageSizeIntent is the state after choosing a page size.
func (t *Table) PageSizeIntent(size int) State {
	return t.State.WithPageSize(size)
}
