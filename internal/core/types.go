package core

import (
	"context"
)

// Record is the backing data for one row.
type Record map[string]any

// FilterType selects the control and matching rule for a column filter.
type FilterType string

const (
	FilterText   FilterType = "text"
	FilterSelect FilterType = "select"
	FilterDate   FilterType = "date"
	FilterNumber FilterType = "number"
)

// EditType selects the input rendered while a cell is being edited.
type EditType string

const (
	EditText   EditType = "text"
	EditSelect EditType = "select"
	EditDate   EditType = "date"
	EditNumber EditType = "number"
)

// FilterOption is one choice of a select filter or select editor.
type FilterOption struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// Skeleton sizes the loading placeholder of a column (CSS lengths).
type Skeleton struct {
	Width  string `yaml:"width" json:"width,omitempty"`
	Height string `yaml:"height" json:"height,omitempty"`
}

// CellContext is handed to custom cell formatters.
type CellContext struct {
	Value  any
	Record Record
	Column *ColumnConfig
}

// CommitFunc persists an edited cell value. A returned error reverts the cell.
type CommitFunc func(ctx context.Context, value string, record Record) error

// ColumnConfig describes one logical column. It is immutable once registered.
type ColumnConfig struct {
	ID     string
	Header string

	// AccessorKey is a dotted key path into the record ("owner.name").
	AccessorKey string
	// AccessorFn takes precedence over AccessorKey when set.
	AccessorFn func(Record) any
	// Cell formats the display value. Defaults to the value's text form.
	Cell func(CellContext) string

	EnableSorting           bool
	EnableColumnFilter      bool
	ExcludeFromGlobalFilter bool
	FilterType              FilterType
	FilterOptions           []FilterOption

	EnableEditing bool
	EditType      EditType
	EditOptions   []FilterOption
	OnCellEdit    CommitFunc

	Size     int
	Skeleton Skeleton
}

// HasAccessor reports whether the column resolves a value from records.
func (c *ColumnConfig) HasAccessor() bool {
	return c.AccessorFn != nil || c.AccessorKey != ""
}

// Value resolves the column's raw value for a record.
func (c *ColumnConfig) Value(r Record) any {
	if c.AccessorFn != nil {
		return c.AccessorFn(r)
	}
	if c.AccessorKey != "" {
		return ValueAt(r, c.AccessorKey)
	}
	return nil
}

// Display renders the value shown while the cell is not being edited.
func (c *ColumnConfig) Display(r Record) string {
	v := c.Value(r)
	if c.Cell != nil {
		return c.Cell(CellContext{Value: v, Record: r, Column: c})
	}
	return ToText(v)
}

// EffectiveFilterType falls back to a plain text filter.
func (c *ColumnConfig) EffectiveFilterType() FilterType {
	switch c.FilterType {
	case FilterSelect:
		if len(c.FilterOptions) == 0 {
			return FilterText
		}
		return FilterSelect
	case FilterDate, FilterNumber:
		return c.FilterType
	default:
		return FilterText
	}
}

// EffectiveEditType falls back to a text input.
func (c *ColumnConfig) EffectiveEditType() EditType {
	switch c.EditType {
	case EditSelect:
		if len(c.EditOptions) == 0 {
			return EditText
		}
		return EditSelect
	case EditDate, EditNumber:
		return c.EditType
	default:
		return EditText
	}
}

// ViewState is a named snapshot of column visibility and page size.
// JSON field names match the format already held by existing stores.
type ViewState struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ColumnVisibility map[string]bool `json:"columnVisibility"`
	PageSize         int             `json:"pageSize"`
	IsDefault        bool            `json:"isDefault,omitempty"`
}

// Pagination is a zero-based page index plus page size.
type Pagination struct {
	PageIndex int
	PageSize  int
}

// SortState is the active single-column sort. An empty ColumnID means unsorted.
type SortState struct {
	ColumnID string
	Desc     bool
}

// SortDirection is what a header shows for its column.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Direction returns the direction of columnID under s.
func (s SortState) Direction(columnID string) SortDirection {
	if s.ColumnID != columnID || columnID == "" {
		return SortNone
	}
	if s.Desc {
		return SortDesc
	}
	return SortAsc
}

// Features are the caller's feature flags. All default to off.
type Features struct {
	GlobalSearch     bool
	ColumnVisibility bool
	Pagination       bool
	CSVExport        bool
	DateRangeFilter  bool
	CustomViews      bool
	SubRows          bool
	RowClick         bool
}

// Options is the caller contract of a table beyond its columns.
type Options struct {
	Features Features

	DateFilterField         string
	GlobalSearchPlaceholder string
	InitialPageSize         int
	PageSizeOptions         []int
	ViewStorageKey          string
	SkeletonRows            int
	EmptyMessage            string

	// GetRowID identifies a row for expansion and editing. Defaults to the
	// row's position in the unfiltered data.
	GetRowID func(Record) string
	// GetSubRows returns the child records shown under an expanded row.
	GetSubRows func(Record) []Record
	SubRows    SubRowsConfig

	// OnViewChange is notified when a view is saved or applied.
	OnViewChange func(ViewState)
	// OnRowClick is notified when a row is clicked (Features.RowClick).
	OnRowClick func(Record)
}

const (
	DefaultGlobalSearchPlaceholder = "Search all columns..."
	DefaultPageSize                = 50
	DefaultViewStorageKey          = "table-views"
	DefaultSkeletonRows            = 5
	DefaultEmptyMessage            = "No items found"

	// SelectColumnID is the implicit row-selection column, never exported.
	SelectColumnID = "select"
)

// DefaultPageSizeOptions are offered when Options.PageSizeOptions is empty.
var DefaultPageSizeOptions = []int{10, 20, 30, 50, 100}

// withDefaults returns a copy of o with unset fields defaulted.
func (o Options) withDefaults() Options {
	if o.GlobalSearchPlaceholder == "" {
		o.GlobalSearchPlaceholder = DefaultGlobalSearchPlaceholder
	}
	if o.InitialPageSize <= 0 {
		o.InitialPageSize = DefaultPageSize
	}
	if len(o.PageSizeOptions) == 0 {
		o.PageSizeOptions = DefaultPageSizeOptions
	}
	if o.ViewStorageKey == "" {
		o.ViewStorageKey = DefaultViewStorageKey
	}
	if o.SkeletonRows <= 0 {
		o.SkeletonRows = DefaultSkeletonRows
	}
	if o.EmptyMessage == "" {
		o.EmptyMessage = DefaultEmptyMessage
	}
	return o
}

// Definition is everything needed to serve one table.
type Definition struct {
	Key     string
	Label   string
	Columns []ColumnConfig
	Options Options
}

// Column returns the column with the given id.
func (d *Definition) Column(id string) (*ColumnConfig, bool) {
	for i := range d.Columns {
		if d.Columns[i].ID == id {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// Source supplies the current records of a table.
type Source interface {
	Records(ctx context.Context) ([]Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Record, error)

// Records implements Source.
func (f SourceFunc) Records(ctx context.Context) ([]Record, error) {
	return f(ctx)
}
