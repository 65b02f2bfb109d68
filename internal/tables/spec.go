package tables

import "github.com/JonMunkholm/datatable/internal/core"

// File is the top-level layout of a definitions file.
type File struct {
	Tables []TableSpec `yaml:"tables"`
}

// TableSpec is the YAML form of one table.
type TableSpec struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`

	// RowID is the record key identifying a row. Required when any column is editable.
	RowID string `yaml:"rowId"`

	DateField         string `yaml:"dateField"`
	SearchPlaceholder string `yaml:"searchPlaceholder"`
	PageSize          int    `yaml:"pageSize"`
	PageSizeOptions   []int  `yaml:"pageSizeOptions"`
	ViewStorageKey    string `yaml:"viewStorageKey"`
	SkeletonRows      int    `yaml:"skeletonRows"`
	EmptyMessage      string `yaml:"emptyMessage"`

	Features FeatureSpec   `yaml:"features"`
	Columns  []ColumnSpec  `yaml:"columns"`
	SubRows  *SubRowsSpec  `yaml:"subRows"`
	Records  []core.Record `yaml:"records"`
}

// FeatureSpec mirrors core.Features.
type FeatureSpec struct {
	GlobalSearch     bool `yaml:"globalSearch"`
	ColumnVisibility bool `yaml:"columnVisibility"`
	Pagination       bool `yaml:"pagination"`
	CSVExport        bool `yaml:"csvExport"`
	DateRangeFilter  bool `yaml:"dateRangeFilter"`
	CustomViews      bool `yaml:"customViews"`
	SubRows          bool `yaml:"subRows"`
	RowClick         bool `yaml:"rowClick"`
}

// ColumnSpec is the YAML form of one column.
type ColumnSpec struct {
	ID       string `yaml:"id"`
	Header   string `yaml:"header"`
	Accessor string `yaml:"accessor"`
	// Format names a display formatter (see formatters).
	Format string `yaml:"format"`

	Sortable      bool                `yaml:"sortable"`
	Filter        core.FilterType     `yaml:"filter"`
	FilterOptions []core.FilterOption `yaml:"filterOptions"`
	// Searchable defaults to true.
	Searchable *bool `yaml:"searchable"`

	Editable    bool                `yaml:"editable"`
	EditType    core.EditType       `yaml:"editType"`
	EditOptions []core.FilterOption `yaml:"editOptions"`

	Size     int           `yaml:"size"`
	Skeleton core.Skeleton `yaml:"skeleton"`
}

// SubRowsSpec describes the nested table of expanded rows.
type SubRowsSpec struct {
	// Field is the record key holding the child records.
	Field     string          `yaml:"field"`
	BranchKey string          `yaml:"branchKey"`
	Columns   []SubColumnSpec `yaml:"columns"`
}

// SubColumnSpec is one sub-row column.
type SubColumnSpec struct {
	Header   string `yaml:"header"`
	Accessor string `yaml:"accessor"`
	Format   string `yaml:"format"`
}
