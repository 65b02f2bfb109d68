// Package tables loads table definitions and their records from YAML and
// registers them with the core registry.
//
// The definitions shipped with the server are embedded from
// definitions.yaml; a file named by TABLE_DEFINITIONS_FILE replaces them.
package tables

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/datatable/internal/config"
	"github.com/JonMunkholm/datatable/internal/core"
)

//go:embed definitions.yaml
var embeddedDefinitions []byte

// Loaded is a registered table and its dataset.
type Loaded struct {
	Definition core.Definition
	Dataset    *Dataset
}

// Parse decodes a definitions file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse table definitions: %w", err)
	}
	if len(f.Tables) == 0 {
		return nil, errors.New("table definitions: no tables defined")
	}
	return &f, nil
}

// ReadFile returns the definitions at path, or the embedded ones when path is empty.
func ReadFile(path string) ([]byte, error) {
	if path == "" {
		return embeddedDefinitions, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table definitions: %w", err)
	}
	return data, nil
}

// Build converts specs into definitions backed by fresh datasets. Page size
// and skeleton defaults come from cfg when a table leaves them unset.
func Build(f *File, cfg config.TableConfig) ([]Loaded, error) {
	out := make([]Loaded, 0, len(f.Tables))
	for i := range f.Tables {
		l, err := build(&f.Tables[i], cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Register loads the definitions named by cfg and registers every table.
func Register(cfg config.TableConfig) ([]Loaded, error) {
	data, err := ReadFile(cfg.DefinitionsFile)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	loaded, err := Build(f, cfg)
	if err != nil {
		return nil, err
	}
	for _, l := range loaded {
		if _, exists := core.Get(l.Definition.Key); exists {
			return nil, fmt.Errorf("table %s: already registered", l.Definition.Key)
		}
		core.Register(l.Definition, l.Dataset)
	}
	return loaded, nil
}

func build(spec *TableSpec, cfg config.TableConfig) (Loaded, error) {
	if spec.Key == "" {
		return Loaded{}, errors.New("table definitions: table without key")
	}

	ds := NewDataset(spec.Key, spec.RowID, spec.Records)

	opts := core.Options{
		Features:                core.Features(spec.Features),
		DateFilterField:         spec.DateField,
		GlobalSearchPlaceholder: spec.SearchPlaceholder,
		InitialPageSize:         spec.PageSize,
		PageSizeOptions:         spec.PageSizeOptions,
		ViewStorageKey:          spec.ViewStorageKey,
		SkeletonRows:            spec.SkeletonRows,
		EmptyMessage:            spec.EmptyMessage,
	}
	if opts.InitialPageSize <= 0 {
		opts.InitialPageSize = cfg.PageSize
	}
	if len(opts.PageSizeOptions) == 0 {
		opts.PageSizeOptions = cfg.PageSizes()
	}
	if opts.SkeletonRows <= 0 {
		opts.SkeletonRows = cfg.SkeletonRows
	}
	if opts.ViewStorageKey == "" {
		opts.ViewStorageKey = spec.Key + "-views"
	}
	if opts.Features.DateRangeFilter && opts.DateFilterField == "" {
		return Loaded{}, fmt.Errorf("table %s: dateRangeFilter needs dateField", spec.Key)
	}

	if spec.RowID != "" {
		field := spec.RowID
		opts.GetRowID = func(r core.Record) string {
			return core.ToText(core.ValueAt(r, field))
		}
	}

	key, rowID := spec.Key, spec.RowID
	if opts.Features.RowClick {
		opts.OnRowClick = func(r core.Record) {
			slog.Info("row clicked", "table", key, "row", core.ToText(core.ValueAt(r, rowID)))
		}
	}
	opts.OnViewChange = func(v core.ViewState) {
		slog.Debug("view changed", "table", key, "view_id", v.ID, "name", v.Name)
	}

	if spec.SubRows != nil {
		sub, err := buildSubRows(spec.SubRows)
		if err != nil {
			return Loaded{}, fmt.Errorf("table %s: %w", spec.Key, err)
		}
		field := spec.SubRows.Field
		opts.SubRows = sub
		opts.GetSubRows = func(r core.Record) []core.Record {
			return childRecords(core.ValueAt(r, field))
		}
	}

	cols := make([]core.ColumnConfig, len(spec.Columns))
	for i, cs := range spec.Columns {
		col, err := buildColumn(cs)
		if err != nil {
			return Loaded{}, fmt.Errorf("table %s: %w", spec.Key, err)
		}
		cols[i] = col
	}
	for i := range cols {
		if !cols[i].EnableEditing {
			continue
		}
		if spec.RowID == "" {
			return Loaded{}, fmt.Errorf("table %s: column %s is editable but the table has no rowId", spec.Key, cols[i].ID)
		}
		if strings.Contains(cols[i].AccessorKey, ".") || cols[i].AccessorKey == "" {
			return Loaded{}, fmt.Errorf("table %s: editable column %s needs a top-level accessor", spec.Key, cols[i].ID)
		}
		cols[i].OnCellEdit = commitFunc(ds, &cols[i])
	}

	return Loaded{
		Definition: core.Definition{
			Key:     spec.Key,
			Label:   spec.Label,
			Columns: cols,
			Options: opts,
		},
		Dataset: ds,
	}, nil
}

func buildColumn(cs ColumnSpec) (core.ColumnConfig, error) {
	if cs.ID == "" {
		return core.ColumnConfig{}, errors.New("column without id")
	}
	col := core.ColumnConfig{
		ID:                 cs.ID,
		Header:             cs.Header,
		AccessorKey:        cs.Accessor,
		EnableSorting:      cs.Sortable,
		EnableColumnFilter: cs.Filter != "",
		FilterType:         cs.Filter,
		FilterOptions:      cs.FilterOptions,
		EnableEditing:      cs.Editable,
		EditType:           cs.EditType,
		EditOptions:        cs.EditOptions,
		Size:               cs.Size,
		Skeleton:           cs.Skeleton,
	}
	if cs.Searchable != nil {
		col.ExcludeFromGlobalFilter = !*cs.Searchable
	}
	if col.EditType == core.EditSelect && len(col.EditOptions) == 0 {
		col.EditOptions = col.FilterOptions
	}
	if cs.Format != "" {
		f, ok := formatters[cs.Format]
		if !ok {
			return core.ColumnConfig{}, fmt.Errorf("column %s: unknown format %q", cs.ID, cs.Format)
		}
		col.Cell = f
	}
	return col, nil
}

func buildSubRows(spec *SubRowsSpec) (core.SubRowsConfig, error) {
	if spec.Field == "" {
		return core.SubRowsConfig{}, errors.New("subRows needs field")
	}
	cfg := core.SubRowsConfig{BranchKey: spec.BranchKey}
	for _, cs := range spec.Columns {
		sc := core.SubColumn{Header: cs.Header, AccessorKey: cs.Accessor}
		if cs.Format != "" {
			f, ok := formatters[cs.Format]
			if !ok {
				return core.SubRowsConfig{}, fmt.Errorf("sub column %s: unknown format %q", cs.Header, cs.Format)
			}
			sc.Cell = f
		}
		cfg.Columns = append(cfg.Columns, sc)
	}
	return cfg, nil
}

// childRecords converts a decoded YAML list of maps into records.
func childRecords(v any) []core.Record {
	switch list := v.(type) {
	case []core.Record:
		return list
	case []any:
		out := make([]core.Record, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, core.Record(m))
			}
		}
		return out
	default:
		return nil
	}
}
