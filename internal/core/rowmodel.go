package core

// rowmodel.go computes the rows a table shows: core assembly, global and
// per-column filtering, single-column sorting, and optional pagination.
//
// The pipeline mirrors how the table is rendered:
//
//	records --date range--> Core --filters--> Filtered --sort--> Sorted --page--> Page
//
// The date range pre-filter runs before Core is assembled (see Table), so it
// composes with the other filters by intersection.

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Row is one record in the row model.
type Row struct {
	// Index is the record's position in the data handed to the row model.
	Index  int
	ID     string
	Record Record
}

// RowModel is the computed result for one state.
type RowModel struct {
	Core     []Row
	Filtered []Row
	Sorted   []Row
	// Page is the slice of Sorted that is rendered. Without pagination it is Sorted.
	Page []Row

	Paginated   bool
	Pagination  Pagination
	PageCount   int
	CanPrevious bool
	CanNext     bool
}

// CoreRows wraps records as rows. Without GetRowID a row's id is its
// position in records.
func CoreRows(def *Definition, records []Record) []Row {
	core := make([]Row, len(records))
	for i, rec := range records {
		id := strconv.Itoa(i)
		if def.Options.GetRowID != nil {
			id = def.Options.GetRowID(rec)
		}
		core[i] = Row{Index: i, ID: id, Record: rec}
	}
	return core
}

// BuildRowModel runs the filter, sort and pagination pipeline over records.
func BuildRowModel(def *Definition, records []Record, st State) RowModel {
	return BuildRowModelFromRows(def, CoreRows(def, records), st)
}

// BuildRowModelFromRows is BuildRowModel over rows that already carry ids.
func BuildRowModelFromRows(def *Definition, core []Row, st State) RowModel {
	opts := def.Options.withDefaults()

	filtered := filterRows(def, core, st)
	sorted := sortRows(def, filtered, st.Sort)

	m := RowModel{
		Core:     core,
		Filtered: filtered,
		Sorted:   sorted,
	}

	if !opts.Features.Pagination {
		m.Page = sorted
		m.PageCount = 1
		m.Pagination = Pagination{PageIndex: 0, PageSize: len(sorted)}
		return m
	}

	size := st.Pagination.PageSize
	if size <= 0 {
		size = opts.InitialPageSize
	}
	pageCount := (len(sorted) + size - 1) / size
	if pageCount < 1 {
		pageCount = 1
	}
	index := st.Pagination.PageIndex
	if index >= pageCount {
		index = pageCount - 1
	}
	if index < 0 {
		index = 0
	}

	start := index * size
	end := start + size
	if end > len(sorted) {
		end = len(sorted)
	}
	if start > end {
		start = end
	}

	m.Paginated = true
	m.Page = sorted[start:end]
	m.Pagination = Pagination{PageIndex: index, PageSize: size}
	m.PageCount = pageCount
	m.CanPrevious = index > 0
	m.CanNext = index < pageCount-1
	return m
}

// filterRows applies the global filter and the column filters (AND).
func filterRows(def *Definition, rows []Row, st State) []Row {
	global := strings.ToLower(st.GlobalFilter)

	type active struct {
		col   *ColumnConfig
		value string
	}
	var filters []active
	for id, v := range st.ColumnFilters {
		if v == "" {
			continue
		}
		col, ok := def.Column(id)
		if !ok || !col.EnableColumnFilter || !col.HasAccessor() {
			continue
		}
		filters = append(filters, active{col: col, value: v})
	}

	if global == "" && len(filters) == 0 {
		return rows
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if global != "" && !matchesGlobal(def, row.Record, global) {
			continue
		}
		keep := true
		for _, f := range filters {
			if !MatchColumnFilter(f.col, f.col.Value(row.Record), f.value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// matchesGlobal is a case-insensitive substring match over the searchable columns.
func matchesGlobal(def *Definition, rec Record, needle string) bool {
	for i := range def.Columns {
		col := &def.Columns[i]
		if col.ExcludeFromGlobalFilter || !col.HasAccessor() {
			continue
		}
		if strings.Contains(strings.ToLower(ToText(col.Value(rec))), needle) {
			return true
		}
	}
	return false
}

// MatchColumnFilter applies one column filter to a value according to the
// column's filter type.
func MatchColumnFilter(col *ColumnConfig, value any, filter string) bool {
	if filter == "" {
		return true
	}
	text := ToText(value)

	switch col.EffectiveFilterType() {
	case FilterSelect:
		return strings.EqualFold(text, filter)

	case FilterDate:
		want, okWant := ParseTime(filter)
		got, okGot := ParseTime(value)
		if okWant && okGot {
			return sameDay(want, got)
		}
		if okWant {
			return false
		}

	case FilterNumber:
		want, okWant := ParseNumber(filter)
		got, okGot := ParseNumber(value)
		if okWant && okGot {
			return want == got
		}
		if okWant {
			return false
		}
	}

	return strings.Contains(strings.ToLower(text), strings.ToLower(filter))
}

func sameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// sortRows returns a stably sorted copy. Empty values always sort last.
func sortRows(def *Definition, rows []Row, s SortState) []Row {
	if s.ColumnID == "" {
		return rows
	}
	col, ok := def.Column(s.ColumnID)
	if !ok || !col.EnableSorting || !col.HasAccessor() {
		return rows
	}

	out := make([]Row, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		a := col.Value(out[i].Record)
		b := col.Value(out[j].Record)
		aEmpty, bEmpty := isEmpty(a), isEmpty(b)
		switch {
		case aEmpty && bEmpty:
			return false
		case aEmpty:
			return false
		case bEmpty:
			return true
		}
		c := CompareValues(a, b)
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// FirstSortDesc reports whether the first click on a column sorts descending:
// ascending for text columns, descending for everything else.
func FirstSortDesc(col *ColumnConfig, rows []Row) bool {
	for _, r := range rows {
		v := col.Value(r.Record)
		if v == nil {
			continue
		}
		_, isString := v.(string)
		return !isString
	}
	return false
}

// NextSort is the sort after clicking col's header:
// unsorted -> first direction -> opposite -> unsorted.
func NextSort(current SortState, col *ColumnConfig, firstDesc bool) SortState {
	if !col.EnableSorting {
		return current
	}
	if current.ColumnID != col.ID {
		return SortState{ColumnID: col.ID, Desc: firstDesc}
	}
	if current.Desc == firstDesc {
		return SortState{ColumnID: col.ID, Desc: !firstDesc}
	}
	return SortState{}
}

// CompareValues orders two non-empty values: numbers numerically, times
// chronologically, booleans false first, everything else in natural
// case-insensitive text order.
func CompareValues(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	if isNumeric(a) && isNumeric(b) {
		fa, _ := ParseNumber(a)
		fb, _ := ParseNumber(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return naturalCompare(ToText(a), ToText(b))
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

// naturalCompare compares strings chunk by chunk so "row2" < "row10".
func naturalCompare(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		ca, restA := nextChunk(a)
		cb, restB := nextChunk(b)

		na, errA := strconv.ParseUint(ca, 10, 64)
		nb, errB := strconv.ParseUint(cb, 10, 64)
		if errA == nil && errB == nil {
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		} else if c := strings.Compare(ca, cb); c != 0 {
			return c
		}
		a, b = restA, restB
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func nextChunk(s string) (chunk, rest string) {
	digit := unicode.IsDigit(rune(s[0]))
	i := 1
	for i < len(s) && unicode.IsDigit(rune(s[i])) == digit {
		i++
	}
	return s[:i], s[i:]
}
