package core

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// State is the transient UI state of one table. It travels in the request
// query string, so every method returns a modified copy instead of mutating.
type State struct {
	GlobalFilter  string
	ColumnFilters map[string]string
	Sort          SortState
	Pagination    Pagination
	Visibility    map[string]bool
	DateRange     DateRange
	CurrentViewID string

	// Expanded is owned by the caller. The table only reads membership and
	// produces toggled copies as navigation intents.
	Expanded map[string]bool

	Loading bool

	// Fresh is set when the request carried no table state at all, i.e. the
	// table is being mounted rather than re-rendered.
	Fresh bool
}

// Query string keys.
const (
	paramSearch     = "q"
	paramRange      = "range"
	paramSort       = "sort"
	paramDesc       = "desc"
	paramPage       = "page"
	paramSize       = "size"
	paramHide       = "hide"
	paramView       = "view"
	paramExpanded   = "exp"
	paramLoading    = "loading"
	paramFilterPref = "f."
)

// DefaultState is the state of a freshly mounted table.
func DefaultState(def *Definition) State {
	opts := def.Options.withDefaults()
	return State{
		ColumnFilters: map[string]string{},
		Pagination:    Pagination{PageIndex: 0, PageSize: opts.InitialPageSize},
		Visibility:    AllVisible(def.Columns),
		DateRange:     RangeAll,
		Expanded:      map[string]bool{},
		Fresh:         true,
	}
}

// AllVisible returns a visibility map showing every column.
func AllVisible(cols []ColumnConfig) map[string]bool {
	vis := make(map[string]bool, len(cols))
	for _, c := range cols {
		vis[c.ID] = true
	}
	return vis
}

// ParseState reads table state from query values. Unknown columns and
// malformed numbers are ignored.
func ParseState(def *Definition, q url.Values) State {
	st := DefaultState(def)

	for key, vals := range q {
		if len(vals) == 0 {
			continue
		}
		switch {
		case key == paramSearch, key == paramRange, key == paramSort, key == paramDesc,
			key == paramPage, key == paramSize, key == paramHide, key == paramView,
			key == paramExpanded, strings.HasPrefix(key, paramFilterPref):
			st.Fresh = false
		}
	}

	st.GlobalFilter = q.Get(paramSearch)
	st.DateRange = ParseDateRange(q.Get(paramRange))
	st.CurrentViewID = q.Get(paramView)
	st.Loading = q.Get(paramLoading) == "1"

	if col := q.Get(paramSort); col != "" {
		if c, ok := def.Column(col); ok && c.EnableSorting {
			st.Sort = SortState{ColumnID: col, Desc: q.Get(paramDesc) == "1"}
		}
	}

	if n, err := strconv.Atoi(q.Get(paramSize)); err == nil && n > 0 {
		st.Pagination.PageSize = n
	}
	if n, err := strconv.Atoi(q.Get(paramPage)); err == nil && n > 0 {
		st.Pagination.PageIndex = n - 1
	}

	for _, id := range splitList(q.Get(paramHide)) {
		if _, ok := def.Column(id); ok {
			st.Visibility[id] = false
		}
	}

	for key, vals := range q {
		if !strings.HasPrefix(key, paramFilterPref) || len(vals) == 0 || vals[0] == "" {
			continue
		}
		id := strings.TrimPrefix(key, paramFilterPref)
		if c, ok := def.Column(id); ok && c.EnableColumnFilter {
			st.ColumnFilters[id] = vals[0]
		}
	}

	for _, id := range splitList(q.Get(paramExpanded)) {
		st.Expanded[id] = true
	}

	return st
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Query encodes the state. Defaults are omitted to keep URLs short; the
// page size is always written so a re-render is never mistaken for a mount.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.GlobalFilter != "" {
		q.Set(paramSearch, s.GlobalFilter)
	}
	if s.DateRange != "" && s.DateRange != RangeAll {
		q.Set(paramRange, string(s.DateRange))
	}
	if s.Sort.ColumnID != "" {
		q.Set(paramSort, s.Sort.ColumnID)
		if s.Sort.Desc {
			q.Set(paramDesc, "1")
		}
	}
	if s.Pagination.PageIndex > 0 {
		q.Set(paramPage, strconv.Itoa(s.Pagination.PageIndex+1))
	}
	if s.Pagination.PageSize > 0 {
		q.Set(paramSize, strconv.Itoa(s.Pagination.PageSize))
	}
	if hidden := s.HiddenColumns(); len(hidden) > 0 {
		q.Set(paramHide, strings.Join(hidden, ","))
	}
	for id, v := range s.ColumnFilters {
		if v != "" {
			q.Set(paramFilterPref+id, v)
		}
	}
	if s.CurrentViewID != "" {
		q.Set(paramView, s.CurrentViewID)
	}
	if exp := sortedKeys(s.Expanded); len(exp) > 0 {
		q.Set(paramExpanded, strings.Join(exp, ","))
	}
	return q
}

// Encode is Query().Encode().
func (s State) Encode() string {
	return s.Query().Encode()
}

// HiddenColumns lists hidden column ids in sorted order.
func (s State) HiddenColumns() []string {
	var hidden []string
	for id, shown := range s.Visibility {
		if !shown {
			hidden = append(hidden, id)
		}
	}
	sort.Strings(hidden)
	return hidden
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// IsVisible reports whether a column is shown. Missing entries are visible.
func (s State) IsVisible(id string) bool {
	v, ok := s.Visibility[id]
	return !ok || v
}

// IsExpanded reports whether a row is in the caller's expansion set.
func (s State) IsExpanded(rowID string) bool {
	return s.Expanded[rowID]
}

// clone deep-copies the maps so the receiver stays untouched.
func (s State) clone() State {
	c := s
	c.ColumnFilters = make(map[string]string, len(s.ColumnFilters))
	for k, v := range s.ColumnFilters {
		c.ColumnFilters[k] = v
	}
	c.Visibility = make(map[string]bool, len(s.Visibility))
	for k, v := range s.Visibility {
		c.Visibility[k] = v
	}
	c.Expanded = make(map[string]bool, len(s.Expanded))
	for k, v := range s.Expanded {
		c.Expanded[k] = v
	}
	c.Fresh = false
	return c
}

// WithGlobalFilter sets the search text and returns to the first page.
func (s State) WithGlobalFilter(q string) State {
	c := s.clone()
	c.GlobalFilter = q
	c.Pagination.PageIndex = 0
	return c
}

// WithColumnFilter sets one column's filter value ("" clears it) and returns
// to the first page.
func (s State) WithColumnFilter(id, value string) State {
	c := s.clone()
	if value == "" {
		delete(c.ColumnFilters, id)
	} else {
		c.ColumnFilters[id] = value
	}
	c.Pagination.PageIndex = 0
	return c
}

// WithDateRange selects a date bucket and returns to the first page.
func (s State) WithDateRange(r DateRange) State {
	c := s.clone()
	c.DateRange = r
	c.Pagination.PageIndex = 0
	return c
}

// WithSort replaces the active sort.
func (s State) WithSort(sort SortState) State {
	c := s.clone()
	c.Sort = sort
	return c
}

// WithPageIndex moves to a zero-based page. Clamping happens in the row model.
func (s State) WithPageIndex(i int) State {
	c := s.clone()
	if i < 0 {
		i = 0
	}
	c.Pagination.PageIndex = i
	return c
}

// WithPageSize changes the page size while keeping the first row of the
// current page on screen.
func (s State) WithPageSize(size int) State {
	c := s.clone()
	if size <= 0 {
		return c
	}
	top := c.Pagination.PageIndex * c.Pagination.PageSize
	c.Pagination.PageSize = size
	c.Pagination.PageIndex = top / size
	return c
}

// WithVisibility replaces the visibility map.
func (s State) WithVisibility(vis map[string]bool) State {
	c := s.clone()
	c.Visibility = make(map[string]bool, len(vis))
	for k, v := range vis {
		c.Visibility[k] = v
	}
	return c
}

// WithColumnToggled flips one column's visibility.
func (s State) WithColumnToggled(id string) State {
	c := s.clone()
	c.Visibility[id] = !s.IsVisible(id)
	return c
}

// WithView marks a view as current ("" clears it).
func (s State) WithView(id string) State {
	c := s.clone()
	c.CurrentViewID = id
	return c
}

// WithExpandedToggled is the toggle intent for a row: a copy of the state
// whose expansion set has rowID flipped.
func (s State) WithExpandedToggled(rowID string) State {
	c := s.clone()
	if c.Expanded[rowID] {
		delete(c.Expanded, rowID)
	} else {
		c.Expanded[rowID] = true
	}
	return c
}
