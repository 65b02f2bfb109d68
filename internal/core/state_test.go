package core

import (
	"net/url"
	"testing"
)

func TestParseState_Fresh(t *testing.T) {
	def := rowModelDefinition()

	if st := ParseState(def, url.Values{}); !st.Fresh {
		t.Error("empty query should be a fresh mount")
	}
	if st := ParseState(def, url.Values{"loading": {"1"}}); !st.Fresh || !st.Loading {
		t.Errorf("loading flag alone: Fresh=%v Loading=%v, want both true", st.Fresh, st.Loading)
	}
	if st := ParseState(def, url.Values{"size": {"10"}}); st.Fresh {
		t.Error("query with state should not be fresh")
	}
	if st := ParseState(def, url.Values{"f.name": {"x"}}); st.Fresh {
		t.Error("column filter should not be fresh")
	}
}

func TestParseState_Fields(t *testing.T) {
	def := rowModelDefinition()
	q := url.Values{
		"q":       {"acme"},
		"range":   {"last_week"},
		"sort":    {"amount"},
		"desc":    {"1"},
		"page":    {"3"},
		"size":    {"20"},
		"hide":    {"notes, due,unknown"},
		"f.name":  {"al"},
		"f.notes": {"ignored"},
		"f.nope":  {"ignored"},
		"view":    {"view-1"},
		"exp":     {"4,7"},
	}

	st := ParseState(def, q)

	if st.GlobalFilter != "acme" {
		t.Errorf("GlobalFilter = %q", st.GlobalFilter)
	}
	if st.DateRange != RangeLastWeek {
		t.Errorf("DateRange = %q", st.DateRange)
	}
	if st.Sort != (SortState{ColumnID: "amount", Desc: true}) {
		t.Errorf("Sort = %+v", st.Sort)
	}
	if st.Pagination != (Pagination{PageIndex: 2, PageSize: 20}) {
		t.Errorf("Pagination = %+v", st.Pagination)
	}
	if st.IsVisible("notes") || st.IsVisible("due") || !st.IsVisible("name") {
		t.Errorf("Visibility = %v", st.Visibility)
	}
	if _, ok := st.Visibility["unknown"]; ok {
		t.Error("unknown column should not enter the visibility map")
	}
	if len(st.ColumnFilters) != 1 || st.ColumnFilters["name"] != "al" {
		t.Errorf("ColumnFilters = %v", st.ColumnFilters)
	}
	if st.CurrentViewID != "view-1" {
		t.Errorf("CurrentViewID = %q", st.CurrentViewID)
	}
	if !st.IsExpanded("4") || !st.IsExpanded("7") || st.IsExpanded("5") {
		t.Errorf("Expanded = %v", st.Expanded)
	}
}

func TestParseState_IgnoresBadValues(t *testing.T) {
	def := rowModelDefinition()
	st := ParseState(def, url.Values{
		"sort": {"notes"},
		"page": {"-2"},
		"size": {"abc"},
	})

	if st.Sort.ColumnID != "" {
		t.Errorf("unsortable column should not sort, got %+v", st.Sort)
	}
	if st.Pagination.PageIndex != 0 || st.Pagination.PageSize != 10 {
		t.Errorf("Pagination = %+v, want defaults", st.Pagination)
	}
}

func TestState_QueryRoundTrip(t *testing.T) {
	def := rowModelDefinition()
	st := DefaultState(def).
		WithGlobalFilter("north").
		WithColumnFilter("status", "open").
		WithDateRange(RangeLastMonth).
		WithSort(SortState{ColumnID: "name", Desc: true}).
		WithPageSize(20).
		WithPageIndex(1).
		WithColumnToggled("notes").
		WithView("v1").
		WithExpandedToggled("3")

	back := ParseState(def, st.Query())

	if back.GlobalFilter != st.GlobalFilter || back.DateRange != st.DateRange ||
		back.Sort != st.Sort || back.Pagination != st.Pagination ||
		back.CurrentViewID != st.CurrentViewID {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, st)
	}
	if back.ColumnFilters["status"] != "open" || back.IsVisible("notes") || !back.IsExpanded("3") {
		t.Errorf("round trip lost maps: %+v", back)
	}
}

func TestState_QueryOmitsDefaults(t *testing.T) {
	def := rowModelDefinition()
	q := DefaultState(def).Query()

	if len(q) != 1 || q.Get("size") != "10" {
		t.Errorf("default query = %v, want only size", q)
	}
}

func TestState_WithPageSize_KeepsTopRow(t *testing.T) {
	st := State{Pagination: Pagination{PageIndex: 2, PageSize: 10}}

	tests := []struct {
		size      int
		wantIndex int
	}{
		{25, 0},
		{5, 4},
		{20, 1},
		{7, 2},
	}

	for _, tt := range tests {
		got := st.WithPageSize(tt.size)
		if got.Pagination.PageIndex != tt.wantIndex || got.Pagination.PageSize != tt.size {
			t.Errorf("WithPageSize(%d) = %+v, want index %d", tt.size, got.Pagination, tt.wantIndex)
		}
	}

	if got := st.WithPageSize(0); got.Pagination != st.Pagination {
		t.Errorf("non-positive size changed pagination to %+v", got.Pagination)
	}
}

func TestState_FiltersResetPage(t *testing.T) {
	st := State{Pagination: Pagination{PageIndex: 4, PageSize: 10}}

	if got := st.WithGlobalFilter("x"); got.Pagination.PageIndex != 0 {
		t.Error("WithGlobalFilter should return to the first page")
	}
	if got := st.WithColumnFilter("name", "x"); got.Pagination.PageIndex != 0 {
		t.Error("WithColumnFilter should return to the first page")
	}
	if got := st.WithDateRange(RangeToday); got.Pagination.PageIndex != 0 {
		t.Error("WithDateRange should return to the first page")
	}
	if got := st.WithSort(SortState{ColumnID: "name"}); got.Pagination.PageIndex != 4 {
		t.Error("WithSort should keep the page")
	}
}

func TestState_CopiesDoNotAlias(t *testing.T) {
	def := rowModelDefinition()
	st := DefaultState(def).WithColumnFilter("name", "a")

	next := st.WithColumnFilter("name", "").WithColumnToggled("name").WithExpandedToggled("1")

	if st.ColumnFilters["name"] != "a" {
		t.Error("original filters were mutated")
	}
	if !st.IsVisible("name") || st.IsExpanded("1") {
		t.Error("original visibility or expansion was mutated")
	}
	if _, ok := next.ColumnFilters["name"]; ok {
		t.Error("empty filter value should clear the filter")
	}
	if next.Fresh {
		t.Error("derived states are never fresh")
	}

	collapsed := next.WithExpandedToggled("1")
	if collapsed.IsExpanded("1") {
		t.Error("toggling twice should collapse the row")
	}
}
