package core

import (
	"testing"
	"time"
)

var rangeNow = time.Date(2026, 10, 17, 15, 0, 0, 0, time.Local)

func TestDateRange_Start(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	tests := []struct {
		r      DateRange
		want   time.Time
		wantOK bool
	}{
		{RangeToday, day(2026, 10, 17), true},
		{RangeLast3Days, day(2026, 10, 14), true},
		{RangeLastWeek, day(2026, 10, 10), true},
		{RangeLast15Days, day(2026, 10, 2), true},
		{RangeLastMonth, day(2026, 9, 17), true},
		{RangeLast6Months, day(2026, 4, 17), true},
		{RangeLastYear, day(2025, 10, 17), true},
		{RangeAll, time.Time{}, false},
		{DateRange("fortnight"), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			got, ok := tt.r.Start(rangeNow)
			if ok != tt.wantOK {
				t.Fatalf("Start ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Start = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDateRange(t *testing.T) {
	if got := ParseDateRange("last_week"); got != RangeLastWeek {
		t.Errorf("ParseDateRange(last_week) = %q", got)
	}
	if got := ParseDateRange("bogus"); got != RangeAll {
		t.Errorf("unknown range should fall back to all, got %q", got)
	}
	if got := ParseDateRange(""); got != RangeAll {
		t.Errorf("empty range should fall back to all, got %q", got)
	}
}

func TestFilterByDateRange(t *testing.T) {
	records := []Record{
		{"id": "a", "created_at": "2026-10-17"},
		{"id": "b", "created_at": "2026-10-15"},
		{"id": "c", "created_at": "2026-10-14"},
		{"id": "d", "created_at": "2026-10-01"},
		{"id": "e", "created_at": "2025-12-01"},
		{"id": "f", "created_at": "not a date"},
		{"id": "g"},
	}

	tests := []struct {
		name  string
		r     DateRange
		field string
		want  []string
	}{
		{"today", RangeToday, "created_at", []string{"a"}},
		{"last 3 days includes boundary", RangeLast3Days, "created_at", []string{"a", "b", "c"}},
		{"last month", RangeLastMonth, "created_at", []string{"a", "b", "c", "d"}},
		{"last year", RangeLastYear, "created_at", []string{"a", "b", "c", "d", "e"}},
		{"all keeps everything", RangeAll, "created_at", []string{"a", "b", "c", "d", "e", "f", "g"}},
		{"empty field keeps everything", RangeToday, "", []string{"a", "b", "c", "d", "e", "f", "g"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByDateRange(records, tt.r, tt.field, rangeNow)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i, rec := range got {
				if rec["id"] != tt.want[i] {
					t.Errorf("record %d = %v, want %s", i, rec["id"], tt.want[i])
				}
			}
		})
	}
}

func TestFilterByDateRange_TimeValues(t *testing.T) {
	records := []Record{
		{"at": rangeNow.Add(-2 * time.Hour)},
		{"at": rangeNow.AddDate(0, 0, -2)},
		{"at": rangeNow.AddDate(0, 0, -1).UnixMilli()},
	}
	got := FilterByDateRange(records, RangeToday, "at", rangeNow)
	if len(got) != 1 {
		t.Errorf("today kept %d records, want 1", len(got))
	}
	got = FilterByDateRange(records, RangeLast3Days, "at", rangeNow)
	if len(got) != 3 {
		t.Errorf("last 3 days kept %d records, want 3", len(got))
	}
}

func TestFilterRowsByDateRange_KeepsIDs(t *testing.T) {
	def := &Definition{Key: "t"}
	rows := CoreRows(def, []Record{
		{"created_at": "2020-01-01"},
		{"created_at": "2026-10-17"},
	})

	got := filterRowsByDateRange(rows, RangeToday, "created_at", rangeNow)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0].ID != "1" || got[0].Index != 1 {
		t.Errorf("row id = %q index = %d, want the original id 1", got[0].ID, got[0].Index)
	}
}
