package core

import "time"

// DateRange is a named relative date bucket.
type DateRange string

const (
	RangeAll         DateRange = "all"
	RangeToday       DateRange = "today"
	RangeLast3Days   DateRange = "last_3_days"
	RangeLastWeek    DateRange = "last_week"
	RangeLast15Days  DateRange = "last_15_days"
	RangeLastMonth   DateRange = "last_month"
	RangeLast6Months DateRange = "last_6_months"
	RangeLastYear    DateRange = "last_year"
)

// DateRangeOption is a bucket with its display label.
type DateRangeOption struct {
	Value DateRange
	Label string
}

// DateRangeOptions lists the buckets in display order.
var DateRangeOptions = []DateRangeOption{
	{RangeAll, "All Time"},
	{RangeToday, "Today"},
	{RangeLast3Days, "Last 3 Days"},
	{RangeLastWeek, "Last Week"},
	{RangeLast15Days, "Last 15 Days"},
	{RangeLastMonth, "Last Month"},
	{RangeLast6Months, "Last 6 Months"},
	{RangeLastYear, "Last Year"},
}

// ParseDateRange returns the bucket named s, or RangeAll.
func ParseDateRange(s string) DateRange {
	for _, opt := range DateRangeOptions {
		if string(opt.Value) == s {
			return opt.Value
		}
	}
	return RangeAll
}

// Start returns the inclusive lower bound of the bucket relative to now.
// ok is false for RangeAll and unknown buckets, which do not filter.
func (r DateRange) Start(now time.Time) (start time.Time, ok bool) {
	today := StartOfDay(now)
	switch r {
	case RangeToday:
		return today, true
	case RangeLast3Days:
		return today.AddDate(0, 0, -3), true
	case RangeLastWeek:
		return today.AddDate(0, 0, -7), true
	case RangeLast15Days:
		return today.AddDate(0, 0, -15), true
	case RangeLastMonth:
		return today.AddDate(0, -1, 0), true
	case RangeLast6Months:
		return today.AddDate(0, -6, 0), true
	case RangeLastYear:
		return today.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// FilterByDateRange keeps the records whose field parses to an instant on or
// after the bucket's start. Records with a missing or unparseable field are
// dropped. RangeAll or an empty field returns records unchanged.
func FilterByDateRange(records []Record, r DateRange, field string, now time.Time) []Record {
	start, ok := r.Start(now)
	if !ok || field == "" {
		return records
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if onOrAfter(rec, field, start) {
			out = append(out, rec)
		}
	}
	return out
}

// filterRowsByDateRange is FilterByDateRange over rows, keeping their ids.
func filterRowsByDateRange(rows []Row, r DateRange, field string, now time.Time) []Row {
	start, ok := r.Start(now)
	if !ok || field == "" {
		return rows
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if onOrAfter(row.Record, field, start) {
			out = append(out, row)
		}
	}
	return out
}

func onOrAfter(rec Record, field string, start time.Time) bool {
	t, ok := ParseTime(ValueAt(rec, field))
	return ok && !t.Before(start)
}
