package core

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportKind names which rows an export covers.
type ExportKind string

const (
	// ExportCurrentPage covers the rows of the page on screen.
	ExportCurrentPage ExportKind = "current-page"
	// ExportAllFiltered covers every row surviving the filters, ignoring pagination.
	ExportAllFiltered ExportKind = "all-filtered"
)

// CSVContentType is the MIME type of CSV downloads.
const CSVContentType = "text/csv;charset=utf-8;"

// XLSXContentType is the MIME type of spreadsheet downloads.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ParseExportKind returns the kind named s, defaulting to the current page.
func ParseExportKind(s string) ExportKind {
	if ExportKind(s) == ExportAllFiltered {
		return ExportAllFiltered
	}
	return ExportCurrentPage
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// ExportFilename is table-export-<kind>-<YYYY-MM-DD>.<ext>, dated in UTC.
func ExportFilename(kind ExportKind, ext string, now time.Time) string {
	return fmt.Sprintf("table-export-%s-%s.%s", kind, now.UTC().Format("2006-01-02"), ext)
}

// ExportColumns drops the implicit selection column.
func ExportColumns(cols []*ColumnConfig) []*ColumnConfig {
	out := make([]*ColumnConfig, 0, len(cols))
	for _, c := range cols {
		if c.ID == SelectColumnID {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CleanExportValue coerces a value to text, strips tag-like substrings,
// doubles embedded quotes and trims surrounding space.
func CleanExportValue(v any) string {
	s := tagPattern.ReplaceAllString(ToText(v), "")
	s = strings.ReplaceAll(s, `"`, `""`)
	return strings.TrimSpace(s)
}

// EscapeCSVField cleans a value and quotes it when it holds a comma, quote or newline.
func EscapeCSVField(v any) string {
	s := CleanExportValue(v)
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + s + `"`
	}
	return s
}

// ExportCSV renders a header row followed by one line per row, newline-joined.
// Cells hold the columns' raw values, not their display formatting.
func ExportCSV(cols []*ColumnConfig, rows []Row) string {
	cols = ExportColumns(cols)

	lines := make([]string, 0, len(rows)+1)
	fields := make([]string, len(cols))

	for i, c := range cols {
		fields[i] = EscapeCSVField(exportHeader(c))
	}
	lines = append(lines, strings.Join(fields, ","))

	for _, row := range rows {
		for i, c := range cols {
			fields[i] = EscapeCSVField(c.Value(row.Record))
		}
		lines = append(lines, strings.Join(fields, ","))
	}

	return strings.Join(lines, "\n")
}

func exportHeader(c *ColumnConfig) string {
	if c.Header == "" {
		return c.ID
	}
	return c.Header
}

// exportSheet is the worksheet name of spreadsheet exports.
const exportSheet = "Export"

// ExportXLSX streams the same header and rows as ExportCSV into a workbook.
// Numbers, booleans and times keep their type; everything else is cleaned text.
func ExportXLSX(w io.Writer, cols []*ColumnConfig, rows []Row) error {
	cols = ExportColumns(cols)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = exportHeader(c)
		if c.Size > 0 {
			// Column sizes are pixels; a character is about 7px wide.
			_ = sw.SetColWidth(i+1, i+1, float64(c.Size)/7)
		}
	}
	cell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := sw.SetRow(cell, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range rows {
		values := make([]interface{}, len(cols))
		for i, c := range cols {
			values[i] = spreadsheetValue(c.Value(row.Record))
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func spreadsheetValue(v any) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case int, int32, int64, float32, float64, bool:
		return val
	case time.Time:
		return val
	default:
		return strings.TrimSpace(tagPattern.ReplaceAllString(ToText(v), ""))
	}
}
