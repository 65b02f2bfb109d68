package core

import "strings"

// BranchGlyph prefixes the first cell of a sub-row that has a branch label.
const BranchGlyph = "└"

// SubColumn is one column of the nested sub-row table.
type SubColumn struct {
	Header string
	// AccessorKey is a dotted key path into the child record.
	AccessorKey string
	AccessorFn  func(Record) any
	Cell        func(CellContext) string
}

// SubRowsConfig describes the nested table under an expanded row.
type SubRowsConfig struct {
	Columns []SubColumn
	// BranchKey, when set, is a key path whose value labels the first cell of
	// each child with the branch glyph. Children without it render normally.
	BranchKey string
}

// SubCell is a resolved sub-row cell.
type SubCell struct {
	Text string
	// Branch is set on first-column cells labelled via BranchKey.
	Branch bool
}

// subRowDateLayout is the "Oct 17, 2026" style used for date columns.
const subRowDateLayout = "Jan 2, 2006"

// ResolveSubCell renders one child cell. Resolution order: branch label
// (first column only), custom cell, function accessor, key accessor. Key
// accessed string values under a header containing "Date" are shown as
// dates when they parse. Empty values show "-".
func ResolveSubCell(cfg SubRowsConfig, child Record, colIndex int) SubCell {
	if colIndex < 0 || colIndex >= len(cfg.Columns) {
		return SubCell{Text: "-"}
	}
	col := cfg.Columns[colIndex]

	if colIndex == 0 && cfg.BranchKey != "" {
		if label := ValueAt(child, cfg.BranchKey); !isEmpty(label) {
			return SubCell{Text: ToText(label), Branch: true}
		}
	}

	if col.Cell != nil {
		var v any
		if col.AccessorKey != "" {
			v = ValueAt(child, col.AccessorKey)
		}
		return SubCell{Text: col.Cell(CellContext{Value: v, Record: child})}
	}

	if col.AccessorFn != nil {
		return SubCell{Text: ToText(col.AccessorFn(child))}
	}

	if col.AccessorKey != "" {
		v := ValueAt(child, col.AccessorKey)
		if s, ok := v.(string); ok && s != "" && strings.Contains(col.Header, "Date") {
			if t, ok := ParseTime(s); ok {
				return SubCell{Text: t.Format(subRowDateLayout)}
			}
			return SubCell{Text: s}
		}
		if text := ToText(v); text != "" {
			return SubCell{Text: text}
		}
	}

	return SubCell{Text: "-"}
}

// SubRows returns the resolved child cells of rec, one slice per child.
func SubRows(opts Options, rec Record) [][]SubCell {
	if opts.GetSubRows == nil {
		return nil
	}
	children := opts.GetSubRows(rec)
	out := make([][]SubCell, 0, len(children))
	for _, child := range children {
		cells := make([]SubCell, len(opts.SubRows.Columns))
		for i := range opts.SubRows.Columns {
			cells[i] = ResolveSubCell(opts.SubRows, child, i)
		}
		out = append(out, cells)
	}
	return out
}
