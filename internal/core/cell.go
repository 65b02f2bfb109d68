package core

import (
	"context"
	"fmt"
	"strconv"
)

var cellLocks keyedMutex

// CellRef addresses one cell of a registered table.
type CellRef struct {
	Table  string
	RowID  string
	Column string
}

func (r CellRef) lockKey() string {
	return r.Table + "\x00" + r.RowID + "\x00" + r.Column
}

// OpenCell returns the addressed cell. With edit set the cell is returned in
// edit mode, failing with ErrColumnNotEditable when the column forbids it.
func OpenCell(ctx context.Context, ref CellRef, edit bool) (*EditableCell, error) {
	entry, ok := Get(ref.Table)
	if !ok {
		return nil, fmt.Errorf("open cell: %w", ErrTableNotFound)
	}
	def := &entry.Definition

	col, ok := def.Column(ref.Column)
	if !ok {
		return nil, fmt.Errorf("open cell %s: %w", ref.Column, ErrColumnNotFound)
	}

	records, err := entry.Source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cell records: %w", err)
	}
	rec, ok := findRecord(def, records, ref.RowID)
	if !ok {
		return nil, fmt.Errorf("open cell row %s: %w", ref.RowID, ErrRowNotFound)
	}

	cell := NewEditableCell(col, rec)
	if edit && !cell.Begin() {
		return nil, fmt.Errorf("open cell %s: %w", ref.Column, ErrColumnNotEditable)
	}
	return cell, nil
}

// CommitCell enters edit mode on the addressed cell, replaces the draft with
// value and commits it. Commits to the same cell are serialized. The cell is
// returned in display mode whatever the outcome.
func CommitCell(ctx context.Context, ref CellRef, value string) (*EditableCell, CommitOutcome, error) {
	unlock := cellLocks.lock(ref.lockKey())
	defer unlock()

	cell, err := OpenCell(ctx, ref, true)
	if err != nil {
		return nil, CommitIgnored, err
	}
	cell.SetDraft(value)
	return cell, cell.Commit(ctx), nil
}

// findRecord locates a record by row id, the same id the row model assigns.
func findRecord(def *Definition, records []Record, id string) (Record, bool) {
	if def.Options.GetRowID == nil {
		i, err := strconv.Atoi(id)
		if err != nil || i < 0 || i >= len(records) {
			return nil, false
		}
		return records[i], true
	}
	for _, rec := range records {
		if def.Options.GetRowID(rec) == id {
			return rec, true
		}
	}
	return nil, false
}
