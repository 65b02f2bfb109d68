package core

import (
	"context"
	"sync"

	"github.com/JonMunkholm/datatable/internal/logging"
)

// CellMode is the state of an editable cell.
type CellMode int

const (
	CellDisplay CellMode = iota
	CellEditing
)

// CommitOutcome reports what a commit did. The cell never surfaces an error.
type CommitOutcome int

const (
	// CommitIgnored: the cell was not being edited.
	CommitIgnored CommitOutcome = iota
	// CommitUnchanged: the value matched the last committed value, no callback ran.
	CommitUnchanged
	// CommitSaved: the callback accepted the value.
	CommitSaved
	// CommitReverted: the callback failed and the last committed value was restored.
	CommitReverted
)

func (o CommitOutcome) String() string {
	switch o {
	case CommitUnchanged:
		return "unchanged"
	case CommitSaved:
		return "saved"
	case CommitReverted:
		return "reverted"
	default:
		return "ignored"
	}
}

// EditableCell is one cell toggling between display and edit mode.
//
// All methods are serialized on the cell, including the commit callback:
// a second edit cannot start until an in-flight commit has resolved.
type EditableCell struct {
	mu sync.Mutex

	column *ColumnConfig
	record Record

	initial   any
	mode      CellMode
	committed string
	draft     string
}

// NewEditableCell starts a cell in display mode holding the record's value.
func NewEditableCell(col *ColumnConfig, rec Record) *EditableCell {
	v := col.Value(rec)
	text := ToText(v)
	return &EditableCell{
		column:    col,
		record:    rec,
		initial:   v,
		mode:      CellDisplay,
		committed: text,
		draft:     text,
	}
}

// Column returns the cell's column.
func (c *EditableCell) Column() *ColumnConfig {
	return c.column
}

// Mode returns the current mode.
func (c *EditableCell) Mode() CellMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Draft returns the value in the editor.
func (c *EditableCell) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Committed returns the last committed value.
func (c *EditableCell) Committed() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed
}

// Begin enters edit mode. It returns false when the column does not allow editing.
func (c *EditableCell) Begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.column.EnableEditing {
		return false
	}
	if c.mode == CellDisplay {
		c.draft = c.committed
		c.mode = CellEditing
	}
	return true
}

// SetDraft replaces the editor value. Ignored outside edit mode.
func (c *EditableCell) SetDraft(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == CellEditing {
		c.draft = v
	}
}

// HandleKey commits on Enter and cancels on Escape. Other keys are ignored.
func (c *EditableCell) HandleKey(ctx context.Context, key string) CommitOutcome {
	switch key {
	case "Enter":
		return c.Commit(ctx)
	case "Escape":
		c.Cancel()
	}
	return CommitIgnored
}

// Blur commits, as leaving the input does.
func (c *EditableCell) Blur(ctx context.Context) CommitOutcome {
	return c.Commit(ctx)
}

// Commit leaves edit mode. The column's callback runs only when the draft
// differs from the last committed value; if it fails the failure is logged,
// the draft reverts and the cell still returns to display mode.
func (c *EditableCell) Commit(ctx context.Context) CommitOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != CellEditing {
		return CommitIgnored
	}
	c.mode = CellDisplay

	if c.draft == c.committed || c.column.OnCellEdit == nil {
		c.draft = c.committed
		return CommitUnchanged
	}

	if err := c.column.OnCellEdit(ctx, c.draft, c.record); err != nil {
		logging.WithFields(ctx, "column", c.column.ID).Error("cell edit rejected, reverting",
			"value", c.draft,
			"committed", c.committed,
			"error", err,
		)
		c.draft = c.committed
		return CommitReverted
	}

	c.committed = c.draft
	return CommitSaved
}

// Cancel restores the last committed value and leaves edit mode. The
// callback is never invoked.
func (c *EditableCell) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = c.committed
	c.mode = CellDisplay
}

// Display renders the value shown in display mode: the column formatter when
// present, else the committed value.
func (c *EditableCell) Display() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var v any = c.committed
	if c.committed == ToText(c.initial) {
		v = c.initial
	}
	if c.column.Cell != nil {
		return c.column.Cell(CellContext{Value: v, Record: c.record, Column: c.column})
	}
	return c.committed
}
