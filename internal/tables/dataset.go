package tables

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/datatable/internal/core"
)

// Dataset is the in-memory record set behind one table. It implements
// core.Source and applies committed cell edits.
type Dataset struct {
	mu      sync.RWMutex
	key     string
	rowID   string
	records []core.Record
}

// NewDataset copies records into a new dataset. rowID is the record key
// identifying rows; it may be empty for read-only tables.
func NewDataset(key, rowID string, records []core.Record) *Dataset {
	out := make([]core.Record, len(records))
	for i, r := range records {
		out[i] = cloneRecord(r)
	}
	return &Dataset{key: key, rowID: rowID, records: out}
}

// Records returns a snapshot. Callers may keep it while edits continue.
func (d *Dataset) Records(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]core.Record, len(d.records))
	for i, r := range d.records {
		out[i] = cloneRecord(r)
	}
	return out, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Update sets field on the record whose row id matches rec's.
func (d *Dataset) Update(ctx context.Context, rec core.Record, field string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.rowID == "" {
		return fmt.Errorf("table %s has no row id: %w", d.key, core.ErrColumnNotEditable)
	}
	id := core.ToText(core.ValueAt(rec, d.rowID))

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range d.records {
		if core.ToText(core.ValueAt(r, d.rowID)) == id {
			r[field] = value
			return nil
		}
	}
	return fmt.Errorf("update %s row %s: %w", d.key, id, core.ErrRowNotFound)
}

// cloneRecord copies the top level and any nested records or record lists.
func cloneRecord(r core.Record) core.Record {
	out := make(core.Record, len(r))
	for k, v := range r {
		switch val := v.(type) {
		case map[string]any:
			out[k] = map[string]any(cloneRecord(core.Record(val)))
		case []any:
			items := make([]any, len(val))
			for i, item := range val {
				if m, ok := item.(map[string]any); ok {
					items[i] = map[string]any(cloneRecord(core.Record(m)))
				} else {
					items[i] = item
				}
			}
			out[k] = items
		default:
			out[k] = v
		}
	}
	return out
}
