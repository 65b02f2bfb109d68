package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/datatable/internal/core"
	"github.com/JonMunkholm/datatable/internal/logging"
)

// ErrInvalidValue is returned when an edited value does not fit its column.
var ErrInvalidValue = errors.New("invalid value")

// ConvertEdit turns an edited string into the value stored for col.
func ConvertEdit(col *core.ColumnConfig, value string) (any, error) {
	value = strings.TrimSpace(value)

	switch col.EffectiveEditType() {
	case core.EditNumber:
		if value == "" {
			return nil, nil
		}
		n, ok := core.ParseNumber(value)
		if !ok {
			return nil, fmt.Errorf("%s: %q is not a number: %w", col.ID, value, ErrInvalidValue)
		}
		return n, nil

	case core.EditDate:
		if value == "" {
			return "", nil
		}
		t, ok := core.ParseTime(value)
		if !ok {
			return nil, fmt.Errorf("%s: %q is not a date: %w", col.ID, value, ErrInvalidValue)
		}
		return t.Format("2006-01-02"), nil

	case core.EditSelect:
		for _, opt := range col.EditOptions {
			if opt.Value == value {
				return value, nil
			}
		}
		return nil, fmt.Errorf("%s: %q is not an option: %w", col.ID, value, ErrInvalidValue)

	default:
		return value, nil
	}
}

// commitFunc persists edits of col into ds.
func commitFunc(ds *Dataset, col *core.ColumnConfig) core.CommitFunc {
	field := col.AccessorKey
	return func(ctx context.Context, value string, rec core.Record) error {
		v, err := ConvertEdit(col, value)
		if err != nil {
			return err
		}
		if err := ds.Update(ctx, rec, field, v); err != nil {
			return err
		}
		logging.WithFields(ctx, "table", ds.key, "column", col.ID).Info("cell updated",
			"row", core.ToText(core.ValueAt(rec, ds.rowID)),
		)
		return nil
	}
}
