// Package core provides the table model behind the data table UI.
//
// This package holds all table logic independent of any transport or markup.
// Web handlers, tests and command line tools drive it the same way.
//
// # Table Registry
//
// Tables are registered at startup using [Register]. Each [Definition]
// carries the columns, feature flags and callbacks of one table, and is paired
// with a [Source] that supplies its records:
//
//	core.Register(core.Definition{
//	    Key: "projects",
//	    Columns: []core.ColumnConfig{
//	        {ID: "name", AccessorKey: "name", EnableSorting: true},
//	        {ID: "budget", AccessorKey: "budget", FilterType: core.FilterNumber},
//	    },
//	    Options: core.Options{Features: core.Features{Pagination: true}},
//	}, source)
//
// # State
//
// [State] is the transient table state: search text, column filters, sort,
// page, visibility, date range, current view and expanded rows. It is parsed
// from and encoded to a query string, and every change returns a new value.
// Changing a filter returns to the first page. Changing the page size keeps
// the first visible row on screen.
//
// # Row Model
//
// [NewTable] runs the pipeline
//
//	records -> date range -> global and column filters -> sort -> page
//
// and exposes the headers, rows, sub-rows and pagination intents a renderer
// needs. Sorting cycles first direction, opposite direction, unsorted.
//
// # Saved Views
//
// [ViewManager] persists named snapshots of column visibility and page size
// through a [Storage]. A view flagged default is applied when a table is
// mounted with no state. Deletion takes a request and a confirmation.
//
// # Editing
//
// [EditableCell] toggles a cell between display and edit mode. Commits run the
// column's [CommitFunc] only when the value changed; a failing callback is
// logged and the cell reverts. [CommitCell] drives one edit against a
// registered table.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - TBL001-TBL005: Table, column and row lookups, export
//   - VIEW001-VIEW003: Saved views
//   - STO001-STO002: View storage
//   - REQ001-REQ003: Request lifecycle
package core
