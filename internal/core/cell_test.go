package core

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
)

func registerProjects(t *testing.T) *projectSource {
	t.Helper()
	t.Cleanup(Clear)
	Clear()

	src := newProjectSource()
	Register(projectDefinition(src), src)
	return src
}

func TestOpenCell_Errors(t *testing.T) {
	registerProjects(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ref  CellRef
		edit bool
		want error
	}{
		{"unknown table", CellRef{Table: "nope", RowID: "0", Column: "name"}, false, ErrTableNotFound},
		{"unknown column", CellRef{Table: "projects", RowID: "0", Column: "nope"}, false, ErrColumnNotFound},
		{"unknown row", CellRef{Table: "projects", RowID: "42", Column: "name"}, false, ErrRowNotFound},
		{"non numeric row", CellRef{Table: "projects", RowID: "abc", Column: "name"}, false, ErrRowNotFound},
		{"read only column", CellRef{Table: "projects", RowID: "0", Column: "budget"}, true, ErrColumnNotEditable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenCell(ctx, tt.ref, tt.edit)
			if !errors.Is(err, tt.want) {
				t.Errorf("OpenCell error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpenCell_DisplayAndEdit(t *testing.T) {
	registerProjects(t)
	ctx := context.Background()

	cell, err := OpenCell(ctx, CellRef{Table: "projects", RowID: "1", Column: "budget"}, false)
	if err != nil {
		t.Fatalf("OpenCell: %v", err)
	}
	if cell.Mode() != CellDisplay || cell.Display() != "1500" {
		t.Errorf("display cell mode=%v text=%q", cell.Mode(), cell.Display())
	}

	cell, err = OpenCell(ctx, CellRef{Table: "projects", RowID: "1", Column: "name"}, true)
	if err != nil {
		t.Fatalf("OpenCell edit: %v", err)
	}
	if cell.Mode() != CellEditing || cell.Draft() != "Beacon" {
		t.Errorf("edit cell mode=%v draft=%q", cell.Mode(), cell.Draft())
	}
}

func TestCommitCell(t *testing.T) {
	src := registerProjects(t)
	ctx := context.Background()
	ref := CellRef{Table: "projects", RowID: "2", Column: "name"}

	cell, outcome, err := CommitCell(ctx, ref, "Comet II")
	if err != nil {
		t.Fatalf("CommitCell: %v", err)
	}
	if outcome != CommitSaved || cell.Display() != "Comet II" {
		t.Errorf("outcome = %v display = %q", outcome, cell.Display())
	}
	if src.records[2]["name"] != "Comet II" {
		t.Errorf("source not updated: %v", src.records[2]["name"])
	}

	_, outcome, _ = CommitCell(ctx, ref, "Comet II")
	if outcome != CommitUnchanged {
		t.Errorf("same value outcome = %v, want unchanged", outcome)
	}

	cell, outcome, err = CommitCell(ctx, ref, "   ")
	if err != nil {
		t.Fatalf("CommitCell: %v", err)
	}
	if outcome != CommitReverted || cell.Display() != "Comet II" {
		t.Errorf("rejected commit outcome = %v display = %q", outcome, cell.Display())
	}

	_, _, err = CommitCell(ctx, CellRef{Table: "projects", RowID: "2", Column: "budget"}, "1")
	if !errors.Is(err, ErrColumnNotEditable) {
		t.Errorf("commit to read only column: %v", err)
	}
}

func TestCommitCell_UnknownRowsLeaveNoLocks(t *testing.T) {
	registerProjects(t)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		ref := CellRef{Table: "projects", RowID: "missing-" + strconv.Itoa(i), Column: "name"}
		if _, _, err := CommitCell(ctx, ref, "x"); !errors.Is(err, ErrRowNotFound) {
			t.Fatalf("CommitCell error = %v, want %v", err, ErrRowNotFound)
		}
	}
	if n := cellLocks.size(); n != 0 {
		t.Errorf("cell locks held after commits = %d, want 0", n)
	}
}

func TestKeyedMutex(t *testing.T) {
	var k keyedMutex
	var wg sync.WaitGroup
	var mu sync.Mutex
	inside, maxInside := 0, 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.lock("same")
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("holders of one key at once = %d, want 1", maxInside)
	}
	if n := k.size(); n != 0 {
		t.Errorf("entries after release = %d, want 0", n)
	}

	unlockA := k.lock("a")
	unlockB := k.lock("b")
	if n := k.size(); n != 2 {
		t.Errorf("entries while held = %d, want 2", n)
	}
	unlockA()
	unlockB()
}

func TestFindRecord_CustomRowID(t *testing.T) {
	def := &Definition{Options: Options{GetRowID: func(r Record) string { return ToText(r["code"]) }}}
	records := []Record{{"code": "A-1"}, {"code": "B-2"}}

	rec, ok := findRecord(def, records, "B-2")
	if !ok || rec["code"] != "B-2" {
		t.Errorf("findRecord(B-2) = %v, %v", rec, ok)
	}
	if _, ok := findRecord(def, records, "1"); ok {
		t.Error("positional ids do not apply when GetRowID is set")
	}
}
