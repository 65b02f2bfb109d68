package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry pairs a table definition with the source of its records.
type Entry struct {
	Definition Definition
	Source     Source
}

var (
	registry   = make(map[string]Entry)
	registryMu sync.RWMutex
)

var titleCaser = cases.Title(language.English)

// Register adds a table to the registry.
// Panics if a table with the same key is already registered or a column id repeats.
func Register(def Definition, src Source) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Key))
	}

	seen := make(map[string]bool, len(def.Columns))
	for i := range def.Columns {
		col := &def.Columns[i]
		if seen[col.ID] {
			panic(fmt.Sprintf("table %s: duplicate column id %q", def.Key, col.ID))
		}
		seen[col.ID] = true

		// Derive a header from the id when none is given
		if col.Header == "" {
			col.Header = HeaderFromID(col.ID)
		}
	}
	if def.Label == "" {
		def.Label = HeaderFromID(def.Key)
	}
	def.Options = def.Options.withDefaults()

	registry[def.Key] = Entry{Definition: def, Source: src}
}

// HeaderFromID turns "created_at" or "createdAt" style ids into "Created At".
func HeaderFromID(id string) string {
	var b strings.Builder
	var prev rune
	for _, r := range id {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
		case r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z':
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	return titleCaser.String(strings.Join(strings.Fields(b.String()), " "))
}

// Get returns a registered table by key.
// Returns false if not found.
func Get(key string) (Entry, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[key]
	return e, ok
}

// All returns all registered tables sorted by key.
func All() []Entry {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Entry, 0, len(registry))
	for _, e := range registry {
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Definition.Key < result[j].Definition.Key
	})

	return result
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered tables.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Entry)
}
