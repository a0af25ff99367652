package builder

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/config"
	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/repeat"
)

// RowSet manages the rows of one repeated group. Every row is a Facade of its
// own whose Controls is the row group.
type RowSet = repeat.Manager[*Facade]

// Facade bundles a built control tree with the annotated descriptors it was
// built from. Rows of repeated groups are facades too and share the Events
// bus of the form they belong to.
type Facade struct {
	ID       string
	Controls *control.Group
	// Field is the annotated copy of the input descriptor: layout classes and
	// default labels are filled in.
	Field        field.Field
	RootCSSClass string
	// Arrays holds the repeated groups declared directly in this facade,
	// keyed by their dotted path relative to Controls.
	Arrays map[string]*RowSet
	Events *repeat.Bus
	Config config.Config

	pending map[string][]map[string]any
}

// Group returns the root control group.
func (f *Facade) Group() *control.Group { return f.Controls }

// Get resolves a control by dotted path.
func (f *Facade) Get(path string) (control.Control, bool) {
	return f.Controls.Get(path)
}

// Value returns the aggregate value of the form.
func (f *Facade) Value() map[string]any { return f.Controls.Values() }

// Valid reports whether the whole control tree is valid.
func (f *Facade) Valid() bool { return f.Controls.Valid() }

// Validate re-runs every validator in the tree.
func (f *Facade) Validate() { f.Controls.Validate() }

// ArrayPaths returns the paths of the repeated groups declared in this
// facade, sorted.
func (f *Facade) ArrayPaths() []string {
	paths := make([]string, 0, len(f.Arrays))
	for path := range f.Arrays {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Array resolves a repeated group by path. Paths may cross rows of enclosing
// arrays: "orders.1.lines" is the lines array of the second order row.
func (f *Facade) Array(path string) (*RowSet, bool) {
	path = strings.Trim(strings.TrimSpace(path), ".")
	if rows, ok := f.Arrays[path]; ok {
		return rows, true
	}
	for prefix, rows := range f.Arrays {
		rest, found := strings.CutPrefix(path, prefix+".")
		if !found {
			continue
		}
		head, tail, _ := strings.Cut(rest, ".")
		index, err := strconv.Atoi(head)
		if err != nil || tail == "" {
			continue
		}
		row, ok := rows.Row(index)
		if !ok {
			return nil, false
		}
		return row.Array(tail)
	}
	return nil, false
}

// SeedRows adds the initial rows of every repeated group that has not been
// seeded yet. Builders running with eager rows leave nothing to seed.
func (f *Facade) SeedRows(emit bool) error {
	for _, path := range f.ArrayPaths() {
		records, ok := f.pending[path]
		if !ok {
			continue
		}
		delete(f.pending, path)
		if err := f.Arrays[path].Seed(records, emit); err != nil {
			return err
		}
	}
	return nil
}

// forget drops the row sets registered at path or below it.
func (f *Facade) forget(path string) {
	prefix := path + "."
	for key := range f.Arrays {
		if key == path || strings.HasPrefix(key, prefix) {
			delete(f.Arrays, key)
		}
	}
	for key := range f.pending {
		if key == path || strings.HasPrefix(key, prefix) {
			delete(f.pending, key)
		}
	}
}
