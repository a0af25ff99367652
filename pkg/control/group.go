package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Group is an ordered mapping from name to control. Its value is a record of
// the enabled children and its validity is the conjunction of the children
// plus the group's own validators.
type Group struct {
	base
	names    []string
	controls map[string]Control
}

// NewGroup creates an empty group carrying the supplied group-level validators.
func NewGroup(validators ...Validator) *Group {
	g := &Group{
		base:     base{validators: compact(validators)},
		controls: make(map[string]Control),
	}
	g.refresh()
	return g
}

// Add registers a control under name. When the name is already taken the new
// control replaces the old one in its original position and replaced is true.
func (g *Group) Add(name string, c Control) (replaced bool) {
	if c == nil {
		return false
	}
	if old, exists := g.controls[name]; exists {
		old.setParent(nil)
		replaced = true
	} else {
		g.names = append(g.names, name)
	}
	g.controls[name] = c
	c.setParent(g)
	g.refresh()
	propagate(g)
	return replaced
}

// Remove drops the named control.
func (g *Group) Remove(name string) bool {
	c, ok := g.controls[name]
	if !ok {
		return false
	}
	c.setParent(nil)
	delete(g.controls, name)
	for idx, existing := range g.names {
		if existing == name {
			g.names = append(g.names[:idx], g.names[idx+1:]...)
			break
		}
	}
	g.refresh()
	propagate(g)
	return true
}

// Has reports whether a direct child named name exists.
func (g *Group) Has(name string) bool {
	_, ok := g.controls[name]
	return ok
}

// Control returns the direct child named name.
func (g *Group) Control(name string) (Control, bool) {
	c, ok := g.controls[name]
	return c, ok
}

// Get resolves a dotted path such as "owner.email" or "items.0.qty".
// Numeric segments index into arrays.
func (g *Group) Get(path string) (Control, bool) {
	path = strings.Trim(strings.TrimSpace(path), ".")
	if path == "" {
		return g, true
	}
	var current Control = g
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case *Group:
			next, ok := node.controls[segment]
			if !ok {
				return nil, false
			}
			current = next
		case *Array:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, false
			}
			row, ok := node.At(idx)
			if !ok {
				return nil, false
			}
			current = row
		default:
			return nil, false
		}
	}
	return current, true
}

// Names returns the child names in insertion order.
func (g *Group) Names() []string {
	return append([]string(nil), g.names...)
}

// Len reports the number of direct children.
func (g *Group) Len() int { return len(g.names) }

// Value returns the aggregate record of enabled children.
func (g *Group) Value() any { return g.Values() }

// Values is the typed form of Value.
func (g *Group) Values() map[string]any {
	out := make(map[string]any, len(g.names))
	for _, name := range g.names {
		c := g.controls[name]
		if c.Disabled() {
			continue
		}
		out[name] = c.Value()
	}
	return out
}

// SetValue patches the children named in value. Keys without a matching child
// are ignored.
func (g *Group) SetValue(value any) error {
	if value == nil {
		return nil
	}
	record, ok := toRecord(value)
	if !ok {
		return fmt.Errorf("%w: group cannot hold %T", ErrTypeMismatch, value)
	}
	for _, name := range g.names {
		incoming, present := record[name]
		if !present {
			continue
		}
		if err := g.controls[name].SetValue(incoming); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	g.dirty = true
	g.refresh()
	propagate(g)
	return nil
}

// Reset resets every child and clears the group's own flags.
func (g *Group) Reset() {
	for _, name := range g.names {
		g.controls[name].Reset()
	}
	g.dirty = false
	g.touched = false
	g.refresh()
	propagate(g)
}

// Valid reports whether every enabled child is valid and the group-level
// validators pass.
func (g *Group) Valid() bool {
	if g.disabled {
		return true
	}
	if len(g.errors) > 0 {
		return false
	}
	for _, name := range g.names {
		if !g.controls[name].Valid() {
			return false
		}
	}
	return true
}

// Validate re-runs validators for the whole subtree.
func (g *Group) Validate() {
	for _, name := range g.names {
		g.controls[name].Validate()
	}
	g.refresh()
}

// Dirty reports whether the group or any child changed.
func (g *Group) Dirty() bool {
	if g.dirty {
		return true
	}
	for _, name := range g.names {
		if g.controls[name].Dirty() {
			return true
		}
	}
	return false
}

// Touched reports whether the group or any child was touched.
func (g *Group) Touched() bool {
	if g.touched {
		return true
	}
	for _, name := range g.names {
		if g.controls[name].Touched() {
			return true
		}
	}
	return false
}

// MarkTouched marks the group and every descendant as touched.
func (g *Group) MarkTouched() {
	g.touched = true
	for _, name := range g.names {
		g.controls[name].MarkTouched()
	}
}

func (g *Group) Disabled() bool { return g.disabled }

// Disable disables the group and all descendants.
func (g *Group) Disable() {
	g.disabled = true
	for _, name := range g.names {
		g.controls[name].Disable()
	}
	propagate(g)
}

// Enable enables the group and all descendants.
func (g *Group) Enable() {
	g.disabled = false
	for _, name := range g.names {
		g.controls[name].Enable()
	}
	g.refresh()
	propagate(g)
}

func (g *Group) refresh() {
	g.errors = run(g.validators, g)
}

func toRecord(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}
