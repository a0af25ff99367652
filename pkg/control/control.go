package control

import (
	"errors"
	"sort"
	"strconv"
)

// ErrTypeMismatch is returned when a value does not fit a control's value type.
var ErrTypeMismatch = errors.New("control: value type mismatch")

// Errors maps validation error keys to optional details. A nil or empty map
// means the control passed validation.
type Errors map[string]any

// Has reports whether the supplied key is present.
func (e Errors) Has(key string) bool {
	if len(e) == 0 {
		return false
	}
	_, ok := e[key]
	return ok
}

// Keys returns the error keys in sorted order.
func (e Errors) Keys() []string {
	if len(e) == 0 {
		return nil
	}
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Validator is an opaque predicate attached to a control. It returns nil when
// the control is valid.
type Validator func(Control) Errors

// Compose merges several validators into one. Later validators overwrite
// duplicate keys reported by earlier ones.
func Compose(validators ...Validator) Validator {
	list := compact(validators)
	return func(c Control) Errors {
		return run(list, c)
	}
}

// Control is the runtime counterpart of a field descriptor: a leaf value, a
// keyed group or an indexed array of groups.
type Control interface {
	Value() any
	SetValue(value any) error
	Reset()
	Valid() bool
	Errors() Errors
	Validate()
	Dirty() bool
	Touched() bool
	MarkTouched()
	Disabled() bool
	Disable()
	Enable()
	Parent() Control

	setParent(Control)
	refresh()
	markPristine()
}

type base struct {
	parent     Control
	validators []Validator
	errors     Errors
	dirty      bool
	touched    bool
	disabled   bool
}

func (b *base) Errors() Errors {
	if len(b.errors) == 0 {
		return nil
	}
	out := make(Errors, len(b.errors))
	for key, value := range b.errors {
		out[key] = value
	}
	return out
}

func (b *base) Parent() Control { return b.parent }

func (b *base) setParent(parent Control) { b.parent = parent }

func (b *base) markPristine() { b.dirty = false }

// MarkPristine clears the dirty flag of root and every control below it.
func MarkPristine(root Control) {
	Walk(root, func(_ string, c Control) { c.markPristine() })
}

// Validators returns the validators attached directly to the control.
func (b *base) Validators() []Validator {
	return append([]Validator(nil), b.validators...)
}

func run(validators []Validator, c Control) Errors {
	var out Errors
	for _, validate := range validators {
		result := validate(c)
		if len(result) == 0 {
			continue
		}
		if out == nil {
			out = make(Errors, len(result))
		}
		for key, value := range result {
			out[key] = value
		}
	}
	return out
}

func compact(validators []Validator) []Validator {
	if len(validators) == 0 {
		return nil
	}
	out := make([]Validator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// propagate re-runs the validators of every ancestor after a child changed.
func propagate(c Control) {
	for p := c.Parent(); p != nil; p = p.Parent() {
		p.refresh()
	}
}

// Walk visits every control below root depth-first, reporting dotted paths
// (array rows use their index as the path segment). The root itself is
// reported with an empty path.
func Walk(root Control, fn func(path string, c Control)) {
	if root == nil || fn == nil {
		return
	}
	walk("", root, fn)
}

func walk(path string, c Control, fn func(string, Control)) {
	fn(path, c)
	switch node := c.(type) {
	case *Group:
		for _, name := range node.names {
			walk(joinPath(path, name), node.controls[name], fn)
		}
	case *Array:
		for idx, row := range node.rows {
			walk(joinPath(path, strconv.Itoa(idx)), row, fn)
		}
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
