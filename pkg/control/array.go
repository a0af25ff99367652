package control

import "fmt"

// Array is an ordered, index-addressable sequence of groups. Each row is
// validated independently; the array value is the list of enabled row records.
type Array struct {
	base
	rows []*Group
}

// NewArray creates an empty array with array-level validators.
func NewArray(validators ...Validator) *Array {
	a := &Array{base: base{validators: compact(validators)}}
	a.refresh()
	return a
}

// Push appends a row and returns its index.
func (a *Array) Push(row *Group) int {
	if row == nil {
		return -1
	}
	row.setParent(a)
	a.rows = append(a.rows, row)
	a.refresh()
	propagate(a)
	return len(a.rows) - 1
}

// RemoveAt removes the row at index. Out-of-range indices report false and
// leave the array untouched.
func (a *Array) RemoveAt(index int) (*Group, bool) {
	if index < 0 || index >= len(a.rows) {
		return nil, false
	}
	row := a.rows[index]
	a.rows = append(a.rows[:index], a.rows[index+1:]...)
	row.setParent(nil)
	a.refresh()
	propagate(a)
	return row, true
}

// At returns the row at index.
func (a *Array) At(index int) (*Group, bool) {
	if index < 0 || index >= len(a.rows) {
		return nil, false
	}
	return a.rows[index], true
}

// Len reports the number of rows.
func (a *Array) Len() int { return len(a.rows) }

// Groups returns the rows in order.
func (a *Array) Groups() []*Group {
	return append([]*Group(nil), a.rows...)
}

// Value returns the records of the enabled rows.
func (a *Array) Value() any { return a.Values() }

// Values is the typed form of Value.
func (a *Array) Values() []any {
	out := make([]any, 0, len(a.rows))
	for _, row := range a.rows {
		if row.Disabled() {
			continue
		}
		out = append(out, row.Values())
	}
	return out
}

// SetValue patches existing rows by index. Extra records are ignored; rows are
// only created through the owning repeat manager.
func (a *Array) SetValue(value any) error {
	if value == nil {
		return nil
	}
	var records []any
	switch v := value.(type) {
	case []any:
		records = v
	case []map[string]any:
		records = make([]any, len(v))
		for i := range v {
			records[i] = v[i]
		}
	default:
		return fmt.Errorf("%w: array cannot hold %T", ErrTypeMismatch, value)
	}
	for idx, record := range records {
		if idx >= len(a.rows) {
			break
		}
		if err := a.rows[idx].SetValue(record); err != nil {
			return fmt.Errorf("%d: %w", idx, err)
		}
	}
	a.dirty = true
	a.refresh()
	propagate(a)
	return nil
}

// Reset resets every row.
func (a *Array) Reset() {
	for _, row := range a.rows {
		row.Reset()
	}
	a.dirty = false
	a.touched = false
	a.refresh()
	propagate(a)
}

// Valid reports whether every enabled row is valid and the array validators
// pass.
func (a *Array) Valid() bool {
	if a.disabled {
		return true
	}
	if len(a.errors) > 0 {
		return false
	}
	for _, row := range a.rows {
		if !row.Valid() {
			return false
		}
	}
	return true
}

// Validate re-runs validators for every row and the array itself.
func (a *Array) Validate() {
	for _, row := range a.rows {
		row.Validate()
	}
	a.refresh()
}

func (a *Array) Dirty() bool {
	if a.dirty {
		return true
	}
	for _, row := range a.rows {
		if row.Dirty() {
			return true
		}
	}
	return false
}

func (a *Array) Touched() bool {
	if a.touched {
		return true
	}
	for _, row := range a.rows {
		if row.Touched() {
			return true
		}
	}
	return false
}

func (a *Array) MarkTouched() {
	a.touched = true
	for _, row := range a.rows {
		row.MarkTouched()
	}
}

func (a *Array) Disabled() bool { return a.disabled }

func (a *Array) Disable() {
	a.disabled = true
	for _, row := range a.rows {
		row.Disable()
	}
	propagate(a)
}

func (a *Array) Enable() {
	a.disabled = false
	for _, row := range a.rows {
		row.Enable()
	}
	a.refresh()
	propagate(a)
}

func (a *Array) refresh() {
	a.errors = run(a.validators, a)
}
