package control

import (
	"fmt"
	"time"
)

// ValueType names the semantic type a leaf control holds.
type ValueType string

const (
	TypeAny    ValueType = "any"
	TypeString ValueType = "string"
	TypeNumber ValueType = "number"
	TypeBool   ValueType = "bool"
	TypeDate   ValueType = "date"
)

// Leaf holds a single value together with its validity and interaction state.
type Leaf struct {
	base
	value     any
	seed      any
	nullable  bool
	valueType ValueType
}

// LeafOption configures a Leaf at construction time.
type LeafOption func(*Leaf)

// NonNullable makes Reset restore the seed value instead of clearing it.
func NonNullable() LeafOption {
	return func(l *Leaf) {
		l.nullable = false
	}
}

// OfType declares the semantic value type of the control.
func OfType(t ValueType) LeafOption {
	return func(l *Leaf) {
		if t != "" {
			l.valueType = t
		}
	}
}

// WithValidators attaches validators to the leaf.
func WithValidators(validators ...Validator) LeafOption {
	return func(l *Leaf) {
		l.validators = append(l.validators, compact(validators)...)
	}
}

// NewLeaf creates a nullable leaf seeded with value.
func NewLeaf(value any, options ...LeafOption) *Leaf {
	l := &Leaf{
		value:     value,
		seed:      value,
		nullable:  true,
		valueType: TypeAny,
	}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	l.refresh()
	return l
}

// Value returns the current value.
func (l *Leaf) Value() any { return l.value }

// Type reports the declared value type.
func (l *Leaf) Type() ValueType { return l.valueType }

// Nullable reports whether Reset clears the value.
func (l *Leaf) Nullable() bool { return l.nullable }

// SetValue replaces the value, marks the control dirty and revalidates it
// together with its ancestors.
func (l *Leaf) SetValue(value any) error {
	if err := checkType(l.valueType, value); err != nil {
		return err
	}
	l.value = value
	l.dirty = true
	l.refresh()
	propagate(l)
	return nil
}

// Reset restores the seed for non-nullable leaves and clears the value
// otherwise. Interaction flags are cleared.
func (l *Leaf) Reset() {
	if l.nullable {
		l.value = nil
	} else {
		l.value = l.seed
	}
	l.dirty = false
	l.touched = false
	l.refresh()
	propagate(l)
}

// Valid reports whether the leaf passes its validators. Disabled leaves are
// always valid.
func (l *Leaf) Valid() bool {
	if l.disabled {
		return true
	}
	return len(l.errors) == 0
}

// Validate re-runs the leaf validators.
func (l *Leaf) Validate() { l.refresh() }

func (l *Leaf) Dirty() bool    { return l.dirty }
func (l *Leaf) Touched() bool  { return l.touched }
func (l *Leaf) MarkTouched()   { l.touched = true }
func (l *Leaf) Disabled() bool { return l.disabled }

// Disable excludes the leaf from its parent's value and validity.
func (l *Leaf) Disable() {
	l.disabled = true
	propagate(l)
}

// Enable reverses Disable.
func (l *Leaf) Enable() {
	l.disabled = false
	l.refresh()
	propagate(l)
}

func (l *Leaf) refresh() {
	l.errors = run(l.validators, l)
}

func checkType(t ValueType, value any) error {
	if value == nil {
		return nil
	}
	ok := true
	switch t {
	case TypeString:
		_, ok = value.(string)
	case TypeBool:
		_, ok = value.(bool)
	case TypeDate:
		switch value.(type) {
		case time.Time, *time.Time:
		default:
			ok = false
		}
	case TypeNumber:
		ok = isNumber(value)
	}
	if !ok {
		return fmt.Errorf("%w: %s control cannot hold %T", ErrTypeMismatch, t, value)
	}
	return nil
}

func isNumber(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
