package field

import (
	"time"

	"github.com/goliatone/go-formbuilder/pkg/control"
)

// DefaultRowClass is applied by Row when no explicit class is supplied.
const DefaultRowClass = "row"

// Option sets one of the common descriptor attributes.
type Option func(*Field)

// WithValidators attaches validators to the descriptor.
func WithValidators(validators ...control.Validator) Option {
	return func(f *Field) {
		f.Validators = append(f.Validators, validators...)
	}
}

// WithLabel sets the display label.
func WithLabel(label string) Option {
	return func(f *Field) { f.Label = label }
}

// WithHint sets the hint text.
func WithHint(hint string) Option {
	return func(f *Field) { f.Hint = hint }
}

// WithCSSClass sets an explicit layout class. Explicit classes are never
// replaced by the layout distributor.
func WithCSSClass(class string) Option {
	return func(f *Field) { f.CSSClass = class }
}

// WithInitial sets the seed value.
func WithInitial(value any) Option {
	return func(f *Field) { f.Initial = value }
}

// WithMetadata merges renderer-facing metadata.
func WithMetadata(metadata map[string]string) Option {
	return func(f *Field) {
		if len(metadata) == 0 {
			return
		}
		if f.Metadata == nil {
			f.Metadata = make(map[string]string, len(metadata))
		}
		for key, value := range metadata {
			f.Metadata[key] = value
		}
	}
}

// WithContext sets the opaque context of custom, template and groupArray
// descriptors. It is ignored by other kinds.
func WithContext(context map[string]any) Option {
	return func(f *Field) {
		switch opts := f.Options.(type) {
		case *CustomOptions:
			opts.Context = context
		case *TemplateOptions:
			opts.Context = context
		case *GroupArrayOptions:
			opts.Context = context
		}
	}
}

// WithRowValidators attaches validators to every row of a groupArray.
func WithRowValidators(validators ...control.Validator) Option {
	return func(f *Field) {
		if opts, ok := f.Options.(*GroupArrayOptions); ok {
			opts.RowValidators = append(opts.RowValidators, validators...)
		}
	}
}

func build(f Field, options []Option) Field {
	for _, opt := range options {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

func leaf(kind Kind, name string, initial any, options []Option) Field {
	f := Field{Kind: kind, Name: name}
	if initial != nil {
		f.Initial = initial
	}
	return build(f, options)
}

// Text describes a single-line text input.
func Text(name, initial string, options ...Option) Field {
	return leaf(KindText, name, stringInitial(initial), options)
}

// Email describes an email input.
func Email(name, initial string, options ...Option) Field {
	return leaf(KindEmail, name, stringInitial(initial), options)
}

// Password describes a password input.
func Password(name, initial string, options ...Option) Field {
	return leaf(KindPassword, name, stringInitial(initial), options)
}

// Search describes a search input.
func Search(name, initial string, options ...Option) Field {
	return leaf(KindSearch, name, stringInitial(initial), options)
}

// Textarea describes a multi-line text input.
func Textarea(name, initial string, options ...Option) Field {
	return leaf(KindTextarea, name, stringInitial(initial), options)
}

// Number describes a numeric input. A zero initial leaves the control unset.
func Number(name string, initial float64, options ...Option) Field {
	var seed any
	if initial != 0 {
		seed = initial
	}
	return leaf(KindNumber, name, seed, options)
}

// Date describes a date picker. A zero time leaves the control unset.
func Date(name string, initial time.Time, options ...Option) Field {
	var seed any
	if !initial.IsZero() {
		seed = initial
	}
	return leaf(KindDate, name, seed, options)
}

// DateRange describes a begin/end pair of dates. initial is looked up by the
// begin and end names at build time.
func DateRange(name string, rangeOptions DateRangeOptions, initial map[string]any, options ...Option) Field {
	f := Field{Kind: KindDateRange, Name: name, Options: &rangeOptions}
	if initial != nil {
		f.Initial = initial
	}
	return build(f, options)
}

// Select describes a select list backed by static options.
func Select(name string, choices []SelectOption, options ...Option) Field {
	f := Field{
		Kind:    KindSelect,
		Name:    name,
		Options: &SelectOptions{Options: append([]SelectOption(nil), choices...)},
	}
	return build(f, options)
}

// SelectFrom describes a select list whose options arrive from a lazy source.
func SelectFrom(name string, source OptionSource, options ...Option) Field {
	f := Field{
		Kind:    KindSelect,
		Name:    name,
		Options: &SelectOptions{Source: source},
	}
	return build(f, options)
}

// Checkbox describes a boolean toggle. The initial value is always a strict
// boolean.
func Checkbox(name string, initial bool, options ...Option) Field {
	f := build(Field{Kind: KindCheckbox, Name: name, Initial: initial}, options)
	f.Initial = Truthy(f.Initial)
	return f
}

// Custom describes a control rendered by an externally supplied component.
func Custom(name string, component any, initial any, options ...Option) Field {
	f := Field{
		Kind:    KindCustom,
		Name:    name,
		Initial: initial,
		Options: &CustomOptions{Component: component},
	}
	return build(f, options)
}

// Template describes a control rendered through a named template supplied to
// the renderer.
func Template(name string, initial any, options ...Option) Field {
	f := Field{
		Kind:    KindTemplate,
		Name:    name,
		Initial: initial,
		Options: &TemplateOptions{},
	}
	return build(f, options)
}

// Div wraps children in a transparent container.
func Div(cssClass string, children ...Field) Field {
	return Field{
		Kind:     KindDiv,
		CSSClass: cssClass,
		Children: children,
	}
}

// Row wraps children in a row whose columns are distributed evenly.
func Row(children []Field, options ...Option) Field {
	f := build(Field{Kind: KindRow, Children: children}, options)
	if f.CSSClass == "" {
		f.CSSClass = DefaultRowClass
	}
	return f
}

// Group nests children under a named control group.
func Group(name string, children []Field, options ...Option) Field {
	return build(Field{Kind: KindGroup, Name: name, Children: children}, options)
}

// GroupArray describes a repeated group whose rows are cloned from template.
// initial may hold a list of row records used to seed the rows.
func GroupArray(name string, template []Field, initial []map[string]any, options ...Option) Field {
	f := Field{
		Kind:     KindGroupArray,
		Name:     name,
		Children: template,
		Options:  &GroupArrayOptions{},
	}
	if initial != nil {
		f.Initial = initial
	}
	return build(f, options)
}

func stringInitial(value string) any {
	if value == "" {
		return nil
	}
	return value
}
