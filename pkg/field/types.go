package field

import (
	"context"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/control"
)

// Kind is the closed set of field descriptor kinds.
type Kind string

const (
	KindDiv        Kind = "div"
	KindRow        Kind = "row"
	KindText       Kind = "text"
	KindNumber     Kind = "number"
	KindEmail      Kind = "email"
	KindPassword   Kind = "password"
	KindSearch     Kind = "search"
	KindTextarea   Kind = "textarea"
	KindDate       Kind = "date"
	KindDateRange  Kind = "daterange"
	KindSelect     Kind = "select"
	KindCheckbox   Kind = "checkbox"
	KindCustom     Kind = "custom"
	KindTemplate   Kind = "template"
	KindGroup      Kind = "group"
	KindGroupArray Kind = "groupArray"
)

var kinds = []Kind{
	KindDiv, KindRow, KindText, KindNumber, KindEmail, KindPassword,
	KindSearch, KindTextarea, KindDate, KindDateRange, KindSelect,
	KindCheckbox, KindCustom, KindTemplate, KindGroup, KindGroupArray,
}

// Kinds returns every recognised kind in declaration order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// ParseKind resolves a case-insensitive kind name. The camel-cased alias
// "dateRange" maps onto KindDateRange.
func ParseKind(raw string) (Kind, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	for _, k := range kinds {
		if strings.ToLower(string(k)) == trimmed {
			return k, true
		}
	}
	if trimmed == "date-range" || trimmed == "date_range" {
		return KindDateRange, true
	}
	return Kind(raw), false
}

// Known reports whether k belongs to the closed kind set.
func (k Kind) Known() bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsLayout reports whether the kind is a pure layout container that never
// produces a control.
func (k Kind) IsLayout() bool {
	return k == KindDiv || k == KindRow
}

// IsContainer reports whether the kind carries children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindDiv, KindRow, KindGroup, KindGroupArray:
		return true
	default:
		return false
	}
}

// IsInput reports whether the kind maps onto an HTML input-like control that
// seeds to an empty string when no initial value is supplied.
func (k Kind) IsInput() bool {
	switch k {
	case KindText, KindNumber, KindEmail, KindPassword, KindSearch, KindTextarea:
		return true
	default:
		return false
	}
}

// Accepts reports whether opts is a valid options variant for the kind. A nil
// options value is accepted by every kind.
func (k Kind) Accepts(opts KindOptions) bool {
	if opts == nil {
		return true
	}
	switch opts.(type) {
	case *SelectOptions:
		return k == KindSelect
	case *DateRangeOptions:
		return k == KindDateRange
	case *CustomOptions:
		return k == KindCustom
	case *TemplateOptions:
		return k == KindTemplate
	case *GroupArrayOptions:
		return k == KindGroupArray
	default:
		return false
	}
}

// Field is the declarative description of one form element or layout
// container. Kind-specific settings travel in Options, whose concrete type is
// fixed per kind.
type Field struct {
	Kind       Kind                `json:"kind" yaml:"kind"`
	Name       string              `json:"name,omitempty" yaml:"name,omitempty"`
	Initial    any                 `json:"initial,omitempty" yaml:"initial,omitempty"`
	Validators []control.Validator `json:"-" yaml:"-"`
	Label      string              `json:"label,omitempty" yaml:"label,omitempty"`
	Hint       string              `json:"hint,omitempty" yaml:"hint,omitempty"`
	CSSClass   string              `json:"cssClass,omitempty" yaml:"cssClass,omitempty"`
	Children   []Field             `json:"children,omitempty" yaml:"children,omitempty"`
	Options    KindOptions         `json:"options,omitempty" yaml:"options,omitempty"`
	Metadata   map[string]string   `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// KindOptions is implemented by the kind-specific option payloads.
type KindOptions interface {
	kindOptions()
}

// SelectOption is one entry of a select list.
type SelectOption struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// OptionSource lazily produces option lists. The builder only forwards it;
// renderers decide when to subscribe.
type OptionSource func(ctx context.Context) <-chan []SelectOption

// SelectOptions carries either a static list or a lazy source.
type SelectOptions struct {
	Options []SelectOption `json:"options,omitempty" yaml:"options,omitempty"`
	Source  OptionSource   `json:"-" yaml:"-"`
}

// DateRangeOptions names the two sub-controls of a date range.
type DateRangeOptions struct {
	BeginName       string              `json:"begin" yaml:"begin"`
	EndName         string              `json:"end" yaml:"end"`
	BeginLabel      string              `json:"beginLabel,omitempty" yaml:"beginLabel,omitempty"`
	EndLabel        string              `json:"endLabel,omitempty" yaml:"endLabel,omitempty"`
	BeginValidators []control.Validator `json:"-" yaml:"-"`
	EndValidators   []control.Validator `json:"-" yaml:"-"`
}

// Labels returns the begin/end labels, defaulting to "Start" and "End".
func (o *DateRangeOptions) Labels() (string, string) {
	begin, end := "Start", "End"
	if o == nil {
		return begin, end
	}
	if o.BeginLabel != "" {
		begin = o.BeginLabel
	}
	if o.EndLabel != "" {
		end = o.EndLabel
	}
	return begin, end
}

// CustomOptions carries an externally supplied component factory that the
// renderer instantiates for the field.
type CustomOptions struct {
	Component any            `json:"-" yaml:"-"`
	Context   map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
}

// TemplateOptions carries the context forwarded to a named template.
type TemplateOptions struct {
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
}

// GroupArrayOptions configures repeated groups. RowValidators are attached to
// every materialised row group.
type GroupArrayOptions struct {
	Context       map[string]any      `json:"context,omitempty" yaml:"context,omitempty"`
	RowValidators []control.Validator `json:"-" yaml:"-"`
}

func (*SelectOptions) kindOptions()     {}
func (*DateRangeOptions) kindOptions()  {}
func (*CustomOptions) kindOptions()     {}
func (*TemplateOptions) kindOptions()   {}
func (*GroupArrayOptions) kindOptions() {}

// SelectOpts returns the select payload when present.
func (f Field) SelectOpts() *SelectOptions {
	opts, _ := f.Options.(*SelectOptions)
	return opts
}

// DateRangeOpts returns the date range payload when present.
func (f Field) DateRangeOpts() *DateRangeOptions {
	opts, _ := f.Options.(*DateRangeOptions)
	return opts
}

// CustomOpts returns the custom component payload when present.
func (f Field) CustomOpts() *CustomOptions {
	opts, _ := f.Options.(*CustomOptions)
	return opts
}

// TemplateOpts returns the template payload when present.
func (f Field) TemplateOpts() *TemplateOptions {
	opts, _ := f.Options.(*TemplateOptions)
	return opts
}

// GroupArrayOpts returns the repeated group payload when present.
func (f Field) GroupArrayOpts() *GroupArrayOptions {
	opts, _ := f.Options.(*GroupArrayOptions)
	return opts
}
