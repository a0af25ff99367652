package definition

import (
	"sort"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

// Store keeps the forms parsed from definition files. It is safe for
// concurrent readers when treated as immutable after construction.
type Store struct {
	forms map[string]Form
}

// Document is the parsed content of one definition file.
type Document struct {
	Source string
	Forms  map[string]Form
}

// Form is a named field tree ready to be built.
type Form struct {
	ID       string
	Source   string
	CSSClass string
	Fields   []field.Field
}

// Root wraps the form fields in a container div carrying the form class.
// The returned tree is an independent copy.
func (f Form) Root() field.Field {
	return field.Div(f.CSSClass, field.CloneAll(f.Fields)...)
}

// Form returns a copy of the form registered under id.
func (s *Store) Form(id string) (Form, bool) {
	if s == nil {
		return Form{}, false
	}
	form, ok := s.forms[id]
	if !ok {
		return Form{}, false
	}
	form.Fields = field.CloneAll(form.Fields)
	return form, true
}

// IDs returns the registered form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

// File is the on-disk shape of a definition document.
type File struct {
	Forms map[string]FormFile `json:"forms" yaml:"forms" toml:"forms"`
}

// FormFile is one form entry of a File.
type FormFile struct {
	CSSClass string `json:"cssClass" yaml:"cssClass" toml:"cssClass"`
	Fields   []Node `json:"fields" yaml:"fields" toml:"fields"`
}

// Node is one field entry of a definition file. Validators are referenced
// by name and resolved when the node is normalised.
type Node struct {
	Kind          string            `json:"kind" yaml:"kind" toml:"kind"`
	Name          string            `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Label         string            `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Hint          string            `json:"hint,omitempty" yaml:"hint,omitempty" toml:"hint,omitempty"`
	CSSClass      string            `json:"cssClass,omitempty" yaml:"cssClass,omitempty" toml:"cssClass,omitempty"`
	Span          int               `json:"span,omitempty" yaml:"span,omitempty" toml:"span,omitempty"`
	Initial       any               `json:"initial,omitempty" yaml:"initial,omitempty" toml:"initial,omitempty"`
	Validators    []string          `json:"validators,omitempty" yaml:"validators,omitempty" toml:"validators,omitempty"`
	RowValidators []string          `json:"rowValidators,omitempty" yaml:"rowValidators,omitempty" toml:"rowValidators,omitempty"`
	Children      []Node            `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
	Options       []OptionNode      `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	DateRange     *DateRangeNode    `json:"dateRange,omitempty" yaml:"dateRange,omitempty" toml:"dateRange,omitempty"`
	Context       map[string]any    `json:"context,omitempty" yaml:"context,omitempty" toml:"context,omitempty"`
	Component     string            `json:"component,omitempty" yaml:"component,omitempty" toml:"component,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
}

type OptionNode struct {
	Label string `json:"label" yaml:"label" toml:"label"`
	Value any    `json:"value" yaml:"value" toml:"value"`
}

type DateRangeNode struct {
	Begin           string   `json:"begin" yaml:"begin" toml:"begin"`
	End             string   `json:"end" yaml:"end" toml:"end"`
	BeginLabel      string   `json:"beginLabel,omitempty" yaml:"beginLabel,omitempty" toml:"beginLabel,omitempty"`
	EndLabel        string   `json:"endLabel,omitempty" yaml:"endLabel,omitempty" toml:"endLabel,omitempty"`
	BeginValidators []string `json:"beginValidators,omitempty" yaml:"beginValidators,omitempty" toml:"beginValidators,omitempty"`
	EndValidators   []string `json:"endValidators,omitempty" yaml:"endValidators,omitempty" toml:"endValidators,omitempty"`
}
