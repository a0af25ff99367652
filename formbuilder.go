// Package formbuilder turns declarative field descriptors into reactive
// control trees. The subpackages hold the pieces; this package wires the
// common paths together.
package formbuilder

import (
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/definition"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/form"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// Facade is a built form; alias exported via the root package for
// convenience.
type Facade = form.Facade

// RenderOptions carries per-render prefill values, server errors and
// template bindings.
type RenderOptions = render.RenderOptions

// Templates binds template fields to templates for one render.
type Templates = render.Templates

// NewBuilder exposes the builder constructor from the top-level module.
func NewBuilder(options ...form.Option) (form.Builder, error) {
	return form.NewBuilder(options...)
}

// Build builds root with a builder configured by options. root is never
// modified.
func Build(root field.Field, validators []control.Validator, options ...form.Option) (*Facade, error) {
	b, err := form.NewBuilder(options...)
	if err != nil {
		return nil, err
	}
	return b.Build(root, validators...)
}

// BuildFields wraps fields in the configured container and builds them.
func BuildFields(fields []field.Field, validators []control.Validator, options ...form.Option) (*Facade, error) {
	b, err := form.NewBuilder(options...)
	if err != nil {
		return nil, err
	}
	return b.BuildFields(fields, validators...)
}

// BuildForm builds the form registered under id in store. The form class of
// the definition becomes the root container class.
func BuildForm(store *definition.Store, id string, options ...form.Option) (*Facade, error) {
	f, ok := store.Form(id)
	if !ok {
		return nil, fmt.Errorf("formbuilder: form %q not defined", id)
	}
	root := f.Root()
	if root.CSSClass == "" {
		return BuildFields(f.Fields, nil, options...)
	}
	return Build(root, nil, options...)
}
