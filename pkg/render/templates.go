package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/field"
)

// ErrTemplateNotBound is returned when a template field has no template in
// the bindings passed to the renderer.
var ErrTemplateNotBound = errors.New("render: template not bound")

// TemplateData is what a bound template receives when a template field is
// rendered.
type TemplateData struct {
	// Path is the dotted control path of the field.
	Path  string
	Field field.Field
	Value any
	// Context is the opaque context of the field's TemplateOptions.
	Context map[string]any
}

// Template renders one template field.
type Template interface {
	Execute(ctx context.Context, data TemplateData) (string, error)
}

// TemplateFunc adapts a function to Template.
type TemplateFunc func(ctx context.Context, data TemplateData) (string, error)

// Execute calls fn.
func (fn TemplateFunc) Execute(ctx context.Context, data TemplateData) (string, error) {
	return fn(ctx, data)
}

// Templates binds template fields to templates for a single render. Keys are
// either a dotted control path ("lines.0.summary") or a bare field name;
// path bindings win.
type Templates map[string]Template

// Lookup finds the template bound to path, falling back to name.
func (t Templates) Lookup(path, name string) (Template, bool) {
	if len(t) == 0 {
		return nil, false
	}
	if tpl, ok := t[path]; ok && tpl != nil {
		return tpl, true
	}
	tpl, ok := t[name]
	return tpl, ok && tpl != nil
}

// Execute renders the template field f mounted at path with the value of c.
func (t Templates) Execute(ctx context.Context, path string, f field.Field, c control.Control) (string, error) {
	tpl, ok := t.Lookup(path, f.Name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotBound, path)
	}
	data := TemplateData{Path: path, Field: f}
	if c != nil {
		data.Value = c.Value()
	}
	if opts := f.TemplateOpts(); opts != nil {
		data.Context = opts.Context
	}
	out, err := tpl.Execute(ctx, data)
	if err != nil {
		return "", fmt.Errorf("render: template %q: %w", path, err)
	}
	return out, nil
}
