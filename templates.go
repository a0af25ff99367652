package formbuilder

import (
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/render/template"
)

// BindTemplates compiles bindings (field path or name to inline source or
// template file) with a pongo2 engine built from options.
func BindTemplates(bindings map[string]string, options ...template.Option) (render.Templates, error) {
	engine, err := template.New(options...)
	if err != nil {
		return nil, err
	}
	return engine.Bind(bindings)
}
