// Package template renders template fields with pongo2 (Django-style)
// templates. An Engine compiles template sources or files and hands them out
// as render.Template values, ready to be placed in a render.Templates map
// for one render call.
//
// Templates see the field through these variables: path, name, label, hint,
// value and context (the field's TemplateOptions context), plus any global
// data configured on the engine.
package template
