package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/form"
)

// Renderer consumes a built form facade and produces a representation of it
// (markup, a terminal session transcript, a JSON document).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, facade *form.Facade, options RenderOptions) ([]byte, error)
}
