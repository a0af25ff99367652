package formbuilder

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formbuilder/pkg/definition"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
)

// LoadDefinitions parses every definition file found in fsys.
func LoadDefinitions(fsys fs.FS, options ...definition.Option) (*definition.Store, error) {
	return definition.LoadFS(fsys, options...)
}

// FromOpenAPI reads the OpenAPI document at location and converts the
// request body of operationID into field descriptors.
func FromOpenAPI(ctx context.Context, location, operationID string, source []openapi.SourceOption, options ...openapi.Option) ([]field.Field, error) {
	raw, err := openapi.Read(ctx, location, source...)
	if err != nil {
		return nil, err
	}
	return openapi.FromDocument(ctx, raw, operationID, options...)
}
