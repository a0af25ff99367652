package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/control"
	"github.com/goliatone/go-formbuilder/pkg/definition"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/form"
)

var (
	// ErrOperationNotFound is returned when the document has no operation
	// with the requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned when the operation has no object request
	// body to build a form from.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

// Option configures the importer.
type Option func(*importer)

type importer struct {
	required   control.Validator
	labeler    func(string) string
	logger     *zap.Logger
	validators map[string]control.Validator
}

// WithRequiredValidator replaces the validator attached to required
// properties. The built-in control.Required is used otherwise.
func WithRequiredValidator(v control.Validator) Option {
	return func(i *importer) { i.required = v }
}

// WithLabeler overrides how labels are derived from property names when the
// schema has no title.
func WithLabeler(labeler func(string) string) Option {
	return func(i *importer) {
		if labeler != nil {
			i.labeler = labeler
		}
	}
}

// WithLogger reports skipped properties.
func WithLogger(logger *zap.Logger) Option {
	return func(i *importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithValidator registers a named validator referenced through the
// x-formgen-validators extension.
func WithValidator(name string, v control.Validator) Option {
	return func(i *importer) {
		if name != "" && v != nil {
			i.validators[name] = v
		}
	}
}

func newImporter(options []Option) *importer {
	i := &importer{
		labeler:    form.DefaultLabeler,
		logger:     zap.NewNop(),
		validators: make(map[string]control.Validator),
	}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// FromDocument parses raw and converts the request body of operationID into
// field descriptors ready for the builder.
func FromDocument(ctx context.Context, raw []byte, operationID string, options ...Option) ([]field.Field, error) {
	imp := newImporter(options)
	nodes, err := imp.nodes(ctx, raw, operationID)
	if err != nil {
		return nil, err
	}

	var resolve []definition.Option
	for name, v := range imp.validators {
		resolve = append(resolve, definition.WithValidator(name, v))
	}
	if imp.required != nil {
		resolve = append(resolve, definition.WithValidator("required", imp.required))
	}
	fields, err := definition.Normalise(nodes, resolve...)
	if err != nil {
		return nil, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}
	return fields, nil
}

// Definition converts operationID into a definition file holding a single
// form named after the operation. Validators stay as named references.
func Definition(ctx context.Context, raw []byte, operationID string, options ...Option) (definition.File, error) {
	nodes, err := newImporter(options).nodes(ctx, raw, operationID)
	if err != nil {
		return definition.File{}, err
	}
	return definition.File{
		Forms: map[string]definition.FormFile{
			operationID: {Fields: nodes},
		},
	}, nil
}

// Operations lists the operation ids declared by raw in sorted order.
// Operations without an id are reported as "method:path".
func Operations(ctx context.Context, raw []byte) ([]string, error) {
	doc, err := load(ctx, raw)
	if err != nil {
		return nil, err
	}
	var ids []string
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			ids = append(ids, operationKey(method, path, op))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (i *importer) nodes(ctx context.Context, raw []byte, operationID string) ([]definition.Node, error) {
	doc, err := load(ctx, raw)
	if err != nil {
		return nil, err
	}
	op := findOperation(doc, operationID)
	if op == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	schema := requestSchema(op.RequestBody)
	if schema == nil || !isObject(schema) {
		return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}
	conv := &converter{importer: i, stack: make(map[*openapi3.Schema]bool)}
	nodes, err := conv.properties(schema, "")
	if err != nil {
		return nil, fmt.Errorf("openapi: operation %q: %w", operationID, err)
	}
	return nodes, nil
}

func load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}
	return doc, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op != nil && operationKey(method, path, op) == operationID {
				return op
			}
		}
	}
	return nil
}

func operationKey(method, path string, op *openapi3.Operation) string {
	if op != nil && op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}
